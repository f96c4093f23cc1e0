// Package source locates original images among the configured root
// directories. Roots are fixed at startup and tried in order; the first root
// holding a decodable raster image at the requested relative path wins.
package source

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // 注册 GIF 解码器
	_ "image/jpeg" // 注册 JPEG 解码器
	_ "image/png"  // 注册 PNG 解码器
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound 表示所有根目录下都没有找到可用的源图，这是正常结果而非故障。
var ErrNotFound = errors.New("source image not found")

// Image 描述一张已解析的源图，构造后不再修改。
type Image struct {
	// Path 为解析符号链接后的绝对路径。
	Path string
	Dir  string
	// Name 为文件名（含扩展名），Stem 为去掉扩展名后的部分。
	Name   string
	Stem   string
	Format string
	Width  int
	Height int
}

// Resolver 按顺序在 roots 中查找源图。
type Resolver struct {
	roots []string
}

// NewResolver 复制 roots，调用方之后的修改不会影响 Resolver。
func NewResolver(roots []string) *Resolver {
	return &Resolver{roots: append([]string(nil), roots...)}
}

// Roots 返回配置的根目录副本。
func (r *Resolver) Roots() []string {
	return append([]string(nil), r.roots...)
}

// Resolve 在各根目录中查找 rel 对应的图片文件，全部失败时返回 ErrNotFound。
// 符号链接解析后落在所有根目录之外的文件视为不存在。
func (r *Resolver) Resolve(rel string) (*Image, error) {
	clean := cleanRelative(rel)
	if clean == "" {
		return nil, ErrNotFound
	}
	allowed := r.realRoots()
	for _, root := range r.roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		img, err := probe(filepath.Join(root, filepath.FromSlash(clean)))
		if err != nil {
			continue
		}
		if !within(allowed, img.Path) {
			continue
		}
		return img, nil
	}
	return nil, ErrNotFound
}

// realRoots 返回各根目录解析符号链接后的绝对路径，不存在的根目录被跳过。
func (r *Resolver) realRoots() []string {
	out := make([]string, 0, len(r.roots))
	for _, root := range r.roots {
		resolved, err := filepath.EvalSymlinks(root)
		if err != nil {
			continue
		}
		if abs, err := filepath.Abs(resolved); err == nil {
			out = append(out, abs)
		}
	}
	return out
}

func within(roots []string, target string) bool {
	for _, root := range roots {
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		if strings.HasPrefix(target, prefix) {
			return true
		}
	}
	return false
}

// cleanRelative 将 URL 路径规整为不含 .. 的相对路径，防止跳出根目录。
func cleanRelative(rel string) string {
	rel = path.Clean("/" + strings.ReplaceAll(rel, "\\", "/"))
	return strings.TrimPrefix(rel, "/")
}

// probe 要求目标为普通文件，并且能读出图片尺寸。
func probe(candidate string) (*Image, error) {
	resolved, err := filepath.EvalSymlinks(candidate)
	if err != nil {
		return nil, err
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", resolved)
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", resolved, err)
	}

	name := filepath.Base(resolved)
	return &Image{
		Path:   resolved,
		Dir:    filepath.Dir(resolved),
		Name:   name,
		Stem:   strings.TrimSuffix(name, filepath.Ext(name)),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}
