package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责派生图文件的读写。条目位于源图所在目录：
//
//	<SourceDir>/<Name>    # 例如 photo-200x100.jpg
//
// 文件存在即命中，ModTime/Size 由文件系统提供。
type Store interface {
	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Put 写入派生图。实现需通过临时文件 + rename 保证写入原子性，
	// 并在失败时清理临时文件，目标路径上不会留下半成品。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除条目，文件本就不存在时不视为错误。
	Remove(ctx context.Context, locator Locator) error

	// CheckWritable 确认 dir 是位于根目录之下、可以创建文件的目录。
	CheckWritable(ctx context.Context, dir string) error

	// List 返回目录下的条目名（不含子目录与临时文件），用于统计与级联删除。
	List(ctx context.Context, dir string) ([]string, error)
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
}

// Locator 唯一定位一个条目：绝对目录 + 文件名。
type Locator struct {
	Dir  string
	Name string
}

// Entry 表示一次缓存命中结果，包含绝对文件路径及文件信息。
type Entry struct {
	Locator   Locator `json:"locator"`
	FilePath  string  `json:"file_path"`
	SizeBytes int64   `json:"size_bytes"`
	ModTime   time.Time
}

// ReadResult 组合 Entry 与正文 Reader，便于上层直接将 Body 流式返回。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

var (
	// ErrNotFound 表示缓存不存在。
	ErrNotFound = errors.New("cache entry not found")
	// ErrOutsideRoots 表示 Locator 指向的目录不在配置的根目录之下。
	ErrOutsideRoots = errors.New("cache path outside configured roots")
)
