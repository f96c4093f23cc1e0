// Package derive owns the derived-file lifecycle: it answers a request path
// either from an existing file, by generating the derivative from its source,
// or by reporting a pass-through, and it performs delete cascades that remove
// a source together with every file sharing its stem.
package derive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cropd/cropd/internal/cache"
	"github.com/cropd/cropd/internal/crop"
	"github.com/cropd/cropd/internal/naming"
	"github.com/cropd/cropd/internal/source"
)

// Outcome 是 Handle 的非失败结果。
type Outcome int

const (
	// PassThrough 表示该请求应按普通的文件不存在处理。
	PassThrough Outcome = iota
	// Served 表示 Body 中是可直接返回的图片字节。
	Served
)

func (o Outcome) String() string {
	if o == Served {
		return "served"
	}
	return "pass_through"
}

// Result 描述一次请求的处理结果。
type Result struct {
	Outcome Outcome
	Body    []byte
	// FilePath 为命中或新生成文件的绝对路径，PassThrough 时为空。
	FilePath string
	Source   string
	CacheHit bool
	Op       crop.Operation
}

// Options 汇总 Manager 的依赖，全部在启动阶段注入且之后只读。
type Options struct {
	Resolver *source.Resolver
	Store    cache.Store
	Engine   crop.Engine
	// Policy 提供尺寸上限，零值使用 crop.DefaultMaxDimension。
	Policy crop.Policy
	// MaxCrops 单张源图允许的派生文件数，<= 0 表示不限制。
	MaxCrops int
	Logger   *logrus.Logger
}

// Manager 串联 解析 → 查找源图 → 目录可写 → 数量上限 → 裁剪 → 原子写入。
// 不持有可变状态，可被多个请求并发调用。
type Manager struct {
	resolver *source.Resolver
	store    cache.Store
	engine   crop.Engine
	policy   crop.Policy
	maxCrops int
	logger   *logrus.Logger
}

// NewManager 校验依赖后构造 Manager。
func NewManager(opts Options) (*Manager, error) {
	if opts.Resolver == nil {
		return nil, errors.New("source resolver is required")
	}
	if opts.Store == nil {
		return nil, errors.New("cache store is required")
	}
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Manager{
		resolver: opts.Resolver,
		store:    opts.Store,
		engine:   opts.Engine,
		policy:   opts.Policy,
		maxCrops: opts.MaxCrops,
		logger:   opts.Logger,
	}, nil
}

// Handle 处理一次图片请求。已存在的文件直接返回；不符合命名规则或找不到源图时
// 返回 PassThrough；其余失败以 *Error 返回，且目标路径上不会留下任何文件。
func (m *Manager) Handle(ctx context.Context, requestPath string) (*Result, error) {
	if existing, err := m.resolver.Resolve(requestPath); err == nil {
		body, err := m.read(ctx, existing)
		if err != nil {
			return nil, err
		}
		return &Result{Outcome: Served, Body: body, FilePath: existing.Path, Source: existing.Path, CacheHit: true}, nil
	}

	req, ok := naming.Decode(requestPath)
	if !ok {
		return &Result{Outcome: PassThrough}, nil
	}

	src, err := m.resolver.Resolve(req.SourcePath)
	if err != nil {
		m.logger.WithFields(logrus.Fields{
			"action": "resolve_source",
			"path":   requestPath,
			"source": req.SourcePath,
		}).Debug("source image missing")
		return &Result{Outcome: PassThrough}, nil
	}

	return m.generate(ctx, requestPath, req, src)
}

func (m *Manager) generate(ctx context.Context, requestPath string, req naming.Request, src *source.Image) (*Result, error) {
	started := time.Now()
	target := cache.Locator{Dir: src.Dir, Name: path.Base(requestPath)}
	targetPath := filepath.Join(src.Dir, target.Name)

	if err := m.store.CheckWritable(ctx, src.Dir); err != nil {
		return nil, newError(KindDestinationNotWritable, targetPath, err)
	}

	if err := m.checkCropLimit(ctx, src); err != nil {
		return nil, err
	}

	plan, err := m.policy.Decide(req.Width, req.Height, req.Options)
	if err != nil {
		return nil, policyError(requestPath, err)
	}

	var body []byte
	if plan.Op == crop.Passthrough {
		body, err = m.read(ctx, src)
		if err != nil {
			return nil, err
		}
	} else {
		body, err = m.render(src, plan, target.Name, requestPath)
		if err != nil {
			return nil, err
		}
	}

	entry, err := m.store.Put(ctx, target, bytes.NewReader(body), cache.PutOptions{})
	if err != nil {
		return nil, newError(KindDestinationNotWritable, targetPath, err)
	}

	m.logger.WithFields(logrus.Fields{
		"action":     "generate",
		"path":       requestPath,
		"source":     src.Path,
		"target":     entry.FilePath,
		"operation":  plan.Op.String(),
		"options":    req.Options.Names(),
		"size_bytes": entry.SizeBytes,
		"elapsed_ms": time.Since(started).Milliseconds(),
	}).Info("derived image generated")

	return &Result{
		Outcome:  Served,
		Body:     body,
		FilePath: entry.FilePath,
		Source:   src.Path,
		Op:       plan.Op,
	}, nil
}

// render 解码源图、执行 Plan 并编码到内存，全部成功后才交给 Store 写盘。
func (m *Manager) render(src *source.Image, plan crop.Plan, name, requestPath string) ([]byte, error) {
	img, err := m.engine.Load(src.Path)
	if err != nil {
		return nil, newError(KindDecodeFailed, src.Path, err)
	}
	out, err := m.engine.Apply(img, plan)
	if err != nil {
		return nil, policyError(requestPath, err)
	}
	var buf bytes.Buffer
	if err := m.engine.Encode(&buf, out, name); err != nil {
		return nil, newError(KindEncodeFailed, requestPath, err)
	}
	return buf.Bytes(), nil
}

func (m *Manager) read(ctx context.Context, img *source.Image) ([]byte, error) {
	result, err := m.store.Get(ctx, cache.Locator{Dir: img.Dir, Name: img.Name})
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, newError(KindSourceNotFound, img.Path, err)
		}
		return nil, newError(KindDecodeFailed, img.Path, err)
	}
	defer result.Reader.Close()
	body, err := io.ReadAll(result.Reader)
	if err != nil {
		return nil, newError(KindDecodeFailed, img.Path, err)
	}
	return body, nil
}

// checkCropLimit 统计源图目录中文件名包含源图 stem 的条目（源图自身也会被计入），
// 数量超过 MaxCrops 时拒绝生成：源图 + MaxCrops 个派生图已存在即视为达到上限。
func (m *Manager) checkCropLimit(ctx context.Context, src *source.Image) error {
	if m.maxCrops <= 0 {
		return nil
	}
	count, err := m.CropCount(ctx, src)
	if err != nil {
		return newError(KindDestinationNotWritable, src.Dir, err)
	}
	if count > m.maxCrops {
		return newError(KindCropLimitExceeded, src.Path, fmt.Errorf("%d files share stem %q, max crops %d", count, src.Stem, m.maxCrops))
	}
	return nil
}

// CropCount 返回源图目录中文件名包含 stem 的条目数量（含源图本身）。
func (m *Manager) CropCount(ctx context.Context, src *source.Image) (int, error) {
	names, err := m.store.List(ctx, src.Dir)
	if err != nil {
		return 0, err
	}
	stem := matchStem(src)
	count := 0
	for _, name := range names {
		if strings.Contains(name, stem) {
			count++
		}
	}
	return count, nil
}

// Delete 删除源图以及目录中所有文件名包含其 stem 的文件。源图不存在时返回 false。
// 任意一次删除失败立即中止，已删除的文件不会恢复。
func (m *Manager) Delete(ctx context.Context, requestPath string) (bool, error) {
	decoded, err := url.QueryUnescape(requestPath)
	if err != nil {
		decoded = requestPath
	}

	src, err := m.resolver.Resolve(decoded)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := m.store.Remove(ctx, cache.Locator{Dir: src.Dir, Name: src.Name}); err != nil {
		return false, newError(KindUnlinkFailed, src.Path, err)
	}
	removed := 1

	names, err := m.store.List(ctx, src.Dir)
	if err != nil {
		return false, newError(KindUnlinkFailed, src.Dir, err)
	}
	stem := matchStem(src)
	for _, name := range names {
		if !strings.Contains(name, stem) {
			continue
		}
		if err := m.store.Remove(ctx, cache.Locator{Dir: src.Dir, Name: name}); err != nil {
			return false, newError(KindUnlinkFailed, filepath.Join(src.Dir, name), err)
		}
		removed++
	}

	m.logger.WithFields(logrus.Fields{
		"action":  "delete",
		"path":    requestPath,
		"source":  src.Path,
		"removed": removed,
	}).Info("source image and derivatives removed")
	return true, nil
}

// matchStem 在 stem 为空（例如源图名为 ".jpg"）时退回完整文件名，避免匹配整个目录。
func matchStem(src *source.Image) string {
	if src.Stem == "" {
		return src.Name
	}
	return src.Stem
}
