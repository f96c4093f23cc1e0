package naming

import (
	"path"
	"regexp"
	"strings"
)

// Request 是从请求路径解析出的派生图参数，只在单次请求内有效。
type Request struct {
	// Path 为去掉尺寸后缀与扩展名的源路径，例如 uploads/photo。
	Path string
	// SourcePath 为带扩展名的源路径，供 Source Resolver 查找。
	SourcePath string
	Width      Dimension
	Height     Dimension
	Options    Options
	// Ext 不含点号，保留请求中的大小写。
	Ext string
}

var derivedPattern = regexp.MustCompile(`(?i)^(.*)-(\d+|_)x(\d+|_)?((?:-[0-9a-z(),\-._]+)*)\.(jpg|jpeg|png|gif)$`)

// Decode 判断 url 是否符合派生图命名规则；不符合时返回 false，这不是错误。
func Decode(url string) (Request, bool) {
	m := derivedPattern.FindStringSubmatch(url)
	if m == nil {
		return Request{}, false
	}
	width, ok := parseDimension(m[2])
	if !ok {
		return Request{}, false
	}
	height, ok := parseDimension(m[3])
	if !ok {
		return Request{}, false
	}
	return Request{
		Path:       m[1],
		SourcePath: m[1] + "." + m[5],
		Width:      width,
		Height:     height,
		Options:    ParseOptions(m[4]),
		Ext:        m[5],
	}, true
}

// Encode 将源路径、尺寸与有序选项编码为派生图文件名。
// 源路径没有扩展名时结果也不带扩展名。
func Encode(sourcePath string, width, height Dimension, opts ...Option) string {
	var b strings.Builder
	ext := path.Ext(sourcePath)
	b.WriteString(strings.TrimSuffix(sourcePath, ext))
	b.WriteString("-")
	b.WriteString(width.String())
	b.WriteString("x")
	b.WriteString(height.String())
	for _, opt := range opts {
		if opt.Name == "" {
			continue
		}
		b.WriteString("-")
		b.WriteString(opt.String())
	}
	b.WriteString(ext)
	return b.String()
}

// Builder 在 Encode 的基础上拼接配置的 Host 前缀，供视图层生成链接。
type Builder struct {
	Host string
}

// NewBuilder 构造 Builder，Host 末尾的斜杠会被去除。
func NewBuilder(host string) Builder {
	return Builder{Host: strings.TrimRight(host, "/")}
}

// URL 生成完整链接；src 为空时返回空串。width/height 为 0 时编码为通配。
func (b Builder) URL(src string, width, height int, opts ...Option) string {
	if src == "" {
		return ""
	}
	if !strings.HasPrefix(src, "/") {
		src = "/" + src
	}
	return b.Host + Encode(src, Dimension(width), Dimension(height), opts...)
}
