package crop

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"
)

// Engine 执行 Plan，并负责派生图的解码与编码参数。
type Engine struct {
	Filter     imaging.ResampleFilter
	Quality    int
	AutoOrient bool
	// MaxDimension 限制单边缩放时按比例推算出的另一边，<= 0 使用 DefaultMaxDimension。
	MaxDimension int
}

// NewEngine 使用 Lanczos 重采样构造 Engine；quality 非法时回退到 95。
func NewEngine(quality int, autoOrient bool) Engine {
	if quality < 1 || quality > 100 {
		quality = 95
	}
	return Engine{
		Filter:       imaging.Lanczos,
		Quality:      quality,
		AutoOrient:   autoOrient,
		MaxDimension: DefaultMaxDimension,
	}
}

// Load 解码源图；开启 AutoOrient 时按 EXIF 方向信息旋转（手机照片常见）。
func (e Engine) Load(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(e.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return img, nil
}

// Apply 依次执行预裁剪、主变换与滤镜。Passthrough 原样返回 img。
func (e Engine) Apply(img image.Image, plan Plan) (image.Image, error) {
	if plan.Op == Passthrough {
		return img, nil
	}

	if plan.Trim.Kind != TrimNone {
		bounds := img.Bounds()
		box := TrimBox(plan.Trim, bounds.Dx(), bounds.Dy()).Add(bounds.Min).Intersect(bounds)
		if box.Empty() {
			return nil, fmt.Errorf("trim box %v empty within %dx%d image: %w", box, bounds.Dx(), bounds.Dy(), ErrInvalidOptionArgs)
		}
		img = imaging.Crop(img, box)
	}

	filter := e.Filter
	switch plan.Op {
	case Quadrant:
		img = imaging.Fill(img, plan.Width, plan.Height, quadrantAnchors[plan.Quadrant], filter)
	case Resize:
		img = imaging.Resize(img, plan.Width, plan.Height, filter)
	case DefaultCrop:
		switch {
		case plan.Width > 0 && plan.Height > 0:
			img = imaging.Fill(img, plan.Width, plan.Height, imaging.Center, filter)
		case plan.Width > 0:
			if err := e.checkScaled(img.Bounds().Dy(), plan.Width, img.Bounds().Dx()); err != nil {
				return nil, err
			}
			img = imaging.Resize(img, plan.Width, 0, filter)
		case plan.Height > 0:
			if err := e.checkScaled(img.Bounds().Dx(), plan.Height, img.Bounds().Dy()); err != nil {
				return nil, err
			}
			img = imaging.Resize(img, 0, plan.Height, filter)
		}
	default:
		return nil, fmt.Errorf("unsupported operation %s", plan.Op)
	}

	return applyFilters(img, plan.Filters), nil
}

// checkScaled 推算等比缩放后另一边的长度 other*target/base，超过上限时拒绝。
func (e Engine) checkScaled(other, target, base int) error {
	if base <= 0 {
		return nil
	}
	limit := Policy{MaxDimension: e.MaxDimension}.Limit()
	scaled := math.Floor(float64(other)*float64(target)/float64(base) + 0.5)
	if scaled > float64(limit) {
		return fmt.Errorf("scaled side %.0f over %d: %w", scaled, limit, ErrDimensionTooLarge)
	}
	return nil
}

// TrimBox 计算预裁剪区域（相对于左上角为原点的坐标）。
// 比例模式按 round(x1*w)、round(x2*w - x) 的方式换算，与像素模式一样返回 x,y,宽,高 对应的矩形。
// 宽或高不为正时返回空矩形。
func TrimBox(trim Trim, width, height int) image.Rectangle {
	var x, y, cw, ch float64
	switch trim.Kind {
	case TrimPixels:
		x = math.Round(trim.X1)
		y = math.Round(trim.Y1)
		cw = math.Round(trim.X2 - trim.X1)
		ch = math.Round(trim.Y2 - trim.Y1)
	case TrimPercent:
		x = math.Round(trim.X1 * float64(width))
		y = math.Round(trim.Y1 * float64(height))
		cw = math.Round(trim.X2*float64(width) - x)
		ch = math.Round(trim.Y2*float64(height) - y)
	default:
		return image.Rect(0, 0, width, height)
	}
	if cw <= 0 || ch <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(int(x), int(y), int(x+cw), int(y+ch))
}

// Encode 按 name 的扩展名选择输出格式。
func (e Engine) Encode(w io.Writer, img image.Image, name string) error {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	quality := e.Quality
	if quality < 1 || quality > 100 {
		quality = 95
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(quality))
}
