package crop

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/cropd/cropd/internal/naming"
)

// 引擎识别的选项名。
const (
	OptionResize   = "resize"
	OptionQuadrant = "quadrant"
	OptionTrim     = "trim"
	OptionTrimPerc = "trim_perc"
	OptionFilters  = "filters"
)

var (
	ErrConflictingOptions = errors.New("specify a trim or a trim_perc option, not both")
	ErrMissingDimension   = errors.New("option needs both width and height")
	ErrInvalidQuadrant    = errors.New("invalid quadrant")
	ErrInvalidOptionArgs  = errors.New("invalid option arguments")
	ErrDimensionTooLarge  = errors.New("requested dimension exceeds limit")
)

// DefaultMaxDimension 是未配置上限时单边允许的最大像素数。
const DefaultMaxDimension = 5000

// Operation 是引擎最终选定的主变换。
type Operation int

const (
	// Passthrough 不解码图片，直接复制源文件字节。
	Passthrough Operation = iota
	// DefaultCrop 按给出的宽/高等比缩放，或在两者都给出时居中填充裁剪。
	DefaultCrop
	// Resize 强制缩放到 width x height，不保持比例。
	Resize
	// Quadrant 以指定区域为锚点填充裁剪到 width x height。
	Quadrant
)

func (o Operation) String() string {
	switch o {
	case Passthrough:
		return "passthrough"
	case DefaultCrop:
		return "default"
	case Resize:
		return "resize"
	case Quadrant:
		return "quadrant"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// TrimKind 区分预裁剪的坐标单位。
type TrimKind int

const (
	TrimNone TrimKind = iota
	// TrimPixels 坐标为源图绝对像素。
	TrimPixels
	// TrimPercent 坐标为 [0,1] 比例，基于当前尺寸换算。
	TrimPercent
)

// Trim 描述 resize 之前的预裁剪，(X1,Y1) 为左上角，(X2,Y2) 为右下角。
type Trim struct {
	Kind           TrimKind
	X1, Y1, X2, Y2 float64
}

// Plan 是 Decide 的结果，Apply 只依据 Plan 执行，不再查看原始选项。
type Plan struct {
	Op       Operation
	Width    int
	Height   int
	Quadrant string
	Trim     Trim
	Filters  []string
}

var quadrantAnchors = map[string]imaging.Anchor{
	"T": imaging.Top,
	"L": imaging.Left,
	"C": imaging.Center,
	"R": imaging.Right,
	"B": imaging.Bottom,
}

// Policy 携带决策阶段的限制，零值使用 DefaultMaxDimension。
type Policy struct {
	MaxDimension int
}

// Limit 返回生效的单边像素上限。
func (p Policy) Limit() int {
	if p.MaxDimension <= 0 {
		return DefaultMaxDimension
	}
	return p.MaxDimension
}

// Decide 使用默认上限做决策。
func Decide(width, height naming.Dimension, opts naming.Options) (Plan, error) {
	return Policy{}.Decide(width, height, opts)
}

// Decide 根据尺寸与选项选出唯一的变换。所有参数错误都在这里暴露，
// 保证执行阶段开始前不会有任何字节写入目标文件。
func (p Policy) Decide(width, height naming.Dimension, opts naming.Options) (Plan, error) {
	if width.IsWildcard() && height.IsWildcard() && opts.Len() == 0 {
		return Plan{Op: Passthrough}, nil
	}
	if limit := p.Limit(); width.Pixels() > limit || height.Pixels() > limit {
		return Plan{}, fmt.Errorf("%dx%d over %d: %w", width.Pixels(), height.Pixels(), limit, ErrDimensionTooLarge)
	}

	plan := Plan{
		Op:     DefaultCrop,
		Width:  width.Pixels(),
		Height: height.Pixels(),
	}

	if opts.Has(OptionTrim) && opts.Has(OptionTrimPerc) {
		return Plan{}, ErrConflictingOptions
	}
	switch {
	case opts.Has(OptionTrim):
		trim, err := parseTrim(TrimPixels, opts.Args(OptionTrim))
		if err != nil {
			return Plan{}, err
		}
		plan.Trim = trim
	case opts.Has(OptionTrimPerc):
		trim, err := parseTrim(TrimPercent, opts.Args(OptionTrimPerc))
		if err != nil {
			return Plan{}, err
		}
		plan.Trim = trim
	}

	bothDims := !width.IsWildcard() && !height.IsWildcard()
	switch {
	case opts.Has(OptionQuadrant):
		if !bothDims {
			return Plan{}, fmt.Errorf("%s: %w", OptionQuadrant, ErrMissingDimension)
		}
		args := opts.Args(OptionQuadrant)
		if len(args) == 0 {
			return Plan{}, fmt.Errorf("%w: none specified", ErrInvalidQuadrant)
		}
		quadrant := strings.ToUpper(args[0])
		if _, ok := quadrantAnchors[quadrant]; !ok {
			return Plan{}, fmt.Errorf("%w: %s", ErrInvalidQuadrant, args[0])
		}
		plan.Op = Quadrant
		plan.Quadrant = quadrant
	case opts.Has(OptionResize):
		if !bothDims {
			return Plan{}, fmt.Errorf("%s: %w", OptionResize, ErrMissingDimension)
		}
		plan.Op = Resize
	}

	if opts.Has(OptionFilters) {
		plan.Filters = append([]string(nil), opts.Args(OptionFilters)...)
	}
	return plan, nil
}

func parseTrim(kind TrimKind, args []string) (Trim, error) {
	name := OptionTrim
	if kind == TrimPercent {
		name = OptionTrimPerc
	}
	if len(args) != 4 {
		return Trim{}, fmt.Errorf("%s needs 4 values, got %d: %w", name, len(args), ErrInvalidOptionArgs)
	}
	var values [4]float64
	for i, raw := range args {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Trim{}, fmt.Errorf("%s value %q: %w", name, raw, ErrInvalidOptionArgs)
		}
		if kind == TrimPercent && (v < 0 || v > 1) {
			return Trim{}, fmt.Errorf("%s value %q outside [0,1]: %w", name, raw, ErrInvalidOptionArgs)
		}
		values[i] = v
	}
	if values[2] <= values[0] || values[3] <= values[1] {
		return Trim{}, fmt.Errorf("%s needs x1 < x2 and y1 < y2: %w", name, ErrInvalidOptionArgs)
	}
	return Trim{Kind: kind, X1: values[0], Y1: values[1], X2: values[2], Y2: values[3]}, nil
}
