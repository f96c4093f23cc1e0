package derive

import (
	"errors"
	"fmt"

	"github.com/cropd/cropd/internal/crop"
)

// Kind 标识派生流程中的失败类别。
type Kind string

const (
	KindSourceNotFound         Kind = "source_not_found"
	KindDestinationNotWritable Kind = "destination_not_writable"
	KindConflictingOptions     Kind = "conflicting_options"
	KindInvalidQuadrant        Kind = "invalid_quadrant"
	KindMissingDimension       Kind = "missing_dimension_for_option"
	KindInvalidOptionArgs      Kind = "invalid_option_args"
	KindDimensionTooLarge      Kind = "dimension_too_large"
	KindCropLimitExceeded      Kind = "crop_limit_exceeded"
	KindUnlinkFailed           Kind = "unlink_failed"
	KindDecodeFailed           Kind = "decode_failed"
	KindEncodeFailed           Kind = "encode_failed"
)

// Error 携带失败类别与底层原因，调用方通过 errors.As 或 KindOf 区分处理。
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 让 errors.Is(err, &Error{Kind: k}) 按类别匹配。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path)
}

func newError(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// KindOf 提取 err 中的失败类别，非 *Error 返回空串。
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ""
}

// policyError 将 crop 包的哨兵错误映射为对应类别。
func policyError(path string, err error) *Error {
	switch {
	case errors.Is(err, crop.ErrConflictingOptions):
		return newError(KindConflictingOptions, path, err)
	case errors.Is(err, crop.ErrInvalidQuadrant):
		return newError(KindInvalidQuadrant, path, err)
	case errors.Is(err, crop.ErrMissingDimension):
		return newError(KindMissingDimension, path, err)
	case errors.Is(err, crop.ErrDimensionTooLarge):
		return newError(KindDimensionTooLarge, path, err)
	default:
		return newError(KindInvalidOptionArgs, path, err)
	}
}
