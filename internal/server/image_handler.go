package server

import (
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/cropd/cropd/internal/derive"
	"github.com/cropd/cropd/internal/logging"
)

type imageHandler struct {
	images       ImageService
	logger       *logrus.Logger
	enableDelete bool
}

// serve 处理 GET/HEAD：命中或生成成功返回图片字节，PassThrough 返回普通 404。
func (h *imageHandler) serve(c fiber.Ctx) error {
	started := time.Now()
	reqPath := requestPath(c)

	result, err := h.images.Handle(c.Context(), reqPath)
	if err != nil {
		status, code := errorStatus(err)
		h.logResult(c, reqPath, nil, status, started, err)
		return writeError(c, status, code)
	}
	if result.Outcome == derive.PassThrough {
		h.logResult(c, reqPath, result, fiber.StatusNotFound, started, nil)
		return writeError(c, fiber.StatusNotFound, "not_found")
	}

	if contentType := contentTypeFor(reqPath); contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	c.Set(fiber.HeaderAcceptRanges, "bytes")
	c.Set("X-Cropd-Cache-Hit", boolHeader(result.CacheHit))
	c.Status(fiber.StatusOK)
	h.logResult(c, reqPath, result, fiber.StatusOK, started, nil)

	if c.Method() == fiber.MethodHead {
		c.Response().Header.SetContentLength(len(result.Body))
		return nil
	}
	return c.Send(result.Body)
}

// delete 执行级联删除，源图不存在时返回 404。
func (h *imageHandler) delete(c fiber.Ctx) error {
	started := time.Now()
	reqPath := rawRequestPath(c)

	deleted, err := h.images.Delete(c.Context(), reqPath)
	fields := logrus.Fields{
		"action":     "delete",
		"path":       reqPath,
		"deleted":    deleted,
		"request_id": RequestID(c),
		"elapsed_ms": time.Since(started).Milliseconds(),
	}
	if err != nil {
		status, code := errorStatus(err)
		fields["error"] = err.Error()
		h.logger.WithFields(fields).Error("delete_failed")
		return writeError(c, status, code)
	}
	h.logger.WithFields(fields).Info("delete_complete")

	status := fiber.StatusOK
	if !deleted {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"deleted": deleted})
}

func (h *imageHandler) logResult(c fiber.Ctx, reqPath string, result *derive.Result, status int, started time.Time, err error) {
	var (
		source   string
		outcome  = "failed"
		cacheHit bool
	)
	if result != nil {
		source = result.Source
		outcome = result.Outcome.String()
		cacheHit = result.CacheHit
	}
	fields := logging.RequestFields(reqPath, source, outcome, cacheHit)
	fields["action"] = "image"
	fields["status"] = status
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if reqID := RequestID(c); reqID != "" {
		fields["request_id"] = reqID
	}
	if err != nil {
		fields["error"] = err.Error()
		fields["error_kind"] = string(derive.KindOf(err))
		h.logger.WithFields(fields).Error("image_failed")
		return
	}
	h.logger.WithFields(fields).Info("image_complete")
}

// errorStatus 将失败类别映射为 HTTP 状态码与错误码。
func errorStatus(err error) (int, string) {
	kind := derive.KindOf(err)
	switch kind {
	case derive.KindConflictingOptions,
		derive.KindInvalidQuadrant,
		derive.KindMissingDimension,
		derive.KindInvalidOptionArgs,
		derive.KindDimensionTooLarge:
		return fiber.StatusBadRequest, string(kind)
	case derive.KindCropLimitExceeded:
		return fiber.StatusForbidden, string(kind)
	case derive.KindSourceNotFound:
		return fiber.StatusNotFound, string(kind)
	case "":
		return fiber.StatusInternalServerError, "internal_error"
	default:
		return fiber.StatusInternalServerError, string(kind)
	}
}

func contentTypeFor(p string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(p), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return ""
	}
}

func boolHeader(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
