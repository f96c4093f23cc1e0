package server

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cropd/cropd/internal/derive"
)

// ImageService describes the component that answers image requests and delete
// cascades. *derive.Manager satisfies it; tests inject fakes.
type ImageService interface {
	Handle(ctx context.Context, requestPath string) (*derive.Result, error)
	Delete(ctx context.Context, requestPath string) (bool, error)
}

// AppOptions controls how the Fiber application should behave.
type AppOptions struct {
	Logger *logrus.Logger
	Images ImageService
	// EnableDelete 打开 DELETE 级联删除接口，默认关闭。
	EnableDelete bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const contextKeyRequestID = "_cropd_request_id"

// NewApp builds a Fiber application with request-ID middleware, panic
// recovery and the catch-all image route.
func NewApp(opts AppOptions) (*fiber.App, error) {
	if opts.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Images == nil {
		return nil, errors.New("image service is required")
	}

	app := fiber.New(fiber.Config{
		CaseSensitive: true,
		ReadTimeout:   opts.ReadTimeout,
		WriteTimeout:  opts.WriteTimeout,
	})

	app.Use(recover.New())
	app.Use(requestContextMiddleware())

	handler := &imageHandler{
		images:       opts.Images,
		logger:       opts.Logger,
		enableDelete: opts.EnableDelete,
	}

	app.All("/*", func(c fiber.Ctx) error {
		if isDiagnosticsPath(requestPath(c)) {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead:
			return handler.serve(c)
		case fiber.MethodDelete:
			if !handler.enableDelete {
				return writeError(c, fiber.StatusMethodNotAllowed, "method_not_allowed")
			}
			return handler.delete(c)
		default:
			return writeError(c, fiber.StatusMethodNotAllowed, "method_not_allowed")
		}
	})

	return app, nil
}

// requestContextMiddleware 为每个请求生成请求 ID 并写入响应头。
func requestContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		reqID := uuid.NewString()
		c.Locals(contextKeyRequestID, reqID)
		c.Set("X-Request-ID", reqID)
		return c.Next()
	}
}

// RequestID returns the request identifier stored by the router middleware.
func RequestID(c fiber.Ctx) string {
	if value := c.Locals(contextKeyRequestID); value != nil {
		if reqID, ok := value.(string); ok {
			return reqID
		}
	}
	return ""
}

func isDiagnosticsPath(path string) bool {
	return strings.HasPrefix(path, "/-/")
}

// requestPath 返回已解码的请求路径，空路径视为 "/"。
func requestPath(c fiber.Ctx) string {
	pathVal := string(c.Request().URI().Path())
	if pathVal == "" {
		return "/"
	}
	return pathVal
}

// rawRequestPath 返回未解码的原始路径，由 derive.Manager.Delete 自行解码。
func rawRequestPath(c fiber.Ctx) string {
	raw := string(c.Request().URI().PathOriginal())
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		raw = raw[:idx]
	}
	if raw == "" {
		return "/"
	}
	return raw
}

func writeError(c fiber.Ctx, status int, code string) error {
	return c.Status(status).JSON(fiber.Map{"error": code})
}
