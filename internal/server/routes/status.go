package routes

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/cropd/cropd/internal/config"
	"github.com/cropd/cropd/internal/naming"
	"github.com/cropd/cropd/internal/version"
)

// RegisterDiagnosticRoutes 暴露 /-/status 与 /-/url 诊断接口，
// 供运维确认当前配置以及调试派生图 URL 的拼接结果。
func RegisterDiagnosticRoutes(app *fiber.App, cfg *config.Config) {
	if app == nil || cfg == nil {
		return
	}
	builder := naming.NewBuilder(cfg.Image.Host)
	status := encodeStatus(cfg)

	app.Get("/-/status", func(c fiber.Ctx) error {
		return c.JSON(status)
	})

	app.Get("/-/url", func(c fiber.Ctx) error {
		src := strings.TrimSpace(c.Query("src"))
		if src == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "src_required"})
		}
		width, ok := parseDimensionQuery(c.Query("w"))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_width"})
		}
		height, ok := parseDimensionQuery(c.Query("h"))
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_height"})
		}
		opts, invalid := parseOptionQuery(c.Request().URI().QueryArgs().PeekMulti("opt"))
		if invalid != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_option", "option": invalid})
		}
		return c.JSON(fiber.Map{"url": builder.URL(src, width, height, opts...)})
	})
}

type statusPayload struct {
	Version      string   `json:"version"`
	Host         string   `json:"host"`
	SourceDirs   []string `json:"source_dirs"`
	MaxCrops     string   `json:"max_crops"`
	MaxDimension int      `json:"max_dimension"`
	JPEGQuality  int      `json:"jpeg_quality"`
	AutoOrient   bool     `json:"auto_orient"`
	EnableDelete bool     `json:"enable_delete"`
}

func encodeStatus(cfg *config.Config) statusPayload {
	return statusPayload{
		Version:      version.Full(),
		Host:         cfg.Image.Host,
		SourceDirs:   append([]string(nil), cfg.Image.SourceDirs...),
		MaxCrops:     cfg.Image.CropLimit(),
		MaxDimension: cfg.Image.MaxDimension,
		JPEGQuality:  cfg.Image.JPEGQuality,
		AutoOrient:   cfg.Image.AutoOrient,
		EnableDelete: cfg.Image.EnableDelete,
	}
}

// parseDimensionQuery 接受空串、"_" 或非负整数，空串与 "_" 视为通配。
func parseDimensionQuery(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "_" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func parseOptionQuery(values [][]byte) ([]naming.Option, string) {
	opts := make([]naming.Option, 0, len(values))
	for _, raw := range values {
		fragment := strings.TrimSpace(string(raw))
		if fragment == "" {
			continue
		}
		opt, ok := naming.ParseOption(fragment)
		if !ok {
			return nil, fragment
		}
		opts = append(opts, opt)
	}
	return opts, ""
}
