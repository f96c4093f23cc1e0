package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if g.ReadTimeout.DurationValue() < 0 {
		return newFieldError("Global.ReadTimeout", "不能为负数")
	}
	if g.WriteTimeout.DurationValue() < 0 {
		return newFieldError("Global.WriteTimeout", "不能为负数")
	}

	img := c.Image
	if len(img.SourceDirs) == 0 {
		return errors.New("至少需要配置一个 SourceDirs 目录")
	}
	seen := map[string]struct{}{}
	for i, dir := range img.SourceDirs {
		if strings.TrimSpace(dir) == "" {
			return newFieldError(sourceDirField(i), "不能为空")
		}
		if _, exists := seen[dir]; exists {
			return newFieldError(sourceDirField(i), "重复")
		}
		seen[dir] = struct{}{}
	}
	if img.MaxCrops < 0 {
		return newFieldError("Image.MaxCrops", "不能为负数")
	}
	if img.MaxDimension < 1 {
		return newFieldError("Image.MaxDimension", "必须大于 0")
	}
	if img.JPEGQuality < 1 || img.JPEGQuality > 100 {
		return newFieldError("Image.JPEGQuality", "必须在 1-100")
	}
	if img.Host != "" {
		if err := validateHost(img.Host); err != nil {
			return fmt.Errorf("Image.Host: %w", err)
		}
	}

	return nil
}

// validateHost 允许空路径的绝对 URL（http/https）或以 / 开头的路径前缀。
func validateHost(raw string) error {
	if strings.HasPrefix(raw, "/") {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https 或以 / 开头的前缀: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("缺少 Host: %s", raw)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("不允许包含查询串或锚点: %s", raw)
	}
	return nil
}
