package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if cfg.Global.ReadTimeout.DurationValue() != 30*time.Second {
		t.Fatalf("ReadTimeout 应该自动填充默认值, got %s", cfg.Global.ReadTimeout.DurationValue())
	}
	if cfg.Global.ListenPort != 5000 {
		t.Fatalf("ListenPort 应当被解析")
	}
	if cfg.Image.Host != "https://cdn.example.com" {
		t.Fatalf("Host 末尾的斜杠应被去除, got %q", cfg.Image.Host)
	}
	if len(cfg.Image.SourceDirs) != 2 {
		t.Fatalf("SourceDirs 应保留两个目录, got %v", cfg.Image.SourceDirs)
	}
	for _, dir := range cfg.Image.SourceDirs {
		if !filepath.IsAbs(dir) {
			t.Fatalf("SourceDirs 应转换为绝对路径: %s", dir)
		}
	}
	if filepath.Base(cfg.Image.SourceDirs[0]) != "public" {
		t.Fatalf("SourceDirs 顺序应保持不变: %v", cfg.Image.SourceDirs)
	}
	if cfg.Image.MaxCrops != 12 || cfg.Image.JPEGQuality != 90 {
		t.Fatalf("unexpected image config: %+v", cfg.Image)
	}
	if !cfg.Image.AutoOrient {
		t.Fatalf("AutoOrient 默认应开启")
	}
	if cfg.Image.MaxDimension != 5000 {
		t.Fatalf("MaxDimension 默认应为 5000, got %d", cfg.Image.MaxDimension)
	}
	if cfg.Image.EnableDelete {
		t.Fatalf("EnableDelete 默认应关闭")
	}
}

func TestValidateRejectsMissingSourceDirs(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("缺少 SourceDirs 的配置应返回错误")
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateImageFields(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*Config)
		field     string
		shouldErr bool
	}{
		{"valid", func(*Config) {}, "", false},
		{"negative max crops", func(c *Config) { c.Image.MaxCrops = -1 }, "Image.MaxCrops", true},
		{"quality too high", func(c *Config) { c.Image.JPEGQuality = 101 }, "Image.JPEGQuality", true},
		{"zero max dimension", func(c *Config) { c.Image.MaxDimension = 0 }, "Image.MaxDimension", true},
		{"duplicate dirs", func(c *Config) { c.Image.SourceDirs = []string{"/a", "/a"} }, "Image.SourceDirs[1]", true},
		{"empty dir", func(c *Config) { c.Image.SourceDirs = []string{" "} }, "Image.SourceDirs[0]", true},
		{"path host", func(c *Config) { c.Image.Host = "/media" }, "", false},
		{"bad host scheme", func(c *Config) { c.Image.Host = "ftp://cdn.local" }, "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for %s: %v", tc.name, err)
			}
			if tc.field != "" {
				var fieldErr FieldError
				if !errors.As(err, &fieldErr) || fieldErr.Field != tc.field {
					t.Fatalf("expected field %s, got %v", tc.field, err)
				}
			}
		})
	}
}

func TestCropLimitDescription(t *testing.T) {
	if got := (ImageConfig{}).CropLimit(); got != "unlimited" {
		t.Fatalf("未设置上限应为 unlimited, got %s", got)
	}
	if got := (ImageConfig{MaxCrops: 4}).CropLimit(); got != "4" {
		t.Fatalf("unexpected crop limit: %s", got)
	}
}

func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:   5000,
			ReadTimeout:  Duration(time.Second),
			WriteTimeout: Duration(time.Second),
		},
		Image: ImageConfig{
			SourceDirs:   []string{"/srv/public"},
			MaxDimension: 5000,
			JPEGQuality:  95,
		},
	}
}
