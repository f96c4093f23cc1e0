package config

import (
	"testing"
	"time"
)

func TestLoadFailsWithMissingFields(t *testing.T) {
	if _, err := Load(testConfigPath(t, "missing.toml")); err == nil {
		t.Fatalf("缺失字段的配置应返回错误")
	}
}

func TestLoadRejectsInvalidDuration(t *testing.T) {
	cfg := `
LogLevel = "info"
SourceDirs = ["./public"]
ReadTimeout = "boom"
`
	path := writeTempConfig(t, cfg)
	if _, err := Load(path); err == nil {
		t.Fatalf("无效 Duration 应失败")
	}
}

func TestLoadAcceptsNumericDuration(t *testing.T) {
	cfg := `
SourceDirs = ["./public"]
WriteTimeout = 15
MaxCrops = 0
`
	path := writeTempConfig(t, cfg)
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Global.WriteTimeout.DurationValue() != 15*time.Second {
		t.Fatalf("纯数字应按秒解析, got %s", loaded.Global.WriteTimeout.DurationValue())
	}
	if loaded.Image.CropLimit() != "unlimited" {
		t.Fatalf("MaxCrops=0 表示不限制")
	}
}

func TestLoadMaxDimension(t *testing.T) {
	loaded, err := Load(writeTempConfig(t, `
SourceDirs = ["./public"]
MaxDimension = 2048
`))
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if loaded.Image.MaxDimension != 2048 {
		t.Fatalf("MaxDimension 应为 2048, got %d", loaded.Image.MaxDimension)
	}

	if _, err := Load(writeTempConfig(t, `
SourceDirs = ["./public"]
MaxDimension = -1
`)); err == nil {
		t.Fatalf("负数 MaxDimension 应失败")
	}
}

func TestDurationUnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("0x10")); err != nil {
		t.Fatalf("十六进制秒值应被接受: %v", err)
	}
	if d.DurationValue() != 16*time.Second {
		t.Fatalf("unexpected duration: %s", d.DurationValue())
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Fatalf("非法 Duration 应报错")
	}
}
