package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if seconds, err := time.ParseDuration(raw); err == nil {
		*d = Duration(seconds)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述进程级运行参数，启动时加载一次，此后只读。
type GlobalConfig struct {
	ListenPort    int      `mapstructure:"ListenPort"`
	LogLevel      string   `mapstructure:"LogLevel"`
	LogFilePath   string   `mapstructure:"LogFilePath"`
	LogMaxSize    int      `mapstructure:"LogMaxSize"`
	LogMaxBackups int      `mapstructure:"LogMaxBackups"`
	LogCompress   bool     `mapstructure:"LogCompress"`
	ReadTimeout   Duration `mapstructure:"ReadTimeout"`
	WriteTimeout  Duration `mapstructure:"WriteTimeout"`
}

// ImageConfig 控制源图查找、裁剪上限与输出编码。
type ImageConfig struct {
	// Host 是 URL 构建时拼接的前缀，例如 https://cdn.example.com。
	Host string `mapstructure:"Host"`
	// SourceDirs 按顺序查找源图的根目录。
	SourceDirs []string `mapstructure:"SourceDirs"`
	// MaxCrops 单张源图允许的派生文件数量，0 表示不限制。
	MaxCrops int `mapstructure:"MaxCrops"`
	// MaxDimension 派生图单边允许的最大像素数。
	MaxDimension int  `mapstructure:"MaxDimension"`
	JPEGQuality  int  `mapstructure:"JPEGQuality"`
	AutoOrient   bool `mapstructure:"AutoOrient"`
	EnableDelete bool `mapstructure:"EnableDelete"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Image  ImageConfig  `mapstructure:",squash"`
}

// CropLimit 返回用于日志输出的裁剪上限描述。
func (c ImageConfig) CropLimit() string {
	if c.MaxCrops <= 0 {
		return "unlimited"
	}
	return strconv.Itoa(c.MaxCrops)
}
