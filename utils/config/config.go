package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/tommyle1310/test-map/geo"
	"gopkg.in/yaml.v2"
)

// 默认值
const (
	DefaultStep              = 0.01
	DefaultRadiusMeters      = 1000.0
	DefaultPopulation        = 7
	DefaultExtraSpreadMeters = 1000.0
	DefaultDebounceMS        = 500
	DefaultMinQueryLength    = 3
	DefaultTomTomBaseURL     = "https://api.tomtom.com"
	DefaultTomTomTimeoutMS   = 10000
)

var validate = validator.New()

// Load 读取并校验配置
// 功能：从文件路径或Base64编码的数据中加载YAML配置
// 参数：path-配置文件路径，data-Base64编码的配置数据（path为空时使用）
// 返回：配置对象与错误信息
// 算法说明：
// 1. 优先读取文件，否则解码Base64数据，二者都为空时返回空配置（全部取默认值）
// 2. 使用UnmarshalStrict拒绝未知字段
// 3. 按结构体标签校验取值范围
func Load(path, data string) (Config, error) {
	var c Config
	var file []byte
	var err error
	if path != "" {
		file, err = os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config file load err: %w", err)
		}
	} else if data != "" {
		file, err = base64.StdEncoding.DecodeString(data)
		if err != nil {
			return c, fmt.Errorf("config data load err: %w", err)
		}
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		return c, fmt.Errorf("config parse err: %w", err)
	}
	if err := Validate(c); err != nil {
		return c, err
	}
	return c, nil
}

// OverrideNearbyCenter 用"lat,lon"格式的命令行参数覆盖附近查询中心，空字符串不做修改
func (c *Config) OverrideNearbyCenter(s string) error {
	if s == "" {
		return nil
	}
	p, err := geo.ParseGeoPoint(s)
	if err != nil {
		return fmt.Errorf("nearby center: %w", err)
	}
	c.Nearby.Center = &p
	return nil
}

// Validate 按结构体标签校验配置
func Validate(c Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// RuntimeConfig 运行时配置
// 功能：在原始配置基础上补齐默认值，供各组件直接读取
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：为未填写的字段设置默认值
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	if config.Control.Step == 0 {
		config.Control.Step = DefaultStep
	}
	// 附近司机参数允许显式设为0，只有未填写时才使用默认值
	if config.Nearby.RadiusMeters == nil {
		config.Nearby.RadiusMeters = lo.ToPtr(DefaultRadiusMeters)
	}
	if config.Nearby.Population == nil {
		config.Nearby.Population = lo.ToPtr(DefaultPopulation)
	}
	if config.Nearby.ExtraSpreadMeters == nil {
		config.Nearby.ExtraSpreadMeters = lo.ToPtr(DefaultExtraSpreadMeters)
	}
	if config.Search.DebounceMS == 0 {
		config.Search.DebounceMS = DefaultDebounceMS
	}
	if config.Search.MinQueryLength == 0 {
		config.Search.MinQueryLength = DefaultMinQueryLength
	}
	if config.TomTom.BaseURL == "" {
		config.TomTom.BaseURL = DefaultTomTomBaseURL
	}
	if config.TomTom.TimeoutMS == 0 {
		config.TomTom.TimeoutMS = DefaultTomTomTimeoutMS
	}

	rc.All = config
	rc.C = config.Control
	return rc
}

// Interval 返回tick周期；未配置时使用画面默认值
func (rc *RuntimeConfig) Interval(fallback time.Duration) time.Duration {
	if rc.C.IntervalMS > 0 {
		return time.Duration(rc.C.IntervalMS) * time.Millisecond
	}
	return fallback
}

// MaxDuration 演示最长运行时间，0表示不限
func (rc *RuntimeConfig) MaxDuration() time.Duration {
	return time.Duration(rc.C.MaxDurationMS) * time.Millisecond
}

// DebounceWindow 搜索防抖窗口
func (rc *RuntimeConfig) DebounceWindow() time.Duration {
	return time.Duration(rc.All.Search.DebounceMS) * time.Millisecond
}

// TomTomTimeout 单次HTTP请求超时
func (rc *RuntimeConfig) TomTomTimeout() time.Duration {
	return time.Duration(rc.All.TomTom.TimeoutMS) * time.Millisecond
}
