// Package geo 地理计算：插值、大圆距离与圆盘随机采样
package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "geo")

var (
	ErrInvalidPoint = errors.New("invalid coordinate")
	ErrNearPole     = errors.New("center too close to a pole for longitude conversion")
)

// minCosLatitude 经度换算时cos(纬度)的下限，低于该值视为极点附近
const minCosLatitude = 1e-6

// GeoPoint 经纬度坐标（WGS84，单位：度），值类型，按坐标相等比较
type GeoPoint struct {
	Latitude  float64 `yaml:"lat" json:"lat" validate:"latitude"`
	Longitude float64 `yaml:"lon" json:"lon" validate:"longitude"`
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Latitude, p.Longitude)
}

// Valid 坐标是否为有限值且落在合法范围内
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
		math.IsInf(p.Latitude, 0) || math.IsInf(p.Longitude, 0) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// ParseGeoPoint 解析"lat,lon"格式的坐标字符串
// 功能：将配置或命令行中的坐标字符串转换为GeoPoint
// 参数：s-形如"12.9716,77.5946"的字符串
// 返回：坐标与错误信息
func ParseGeoPoint(s string) (GeoPoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return GeoPoint{}, fmt.Errorf("%w: %q", ErrInvalidPoint, s)
	}
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return GeoPoint{}, fmt.Errorf("%w: %q", ErrInvalidPoint, s)
	}
	p := GeoPoint{Latitude: lat, Longitude: lon}
	if !p.Valid() {
		return GeoPoint{}, fmt.Errorf("%w: %q out of range", ErrInvalidPoint, s)
	}
	return p, nil
}

// CheckNotPolar 检查中心点是否可以进行等距矩形近似下的经度换算
// 返回：极点附近返回ErrNearPole
func CheckNotPolar(center GeoPoint) error {
	if math.Cos(toRadians(center.Latitude)) < minCosLatitude {
		return fmt.Errorf("%w: %v", ErrNearPole, center)
	}
	return nil
}
