// Package location 设备定位
package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/utils/config"
)

var log = logrus.WithField("module", "location")

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable")
)

// Static 由配置给定的设备定位
type Static struct {
	granted  bool
	position *geo.GeoPoint
}

func NewStatic(c config.LocationConfig) *Static {
	return &Static{granted: c.Granted, position: c.Position}
}

func (s *Static) RequestPermission(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return s.granted, nil
}

func (s *Static) CurrentPosition(ctx context.Context) (geo.GeoPoint, error) {
	if err := ctx.Err(); err != nil {
		return geo.GeoPoint{}, err
	}
	if !s.granted {
		return geo.GeoPoint{}, ErrPermissionDenied
	}
	if s.position == nil {
		return geo.GeoPoint{}, ErrUnavailable
	}
	return *s.position, nil
}

// Resolve 获取初始地图中心
// 功能：请求权限并读取当前位置，拒绝或失败时记录日志并使用fallback
// 返回：中心坐标，以及是否为真实定位
func Resolve(ctx context.Context, p entity.ILocationProvider, fallback geo.GeoPoint) (geo.GeoPoint, bool) {
	granted, err := p.RequestPermission(ctx)
	if err != nil || !granted {
		log.Warnf("permission to access location was denied: %v", errOrDenied(err))
		return fallback, false
	}
	pos, err := p.CurrentPosition(ctx)
	if err != nil {
		log.Warnf("current position unavailable: %v", err)
		return fallback, false
	}
	return pos, true
}

func errOrDenied(err error) error {
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return ErrPermissionDenied
}
