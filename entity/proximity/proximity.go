// Package proximity 附近司机的生成与按半径过滤
package proximity

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/utils/randengine"
)

var log = logrus.WithField("module", "proximity")

var validate = validator.New()

// DefaultExtraSpreadMeters 生成半径之外额外的扩散距离，保证结果中包含半径外的点
const DefaultExtraSpreadMeters = 1000.0

// Query 一次附近查询
type Query struct {
	Center            geo.GeoPoint
	RadiusMeters      float64 `validate:"gte=0"`
	Population        int     `validate:"gte=0"`
	ExtraSpreadMeters float64 `validate:"gte=0"`
}

// NewQuery 创建并校验附近查询
// 功能：检查坐标范围、半径与数量非负，并拒绝极点附近的中心
// 返回：查询与错误信息
func NewQuery(center geo.GeoPoint, radiusMeters float64, population int) (Query, error) {
	q := Query{
		Center:            center,
		RadiusMeters:      radiusMeters,
		Population:        population,
		ExtraSpreadMeters: DefaultExtraSpreadMeters,
	}
	if err := q.Validate(); err != nil {
		return Query{}, err
	}
	return q, nil
}

func (q Query) Validate() error {
	if !q.Center.Valid() {
		return fmt.Errorf("%w: center %v", geo.ErrInvalidPoint, q.Center)
	}
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("invalid proximity query: %w", err)
	}
	return geo.CheckNotPolar(q.Center)
}

// GeneratePopulation 在中心周围生成模拟司机
// 功能：生成恰好Population个点，ID依次为driver_0, driver_1, ...
// 说明：生成范围为radius+extraSpread，因此部分点落在半径之外
func GeneratePopulation(rnd *randengine.Engine, q Query) []entity.SimulatedPoint {
	return lo.Times(q.Population, func(i int) entity.SimulatedPoint {
		return entity.SimulatedPoint{
			ID:       fmt.Sprintf("driver_%d", i),
			Position: geo.RandomPointInAnnulus(rnd, q.Center, q.RadiusMeters, q.ExtraSpreadMeters),
		}
	})
}

// FilterWithinRadius 保留距离中心不超过radius米的点（含边界），顺序不变
func FilterWithinRadius(points []entity.SimulatedPoint, center geo.GeoPoint, radiusMeters float64) []entity.SimulatedPoint {
	return lo.Filter(points, func(p entity.SimulatedPoint, _ int) bool {
		return geo.HaversineDistanceMeters(center, p.Position) <= radiusMeters
	})
}
