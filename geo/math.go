package geo

import (
	"math"

	"github.com/tommyle1310/test-map/utils/randengine"
)

const (
	EarthRadiusMeters    = 6371000.0 // 地球平均半径（米）
	MetersPerDegreeOfLat = 111300.0  // 每度纬度对应的米数
)

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Lerp 线性插值 a + (b-a)*t，不对t做截断，由调用方决定取值范围
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InterpolatePoint 对纬度、经度分别做线性插值
// 说明：平面近似而非测地线插值，仅适用于短路段
func InterpolatePoint(p0, p1 GeoPoint, t float64) GeoPoint {
	return GeoPoint{
		Latitude:  Lerp(p0.Latitude, p1.Latitude, t),
		Longitude: Lerp(p0.Longitude, p1.Longitude, t),
	}
}

// HaversineDistanceMeters 计算两点间的大圆距离（米）
// 功能：使用Haversine公式计算球面距离
// 参数：p0,p1-两个坐标点
// 返回：距离（米），对称且相同点距离为0
func HaversineDistanceMeters(p0, p1 GeoPoint) float64 {
	lat1 := toRadians(p0.Latitude)
	lat2 := toRadians(p1.Latitude)
	dLat := lat2 - lat1
	dLon := toRadians(p1.Longitude - p0.Longitude)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	// 接近对跖点时舍入误差可能使a略大于1
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// OffsetMeters 以中心点为原点，按方位角θ和距离d（米）计算偏移后的坐标
// 算法说明（等距矩形近似）：
// 1. Δlat = d/111300 · sin(θ)
// 2. Δlon = d/(111300·cos(lat)) · cos(θ)
// 说明：
//   - 极点附近cos(lat)→0，调用前必须通过CheckNotPolar，否则panic
//   - 结果经度折回[-180, 180]，跨越180°经线时不会产生非法坐标
func OffsetMeters(center GeoPoint, d, theta float64) GeoPoint {
	cosLat := math.Cos(toRadians(center.Latitude))
	if cosLat < minCosLatitude {
		log.Panicf("offset from near-pole center %v", center)
	}
	return GeoPoint{
		Latitude:  center.Latitude + (d/MetersPerDegreeOfLat)*math.Sin(theta),
		Longitude: math.Remainder(center.Longitude+(d/(MetersPerDegreeOfLat*cosLat))*math.Cos(theta), 360),
	}
}

// RandomPointInAnnulus 在中心点周围随机生成一个坐标
// 功能：方位角在[0, 2π)均匀采样，距离在[0, radius+extraSpread)线性均匀采样
// 参数：rnd-随机数引擎，center-中心点，radiusMeters-名义半径，extraSpreadMeters-额外扩散距离
// 返回：随机坐标
// 说明：距离按线性而非面积均匀采样，点会向中心聚集，这是既定的生成策略
func RandomPointInAnnulus(rnd *randengine.Engine, center GeoPoint, radiusMeters, extraSpreadMeters float64) GeoPoint {
	theta := rnd.AngleSafe()
	d := rnd.UniformSafe(0, radiusMeters+extraSpreadMeters)
	return OffsetMeters(center, d, theta)
}
