// Package tomtom TomTom路径规划与地理编码HTTP客户端
package tomtom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/tommyle1310/test-map/entity"
	"github.com/tommyle1310/test-map/geo"
	"github.com/tommyle1310/test-map/utils/config"
)

var log = logrus.WithField("module", "tomtom")

var (
	ErrNoRoute    = errors.New("no route in response")
	ErrMissingKey = errors.New("tomtom api key not configured")
)

// Client TomTom服务客户端
// 功能：实现entity.IRouter与entity.IGeocoder，每次调用只发一次请求，不重试
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient 根据运行时配置创建客户端，单次请求超时取自配置
func NewClient(rc *config.RuntimeConfig) *Client {
	c := rc.All.TomTom
	return &Client{
		baseURL:    strings.TrimRight(c.BaseURL, "/"),
		apiKey:     c.APIKey,
		httpClient: &http.Client{Timeout: rc.TomTomTimeout()},
	}
}

type routeResponse struct {
	Routes []struct {
		Legs []struct {
			Points []struct {
				Latitude  float64 `json:"latitude"`
				Longitude float64 `json:"longitude"`
			} `json:"points"`
		} `json:"legs"`
	} `json:"routes"`
}

type searchResult struct {
	Address struct {
		FreeformAddress string `json:"freeformAddress"`
	} `json:"address"`
	Position struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"position"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

func formatPoint(p geo.GeoPoint) string {
	return strconv.FormatFloat(p.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(p.Longitude, 'f', -1, 64)
}

// CalculateRoute 请求起点到终点的驾车路线
// 功能：GET {base}/routing/1/calculateRoute/{lat,lon}:{lat,lon}/json
// 返回：第一条路线全部路段的路点，没有路线时返回ErrNoRoute
func (c *Client) CalculateRoute(ctx context.Context, origin, destination geo.GeoPoint) ([]geo.GeoPoint, error) {
	path := fmt.Sprintf("/routing/1/calculateRoute/%s:%s/json", formatPoint(origin), formatPoint(destination))
	var res routeResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, fmt.Errorf("calculate route: %w", err)
	}
	if len(res.Routes) == 0 {
		return nil, ErrNoRoute
	}
	var points []geo.GeoPoint
	for _, leg := range res.Routes[0].Legs {
		for _, p := range leg.Points {
			points = append(points, geo.GeoPoint{Latitude: p.Latitude, Longitude: p.Longitude})
		}
	}
	if len(points) == 0 {
		return nil, ErrNoRoute
	}
	log.Debugf("route %v -> %v: %d points", origin, destination, len(points))
	return points, nil
}

// Search 自由文本地理编码
// 功能：GET {base}/search/2/search/{query}.json
// 返回：候选地点列表，地址按逗号切分为展示用的三段
func (c *Client) Search(ctx context.Context, query string) ([]entity.Suggestion, error) {
	path := "/search/2/search/" + url.PathEscape(query) + ".json"
	var res searchResponse
	if err := c.get(ctx, path, &res); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return lo.Map(res.Results, func(r searchResult, _ int) entity.Suggestion {
		return entity.NewSuggestion(r.Address.FreeformAddress, geo.GeoPoint{Latitude: r.Position.Lat, Longitude: r.Position.Lon})
	}), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.apiKey == "" {
		return ErrMissingKey
	}
	query := url.Values{}
	query.Set("key", c.apiKey)
	u := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.baseURL+path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
