package client

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
)

var (
	ErrUnknownLayer     = errors.New("unknown tile layer")
	ErrMissingTimestamp = errors.New("tile layer requires a frame timestamp")
	ErrTileOutOfRange   = errors.New("tile coordinates out of range")
)

const MaxZoom = 20

// TileSource builds the upstream URL for one layer. Implementations carry
// their own template so a provider change stays inside one source.
type TileSource interface {
	URL(req models.TileRequest) (string, error)
	CacheControl() string
}

// RainViewer v2 tile path.
const RainViewerTemplateV2 = "{host}/v2/{kind}/{ts}/{size}/{z}/{x}/{y}/{color}/{options}.png"

type RainViewerTiles struct {
	Host     string
	Kind     string // radar or satellite
	Template string
	Size     int
	Color    int
	Options  string
	MaxAge   int
}

func NewRainViewerTiles(host, kind string, maxAge int) *RainViewerTiles {
	return &RainViewerTiles{
		Host:     strings.TrimRight(host, "/"),
		Kind:     kind,
		Template: RainViewerTemplateV2,
		Size:     256,
		Color:    2,
		Options:  "1_1",
		MaxAge:   maxAge,
	}
}

func (t *RainViewerTiles) URL(req models.TileRequest) (string, error) {
	if req.Timestamp <= 0 {
		return "", ErrMissingTimestamp
	}
	r := strings.NewReplacer(
		"{host}", t.Host,
		"{kind}", t.Kind,
		"{ts}", strconv.FormatInt(req.Timestamp, 10),
		"{size}", strconv.Itoa(t.Size),
		"{z}", strconv.Itoa(req.Z),
		"{x}", strconv.Itoa(req.X),
		"{y}", strconv.Itoa(req.Y),
		"{color}", strconv.Itoa(t.Color),
		"{options}", t.Options,
	)
	return r.Replace(t.Template), nil
}

func (t *RainViewerTiles) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d", t.MaxAge)
}

// OpenWeatherMap map layers the proxy will forward by name.
var OpenWeatherLayers = map[string]bool{
	"clouds_new":        true,
	"precipitation_new": true,
	"pressure_new":      true,
	"wind_new":          true,
	"temp_new":          true,
}

// OpenWeatherTiles serves a fixed layer, or the request's Name when Layer is empty.
type OpenWeatherTiles struct {
	BaseURL string
	APIKey  string
	Layer   string
	MaxAge  int
}

func (t *OpenWeatherTiles) URL(req models.TileRequest) (string, error) {
	layer := t.Layer
	if layer == "" {
		layer = req.Name
	}
	if !OpenWeatherLayers[layer] {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return fmt.Sprintf("%s/map/%s/%d/%d/%d.png?appid=%s",
		strings.TrimRight(t.BaseURL, "/"), layer, req.Z, req.X, req.Y, t.APIKey), nil
}

func (t *OpenWeatherTiles) CacheControl() string {
	return fmt.Sprintf("public, max-age=%d", t.MaxAge)
}
