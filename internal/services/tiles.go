package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/bobby-s-dev/sentinel-backend/internal/observability"
	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"go.uber.org/zap"
)

const PlaceholderCacheControl = "public, max-age=60"

// TransparentPNG is the 1x1 tile served whenever an upstream tile is unavailable.
var TransparentPNG = mustDecode("iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

func mustDecode(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// TileResolver maps a layer type to its tile source.
type TileResolver struct {
	sources map[models.LayerType]client.TileSource
}

func NewTileResolver(sources map[models.LayerType]client.TileSource) *TileResolver {
	return &TileResolver{sources: sources}
}

// Resolve validates the request and returns the upstream URL. All errors are
// client errors and are returned before any network call.
func (r *TileResolver) Resolve(req models.TileRequest) (string, client.TileSource, error) {
	source, ok := r.sources[req.Layer]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", client.ErrUnknownLayer, req.Layer)
	}
	if req.Z < 0 || req.Z > client.MaxZoom {
		return "", nil, fmt.Errorf("%w: zoom %d", client.ErrTileOutOfRange, req.Z)
	}
	limit := 1 << req.Z
	if req.X < 0 || req.Y < 0 || req.X >= limit || req.Y >= limit {
		return "", nil, fmt.Errorf("%w: %d/%d/%d", client.ErrTileOutOfRange, req.Z, req.X, req.Y)
	}

	url, err := source.URL(req)
	if err != nil {
		return "", nil, err
	}
	return url, source, nil
}

type Tile struct {
	Body         []byte
	CacheControl string
	Placeholder  bool
}

// TileProxy fetches tiles and masks every upstream failure with TransparentPNG.
type TileProxy struct {
	resolver     *TileResolver
	fetcher      Fetcher
	timeout      time.Duration
	metrics      *observability.Metrics
	logger       *zap.Logger
	placeholders atomic.Int64
}

func NewTileProxy(resolver *TileResolver, fetcher Fetcher, timeout time.Duration, metrics *observability.Metrics, logger *zap.Logger) *TileProxy {
	return &TileProxy{
		resolver: resolver,
		fetcher:  fetcher,
		timeout:  timeout,
		metrics:  metrics,
		logger:   logger.Named("tiles"),
	}
}

// Fetch returns an error only for invalid requests.
func (p *TileProxy) Fetch(ctx context.Context, req models.TileRequest) (Tile, error) {
	url, source, err := p.resolver.Resolve(req)
	if err != nil {
		return Tile{}, err
	}

	name := tileSourceName(req)
	body, err := p.fetcher.Do(ctx, client.Request{Source: name, URL: url, Timeout: p.timeout})
	if err == nil && !bytes.HasPrefix(body, pngSignature) {
		err = client.Malformed(name, url, errors.New("body is not a PNG"))
	}
	if err != nil {
		p.placeholders.Add(1)
		if p.metrics != nil {
			p.metrics.TilePlaceholders.WithLabelValues(string(req.Layer)).Inc()
		}
		p.logger.Warn("Serving placeholder tile",
			zap.String("layer", name),
			zap.Int("z", req.Z),
			zap.Int("x", req.X),
			zap.Int("y", req.Y),
			zap.Error(err))
		return Tile{Body: TransparentPNG, CacheControl: PlaceholderCacheControl, Placeholder: true}, nil
	}

	return Tile{Body: body, CacheControl: source.CacheControl()}, nil
}

// Placeholders counts placeholder tiles served since start.
func (p *TileProxy) Placeholders() int64 {
	return p.placeholders.Load()
}

func tileSourceName(req models.TileRequest) string {
	if req.Layer == models.LayerOWM {
		return "tile.owm." + req.Name
	}
	return "tile." + string(req.Layer)
}
