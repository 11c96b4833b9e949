package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/bobby-s-dev/sentinel-backend/internal/services"
	"github.com/bobby-s-dev/sentinel-backend/pkg/client"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

var validate = validator.New()

// Services groups everything the handlers delegate to.
type Services struct {
	Solar   *services.SolarService
	Radar   *services.RadarService
	Tiles   *services.TileProxy
	Meteo   *services.MeteoService
	Transit *services.TransitService
	Moon    *services.MoonService
	Health  *client.HealthMonitor
}

type Handler struct {
	services  Services
	moonLat   float64
	moonLon   float64
	startTime time.Time
	logger    *zap.Logger
}

// NewHandler takes the observer position used by /api/moon when the query omits one.
func NewHandler(svc Services, moonLat, moonLon float64, logger *zap.Logger) *Handler {
	return &Handler{
		services:  svc,
		moonLat:   moonLat,
		moonLon:   moonLon,
		startTime: time.Now(),
		logger:    logger,
	}
}

// GetSolar handles GET /api/solar
func (h *Handler) GetSolar(c *fiber.Ctx) error {
	return c.JSON(h.services.Solar.Conditions(c.UserContext()))
}

// GetMapInfo handles GET /api/map/info
func (h *Handler) GetMapInfo(c *fiber.Ctx) error {
	return c.JSON(h.services.Radar.Frames(c.UserContext()))
}

type tileParams struct {
	Z int `validate:"min=0,max=20"`
	X int `validate:"min=0"`
	Y int `validate:"min=0"`
}

func parseTileParams(c *fiber.Ctx) (tileParams, error) {
	var p tileParams
	var err error

	if p.Z, err = strconv.Atoi(c.Params("z")); err != nil {
		return p, errors.New("zoom must be an integer")
	}
	if p.X, err = strconv.Atoi(c.Params("x")); err != nil {
		return p, errors.New("x must be an integer")
	}
	if p.Y, err = strconv.Atoi(strings.TrimSuffix(c.Params("y"), ".png")); err != nil {
		return p, errors.New("y must be an integer")
	}
	if err := validate.Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

// frame timestamps that fail to parse are left zero; layers that need one reject it
func parseFrameTimestamp(raw string) int64 {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ts < 0 {
		return 0
	}
	return ts
}

// GetTile handles GET /api/map/:type/:ts/:z/:x/:y
func (h *Handler) GetTile(c *fiber.Ctx) error {
	p, err := parseTileParams(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.serveTile(c, models.TileRequest{
		Layer:     models.LayerType(utils.CopyString(c.Params("type"))),
		Timestamp: parseFrameTimestamp(utils.CopyString(c.Params("ts"))),
		Z:         p.Z,
		X:         p.X,
		Y:         p.Y,
	})
}

// GetStaticRadarTile handles GET /api/map/radar_static/:ts/:z/:x/:y.png
func (h *Handler) GetStaticRadarTile(c *fiber.Ctx) error {
	p, err := parseTileParams(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.serveTile(c, models.TileRequest{
		Layer:     models.LayerRadarStatic,
		Timestamp: parseFrameTimestamp(utils.CopyString(c.Params("ts"))),
		Z:         p.Z,
		X:         p.X,
		Y:         p.Y,
	})
}

// GetOWMTile handles GET /api/map/owm/:layer/:z/:x/:y
func (h *Handler) GetOWMTile(c *fiber.Ctx) error {
	p, err := parseTileParams(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return h.serveTile(c, models.TileRequest{
		Layer: models.LayerOWM,
		Name:  utils.CopyString(c.Params("layer")),
		Z:     p.Z,
		X:     p.X,
		Y:     p.Y,
	})
}

func (h *Handler) serveTile(c *fiber.Ctx, req models.TileRequest) error {
	tile, err := h.services.Tiles.Fetch(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, client.ErrUnknownLayer) ||
			errors.Is(err, client.ErrMissingTimestamp) ||
			errors.Is(err, client.ErrTileOutOfRange) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, tile.CacheControl)
	if tile.Placeholder {
		c.Set("X-Tile-Fallback", "1")
	}
	return c.Send(tile.Body)
}

type meteoQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

// GetMeteo handles GET /api/meteo?lat=&lon=
func (h *Handler) GetMeteo(c *fiber.Ctx) error {
	q := meteoQuery{Lat: utils.CopyString(c.Query("lat")), Lon: utils.CopyString(c.Query("lon"))}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "lat and lon query parameters are required")
	}

	body, err := h.services.Meteo.Forecast(c.UserContext(), q.Lat, q.Lon)
	if err != nil {
		h.logger.Error("Meteo proxy failed",
			zap.String("lat", q.Lat),
			zap.String("lon", q.Lon),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Meteo Proxy Failed",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

type stopParams struct {
	ID string `validate:"required,alphanum,max=32"`
}

// GetDepartures handles GET /api/pkp/:id
func (h *Handler) GetDepartures(c *fiber.Ctx) error {
	p := stopParams{ID: utils.CopyString(c.Params("id"))}
	if err := validate.Struct(p); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid stop id")
	}

	body, ok := h.services.Transit.Departures(c.UserContext(), p.ID)
	if !ok {
		return c.JSON(services.TransitOffline)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

type moonQuery struct {
	Lat string `validate:"omitempty,latitude"`
	Lon string `validate:"omitempty,longitude"`
}

// GetMoon handles GET /api/moon
func (h *Handler) GetMoon(c *fiber.Ctx) error {
	q := moonQuery{Lat: c.Query("lat"), Lon: c.Query("lon")}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid lat or lon")
	}

	lat, lon := h.moonLat, h.moonLon
	if q.Lat != "" {
		lat, _ = strconv.ParseFloat(q.Lat, 64)
	}
	if q.Lon != "" {
		lon, _ = strconv.ParseFloat(q.Lon, 64)
	}

	info, err := h.services.Moon.Moon(c.UserContext(), lat, lon)
	if err != nil {
		h.logger.Error("Moon proxy failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Moon Proxy Failed",
		})
	}
	return c.JSON(info)
}

// GetHealth handles GET /api/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"uptime":    time.Since(h.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC(),
		"upstreams": h.services.Health.Snapshot(),
	})
}

// ErrorHandler renders every handler error as JSON. Anything that is not a
// fiber.Error is an internal fault and its text is not exposed.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	if code >= fiber.StatusInternalServerError {
		zap.L().Error("HTTP error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   msg,
		"success": false,
	})
}
