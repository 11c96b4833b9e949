package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string        `env:"PORT, default=3000"`
		ReadTimeout  time.Duration `env:"READ_TIMEOUT, default=20s"`
		WriteTimeout time.Duration `env:"WRITE_TIMEOUT, default=20s"`
		LogLevel     string        `env:"LOG_LEVEL, default=info"`
		CORSOrigins  string        `env:"CORS_ORIGINS, default=*"`
	}

	SWPC struct {
		SolarIndicesURL string        `env:"SWPC_SOLAR_INDICES_URL, default=https://services.swpc.noaa.gov/text/daily-solar-indices.txt"`
		KpURL           string        `env:"SWPC_KP_URL, default=https://services.swpc.noaa.gov/products/noaa-planetary-k-index.json"`
		WindURL         string        `env:"SWPC_WIND_URL, default=https://services.swpc.noaa.gov/products/summary/solar-wind-speed.json"`
		XrayURL         string        `env:"SWPC_XRAY_URL, default=https://services.swpc.noaa.gov/json/goes/primary/xrays-1-day.json"`
		Timeout         time.Duration `env:"SOLAR_TIMEOUT, default=10s"`
	}

	Maps struct {
		RainViewerMapsURL string        `env:"RAINVIEWER_MAPS_URL, default=https://api.rainviewer.com/public/weather-maps.json"`
		RainViewerHost    string        `env:"RAINVIEWER_TILE_HOST, default=https://tilecache.rainviewer.com"`
		OWMTileURL        string        `env:"OWM_TILE_URL, default=https://tile.openweathermap.org"`
		OWMAPIKey         string        `env:"OWM_API_KEY"`
		InfoTimeout       time.Duration `env:"RADAR_INFO_TIMEOUT, default=5s"`
		TileTimeout       time.Duration `env:"TILE_TIMEOUT, default=8s"`
	}

	Meteo struct {
		URL     string        `env:"OPENMETEO_URL, default=https://api.open-meteo.com/v1"`
		Timeout time.Duration `env:"METEO_TIMEOUT, default=10s"`
	}

	Transit struct {
		URL     string        `env:"TRANSIT_URL, default=https://v6.db.transport.rest"`
		Timeout time.Duration `env:"TRANSIT_TIMEOUT, default=8s"`
	}

	Moon struct {
		URL        string        `env:"HORIZONS_URL, default=https://ssd.jpl.nasa.gov/api/horizons.api"`
		Timeout    time.Duration `env:"MOON_TIMEOUT, default=10s"`
		DefaultLat float64       `env:"MOON_DEFAULT_LAT, default=52.2297"`
		DefaultLon float64       `env:"MOON_DEFAULT_LON, default=21.0122"`
	}

	Upstream struct {
		UserAgent string `env:"UPSTREAM_USER_AGENT, default=Mozilla/5.0"`
	}

	Health struct {
		MinRequests    uint32        `env:"HEALTH_MIN_REQUESTS, default=5"`
		FailureRatio   float64       `env:"HEALTH_FAILURE_RATIO, default=0.8"`
		Window         time.Duration `env:"HEALTH_WINDOW, default=10m"`
		OpenTimeout    time.Duration `env:"HEALTH_OPEN_TIMEOUT, default=2m"`
		ReportSchedule string        `env:"HEALTH_REPORT_SCHEDULE, default=@every 5m"`
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := envconfig.Process(ctx, cfg); err != nil {
		return nil, fmt.Errorf("processing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Maps.OWMAPIKey == "" {
		zap.L().Warn("OWM_API_KEY not set, OpenWeatherMap layers will serve placeholders")
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %q", c.Server.Port))
	}

	timeouts := map[string]time.Duration{
		"SOLAR_TIMEOUT":      c.SWPC.Timeout,
		"RADAR_INFO_TIMEOUT": c.Maps.InfoTimeout,
		"TILE_TIMEOUT":       c.Maps.TileTimeout,
		"METEO_TIMEOUT":      c.Meteo.Timeout,
		"TRANSIT_TIMEOUT":    c.Transit.Timeout,
		"MOON_TIMEOUT":       c.Moon.Timeout,
	}
	for name, d := range timeouts {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}

	if c.Health.FailureRatio <= 0 || c.Health.FailureRatio > 1 {
		errs = append(errs, fmt.Errorf("HEALTH_FAILURE_RATIO must be in (0,1], got %v", c.Health.FailureRatio))
	}
	if _, err := cron.ParseStandard(c.Health.ReportSchedule); err != nil {
		errs = append(errs, fmt.Errorf("invalid HEALTH_REPORT_SCHEDULE: %w", err))
	}
	if c.Moon.DefaultLat < -90 || c.Moon.DefaultLat > 90 {
		errs = append(errs, fmt.Errorf("MOON_DEFAULT_LAT must be in [-90,90], got %v", c.Moon.DefaultLat))
	}
	if c.Moon.DefaultLon < -180 || c.Moon.DefaultLon > 180 {
		errs = append(errs, fmt.Errorf("MOON_DEFAULT_LON must be in [-180,180], got %v", c.Moon.DefaultLon))
	}

	return errors.Join(errs...)
}
