package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

var ErrNoEphemeris = errors.New("no ephemeris rows")

const (
	moonWindow = 24 * time.Hour
	moonStep   = "10 m"

	ephemerisStart = "$$SOE"
	ephemerisEnd   = "$$EOE"
	ephemerisDate  = "2006-Jan-02 15:04"
)

type MoonTableFetcher interface {
	MoonTable(ctx context.Context, lat, lon float64, start, stop time.Time, step string) (string, error)
}

type EphemerisRow struct {
	Time         time.Time
	Azimuth      float64
	Elevation    float64
	Illumination float64
}

type MoonService struct {
	client MoonTableFetcher
	clock  clockwork.Clock
	logger *zap.Logger
}

func NewMoonService(client MoonTableFetcher, clock clockwork.Clock, logger *zap.Logger) *MoonService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MoonService{client: client, clock: clock, logger: logger.Named("moon")}
}

// Moon describes the Moon for an observer now, with the next rise and set
// inside the coming day.
func (s *MoonService) Moon(ctx context.Context, lat, lon float64) (models.MoonInfo, error) {
	start := s.clock.Now().UTC().Truncate(time.Minute)
	table, err := s.client.MoonTable(ctx, lat, lon, start, start.Add(moonWindow), moonStep)
	if err != nil {
		return models.MoonInfo{}, err
	}

	rows := ParseEphemeris(table)
	if len(rows) == 0 {
		return models.MoonInfo{}, ErrNoEphemeris
	}
	return SummarizeMoon(rows), nil
}

// ParseEphemeris reads the CSV rows between $$SOE and $$EOE. Each row is a
// date followed by marker columns and azimuth, elevation and illumination.
func ParseEphemeris(table string) []EphemerisRow {
	begin := strings.Index(table, ephemerisStart)
	end := strings.Index(table, ephemerisEnd)
	if begin < 0 || end < begin {
		return nil
	}

	var rows []EphemerisRow
	for _, line := range strings.Split(table[begin+len(ephemerisStart):end], "\n") {
		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			continue
		}
		at, err := time.Parse(ephemerisDate, strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}

		var nums []float64
		for _, f := range fields[1:] {
			if v, err := strconv.ParseFloat(strings.TrimSpace(f), 64); err == nil {
				nums = append(nums, v)
			}
		}
		if len(nums) < 3 {
			continue
		}
		rows = append(rows, EphemerisRow{Time: at, Azimuth: nums[0], Elevation: nums[1], Illumination: nums[2]})
	}
	return rows
}

func SummarizeMoon(rows []EphemerisRow) models.MoonInfo {
	now := rows[0]
	info := models.MoonInfo{
		Time:         now.Time.Format(time.RFC3339),
		Rise:         models.Unavailable,
		Set:          models.Unavailable,
		Illumination: now.Illumination,
		Elevation:    now.Elevation,
		Azimuth:      now.Azimuth,
	}

	for i := 1; i < len(rows); i++ {
		prev, cur := rows[i-1].Elevation, rows[i].Elevation
		if info.Rise == models.Unavailable && prev < 0 && cur >= 0 {
			info.Rise = rows[i].Time.Format(time.RFC3339)
		}
		if info.Set == models.Unavailable && prev >= 0 && cur < 0 {
			info.Set = rows[i].Time.Format(time.RFC3339)
		}
	}
	return info
}
