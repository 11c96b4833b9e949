package services

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
)

const (
	kpHistoryLen = 24
	xrayChartLen = 40

	// FluxFloor keeps chart values plottable on a log axis.
	FluxFloor = 1e-8

	flareWindow  = 24 * time.Hour
	recentWindow = time.Hour
)

// Candidate keys per field, first present wins. Upstream casing is not stable.
var (
	WindSpeedKeys = []string{"WindSpeed", "wind_speed"}
	FluxKeys      = []string{"flux", "Flux"}
	KpKeys        = []string{"Kp", "kp", "kp_index"}
	TimeTagKeys   = []string{"time_tag", "timeTag"}
	EnergyKeys    = []string{"energy", "Energy"}
)

// GOES band lower bounds, largest first.
var flareBands = []struct {
	class string
	lower float64
}{
	{"X", 1e-4},
	{"M", 1e-5},
	{"C", 1e-6},
	{"B", 1e-7},
	{"A", 1e-8},
}

// ParseSFI takes the 4th whitespace-separated token of the last non-empty
// line of the daily solar indices report.
func ParseSFI(report []byte) string {
	lines := strings.Split(string(report), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return models.Unavailable
		}
		if _, err := strconv.ParseFloat(fields[3], 64); err != nil {
			return models.Unavailable
		}
		return fields[3]
	}
	return models.Unavailable
}

// ParseKp reads the planetary K table. Rows are either arrays with the value
// at index 1 or objects keyed by one of KpKeys; a leading header row is
// skipped. The history keeps the newest kpHistoryLen values, oldest first.
func ParseKp(payload []byte) (string, []float64) {
	var rows []json.RawMessage
	if err := json.Unmarshal(payload, &rows); err != nil {
		return models.Unavailable, make([]float64, kpHistoryLen)
	}

	values := make([]float64, 0, len(rows))
	for _, raw := range rows {
		v, ok := kpValue(raw)
		if !ok {
			continue
		}
		values = append(values, v)
	}

	if len(values) == 0 {
		return models.Unavailable, make([]float64, kpHistoryLen)
	}
	if len(values) > kpHistoryLen {
		values = values[len(values)-kpHistoryLen:]
	}

	return fmt.Sprintf("%.1f", values[len(values)-1]), values
}

func kpValue(raw json.RawMessage) (float64, bool) {
	var arr []any
	if err := json.Unmarshal(raw, &arr); err == nil {
		if len(arr) < 2 {
			return 0, false
		}
		return number(arr[1])
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err == nil {
		return number(firstPresent(obj, KpKeys))
	}
	return 0, false
}

// ParseWind accepts a single object or an array of objects (newest last).
func ParseWind(payload []byte) string {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		var arr []map[string]any
		if err := json.Unmarshal(payload, &arr); err != nil || len(arr) == 0 {
			return models.Unavailable
		}
		obj = arr[len(arr)-1]
	}

	// blank strings fall through to the next key like any other missing value
	for _, key := range WindSpeedKeys {
		switch v := obj[key].(type) {
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return models.Unavailable
}

// ClassifyFlare maps a flux in W/m² to its GOES class, e.g. "M 3.2".
func ClassifyFlare(flux float64) string {
	if flux <= 0 || math.IsNaN(flux) {
		return "A 0.0"
	}
	for _, band := range flareBands {
		if flux >= band.lower {
			return fmt.Sprintf("%s %.1f", band.class, flux/band.lower)
		}
	}
	last := flareBands[len(flareBands)-1]
	return fmt.Sprintf("%s %.1f", last.class, flux/last.lower)
}

type xrayReading struct {
	tag  string
	at   time.Time
	flux float64
}

// SummarizeXray classifies the strongest long-band reading of the trailing
// 24 hours and returns the newest xrayChartLen readings as chart data.
func SummarizeXray(payload []byte, now time.Time) (string, []models.XrayPoint) {
	var records []map[string]any
	if err := json.Unmarshal(payload, &records); err != nil {
		return ClassifyFlare(0), []models.XrayPoint{}
	}

	cutoff := now.Add(-flareWindow)
	readings := make([]xrayReading, 0, len(records))
	for _, rec := range records {
		if energy, _ := firstPresent(rec, EnergyKeys).(string); energy != models.XrayEnergyBand {
			continue
		}
		tag, _ := firstPresent(rec, TimeTagKeys).(string)
		at, ok := parseTimeTag(tag)
		if !ok || !at.After(cutoff) {
			continue
		}
		flux, _ := number(firstPresent(rec, FluxKeys))
		readings = append(readings, xrayReading{tag: tag, at: at, flux: flux})
	}

	sort.SliceStable(readings, func(i, j int) bool { return readings[i].at.Before(readings[j].at) })

	var peak *xrayReading
	for i := range readings {
		if peak == nil || readings[i].flux > peak.flux {
			peak = &readings[i]
		}
	}

	class := ClassifyFlare(0)
	if peak != nil && peak.flux > 0 {
		class = ClassifyFlare(peak.flux)
		if peak.at.After(now.Add(-recentWindow)) {
			class += " [RECENT]"
		}
	}

	tail := readings
	if len(tail) > xrayChartLen {
		tail = tail[len(tail)-xrayChartLen:]
	}
	chart := make([]models.XrayPoint, 0, len(tail))
	for _, r := range tail {
		chart = append(chart, models.XrayPoint{Time: r.tag, Val: math.Max(r.flux, FluxFloor)})
	}

	return class, chart
}

var timeTagLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

func parseTimeTag(tag string) (time.Time, bool) {
	for _, layout := range timeTagLayouts {
		if t, err := time.Parse(layout, tag); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func firstPresent(obj map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
