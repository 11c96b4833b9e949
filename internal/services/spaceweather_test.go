package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/bobby-s-dev/sentinel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSFI(t *testing.T) {
	report := ":Product: Daily Solar Data\n#  Date  Radio Flux\n2024 05 01  182  142  1120\n2024 05 02  175  131  980\n\n"
	assert.Equal(t, "175", ParseSFI([]byte(report)))

	assert.Equal(t, models.Unavailable, ParseSFI(nil))
	assert.Equal(t, models.Unavailable, ParseSFI([]byte("2024 05 02\n")))
	assert.Equal(t, models.Unavailable, ParseSFI([]byte("<html>oops</html>")))
}

func TestParseKp(t *testing.T) {
	t.Run("header row is skipped", func(t *testing.T) {
		payload := `[["time_tag","Kp","a_running","station_count"],
			["2024-05-01 00:00:00","2.33","9","8"],
			["2024-05-01 03:00:00","3.67","18","8"]]`
		kp, history := ParseKp([]byte(payload))
		assert.Equal(t, "3.7", kp)
		assert.Equal(t, []float64{2.33, 3.67}, history)
	})

	t.Run("object rows", func(t *testing.T) {
		payload := `[{"time_tag":"2024-05-01T00:00:00","Kp":1.0},{"time_tag":"2024-05-01T03:00:00","kp":4}]`
		kp, history := ParseKp([]byte(payload))
		assert.Equal(t, "4.0", kp)
		assert.Equal(t, []float64{1, 4}, history)
	})

	t.Run("keeps newest 24", func(t *testing.T) {
		rows := [][]string{{"time_tag", "Kp"}}
		for i := 0; i < 30; i++ {
			rows = append(rows, []string{fmt.Sprintf("t%d", i), fmt.Sprintf("%d", i%10)})
		}
		payload, err := json.Marshal(rows)
		require.NoError(t, err)

		kp, history := ParseKp(payload)
		require.Len(t, history, 24)
		assert.Equal(t, float64(6), history[0])
		assert.Equal(t, float64(9), history[23])
		assert.Equal(t, "9.0", kp)
	})

	t.Run("empty or broken series", func(t *testing.T) {
		for _, payload := range []string{`[]`, `not json`, `[["time_tag","Kp"]]`, ``} {
			kp, history := ParseKp([]byte(payload))
			assert.Equal(t, models.Unavailable, kp, payload)
			assert.Equal(t, make([]float64, 24), history, payload)
		}
	})
}

func TestParseWind(t *testing.T) {
	assert.Equal(t, "452", ParseWind([]byte(`{"WindSpeed":"452","TimeStamp":"x"}`)))
	assert.Equal(t, "398.5", ParseWind([]byte(`{"wind_speed":398.5}`)))
	assert.Equal(t, "410", ParseWind([]byte(`{"WindSpeed":null,"wind_speed":410}`)))
	assert.Equal(t, "410", ParseWind([]byte(`{"WindSpeed":"","wind_speed":410}`)))
	assert.Equal(t, "415", ParseWind([]byte(`{"WindSpeed":"  ","wind_speed":"415"}`)))
	assert.Equal(t, "520", ParseWind([]byte(`[{"wind_speed":300},{"WindSpeed":520}]`)))
	assert.Equal(t, models.Unavailable, ParseWind([]byte(`{"proton_speed":400}`)))
	assert.Equal(t, models.Unavailable, ParseWind([]byte(`{}`)))
	assert.Equal(t, models.Unavailable, ParseWind([]byte(`[]`)))
}

func TestClassifyFlare(t *testing.T) {
	tests := []struct {
		flux float64
		want string
	}{
		{0, "A 0.0"},
		{-1, "A 0.0"},
		{5e-8, "A 5.0"},
		{2e-7, "B 2.0"},
		{1.5e-6, "C 1.5"},
		{3.2e-5, "M 3.2"},
		{5e-5, "M 5.0"},
		{2e-4, "X 2.0"},
		{1.2e-3, "X 12.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyFlare(tt.flux), "flux %g", tt.flux)
	}
}

type xrayRecord struct {
	TimeTag string  `json:"time_tag"`
	Energy  string  `json:"energy"`
	Flux    float64 `json:"flux"`
}

func xrayPayload(t *testing.T, records []xrayRecord) []byte {
	t.Helper()
	b, err := json.Marshal(records)
	require.NoError(t, err)
	return b
}

func TestSummarizeXrayRecency(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	recent := xrayPayload(t, []xrayRecord{
		{now.Add(-3 * time.Hour).Format(time.RFC3339), models.XrayEnergyBand, 2e-6},
		{now.Add(-30 * time.Minute).Format(time.RFC3339), models.XrayEnergyBand, 3.2e-5},
	})
	flare, _ := SummarizeXray(recent, now)
	assert.Equal(t, "M 3.2 [RECENT]", flare)

	older := xrayPayload(t, []xrayRecord{
		{now.Add(-90 * time.Minute).Format(time.RFC3339), models.XrayEnergyBand, 3.2e-5},
		{now.Add(-10 * time.Minute).Format(time.RFC3339), models.XrayEnergyBand, 2e-6},
	})
	flare, _ = SummarizeXray(older, now)
	assert.Equal(t, "M 3.2", flare)
}

func TestSummarizeXrayFiltersAndFloors(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

	var records []xrayRecord
	for i := 50; i >= 1; i-- {
		at := now.Add(-time.Duration(i) * 10 * time.Minute).Format(time.RFC3339)
		records = append(records,
			xrayRecord{at, models.XrayEnergyBand, 0},
			xrayRecord{at, "0.05-0.4nm", 9e-4})
	}
	// outside the 24h window
	records = append(records, xrayRecord{now.Add(-25 * time.Hour).Format(time.RFC3339), models.XrayEnergyBand, 5e-4})

	flare, chart := SummarizeXray(xrayPayload(t, records), now)
	assert.Equal(t, "A 0.0", flare)
	require.Len(t, chart, 40)
	for i, p := range chart {
		assert.GreaterOrEqual(t, p.Val, FluxFloor)
		if i > 0 {
			assert.Less(t, chart[i-1].Time, p.Time)
		}
	}
	assert.Equal(t, now.Add(-10*time.Minute).Format(time.RFC3339), chart[39].Time)
}

func TestSummarizeXrayUnordered(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	payload := []byte(fmt.Sprintf(`[
		{"time_tag":%q,"energy":"0.1-0.8nm","Flux":2e-4},
		{"time_tag":%q,"energy":"0.1-0.8nm","flux":1e-6}]`,
		now.Add(-2*time.Hour).Format(time.RFC3339),
		now.Add(-5*time.Hour).Format(time.RFC3339)))

	flare, chart := SummarizeXray(payload, now)
	assert.Equal(t, "X 2.0", flare)
	require.Len(t, chart, 2)
	assert.Equal(t, 1e-6, chart[0].Val)
	assert.Equal(t, 2e-4, chart[1].Val)
}

func TestSummarizeXrayEmpty(t *testing.T) {
	flare, chart := SummarizeXray([]byte(`oops`), time.Now())
	assert.Equal(t, "A 0.0", flare)
	assert.NotNil(t, chart)
	assert.Empty(t, chart)
}
