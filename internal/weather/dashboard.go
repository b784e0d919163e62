package weather

import (
	"sort"
	"time"

	"github.com/i474232898/weather-dashboard/internal/daterange"
	"github.com/i474232898/weather-dashboard/internal/volatility"
)

// MetricSummary aggregates the present values of one measurement.
type MetricSummary struct {
	Count int      `json:"count"`
	Mean  *float64 `json:"mean"`
	Min   *float64 `json:"min"`
	Max   *float64 `json:"max"`
}

// RangeView is the JSON form of a resolved date range.
type RangeView struct {
	Mode     daterange.Preset `json:"mode"`
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	Inverted bool             `json:"inverted"`
}

// NewRangeView describes r under the given selection mode.
func NewRangeView(mode daterange.Preset, r daterange.Range) RangeView {
	return RangeView{Mode: mode, Start: r.Start(), End: r.End(), Inverted: r.Inverted()}
}

// Dashboard is the headline view over a range.
type Dashboard struct {
	LocationCount      int                   `json:"location_count"`
	ReadingCount       int                   `json:"reading_count"`
	Temperature        MetricSummary         `json:"temperature_c"`
	Humidity           MetricSummary         `json:"humidity_percent"`
	Pressure           MetricSummary         `json:"pressure_hpa"`
	WindSpeed          MetricSummary         `json:"wind_speed_ms"`
	PrecipitationTotal float64               `json:"precipitation_total_mm"`
	Latest             []ReadingWithLocation `json:"latest"`
	Volatility         volatility.Report     `json:"volatility"`
}

// DailyTrend aggregates the readings of one calendar day.
type DailyTrend struct {
	Date           string   `json:"date"`
	Samples        int      `json:"samples"`
	AvgTemperature *float64 `json:"avg_temperature_c"`
	MinTemperature *float64 `json:"min_temperature_c"`
	MaxTemperature *float64 `json:"max_temperature_c"`
	AvgHumidity    *float64 `json:"avg_humidity_percent"`
	AvgPressure    *float64 `json:"avg_pressure_hpa"`
	AvgWindSpeed   *float64 `json:"avg_wind_speed_ms"`
	Precipitation  *float64 `json:"precipitation_mm"`
}

// VolatilityInput extracts the scored columns of readings.
func VolatilityInput(readings []Reading) volatility.Input {
	in := volatility.Input{
		Temperature: make(volatility.Series, 0, len(readings)),
		Humidity:    make(volatility.Series, 0, len(readings)),
		Pressure:    make(volatility.Series, 0, len(readings)),
		WindSpeed:   make(volatility.Series, 0, len(readings)),
	}
	for _, r := range readings {
		in.Temperature = append(in.Temperature, r.TemperatureC)
		in.Humidity = append(in.Humidity, r.HumidityPercent)
		in.Pressure = append(in.Pressure, r.PressureHpa)
		in.WindSpeed = append(in.WindSpeed, r.WindSpeedMS)
	}
	return in
}

// Summarize computes count, mean, min and max over the present values.
func Summarize(values []*float64) MetricSummary {
	var (
		s   MetricSummary
		acc mean
	)
	for _, v := range values {
		if v == nil {
			continue
		}
		acc.add(v)
		if s.Min == nil || *v < *s.Min {
			s.Min = ptr(*v)
		}
		if s.Max == nil || *v > *s.Max {
			s.Max = ptr(*v)
		}
	}
	s.Count = acc.n
	s.Mean = acc.value()
	return s
}

// BuildDashboard summarizes readings. locations resolves the join for the
// latest reading of each location; readings must be ordered by RecordedAt.
func BuildDashboard(readings []Reading, locations []Location) Dashboard {
	byID := make(map[string]Location, len(locations))
	for _, l := range locations {
		byID[l.Key()] = l
	}

	column := func(pick func(Reading) *float64) []*float64 {
		out := make([]*float64, len(readings))
		for i, r := range readings {
			out[i] = pick(r)
		}
		return out
	}

	d := Dashboard{
		LocationCount: len(locations),
		ReadingCount:  len(readings),
		Temperature:   Summarize(column(func(r Reading) *float64 { return r.TemperatureC })),
		Humidity:      Summarize(column(func(r Reading) *float64 { return r.HumidityPercent })),
		Pressure:      Summarize(column(func(r Reading) *float64 { return r.PressureHpa })),
		WindSpeed:     Summarize(column(func(r Reading) *float64 { return r.WindSpeedMS })),
		Volatility:    volatility.Explain(VolatilityInput(readings)),
	}

	latest := make(map[string]Reading)
	for _, r := range readings {
		if r.PrecipitationMM != nil {
			d.PrecipitationTotal += *r.PrecipitationMM
		}
		key := r.LocationID.String()
		if prev, ok := latest[key]; !ok || !r.RecordedAt.Before(prev.RecordedAt) {
			latest[key] = r
		}
	}

	d.Latest = make([]ReadingWithLocation, 0, len(latest))
	for key, r := range latest {
		d.Latest = append(d.Latest, ReadingWithLocation{Reading: r, Location: byID[key]})
	}
	sort.Slice(d.Latest, func(i, j int) bool {
		if d.Latest[i].Location.Name != d.Latest[j].Location.Name {
			return d.Latest[i].Location.Name < d.Latest[j].Location.Name
		}
		return d.Latest[i].LocationID.String() < d.Latest[j].LocationID.String()
	})

	return d
}

// BuildTrends buckets readings by calendar day in tz, ascending by date.
func BuildTrends(readings []Reading, tz *time.Location) []DailyTrend {
	if tz == nil {
		tz = time.UTC
	}

	type bucket struct {
		samples  int
		temps    []*float64
		humidity mean
		pressure mean
		wind     mean
		precip   mean
	}

	buckets := make(map[string]*bucket)
	for _, r := range readings {
		day := r.RecordedAt.In(tz).Format(time.DateOnly)
		b, ok := buckets[day]
		if !ok {
			b = &bucket{}
			buckets[day] = b
		}
		b.samples++
		b.temps = append(b.temps, r.TemperatureC)
		b.humidity.add(r.HumidityPercent)
		b.pressure.add(r.PressureHpa)
		b.wind.add(r.WindSpeedMS)
		b.precip.add(r.PrecipitationMM)
	}

	days := make([]string, 0, len(buckets))
	for day := range buckets {
		days = append(days, day)
	}
	sort.Strings(days)

	trends := make([]DailyTrend, 0, len(days))
	for _, day := range days {
		b := buckets[day]
		temp := Summarize(b.temps)

		var precip *float64
		if b.precip.n > 0 {
			precip = ptr(b.precip.sum)
		}

		trends = append(trends, DailyTrend{
			Date:           day,
			Samples:        b.samples,
			AvgTemperature: temp.Mean,
			MinTemperature: temp.Min,
			MaxTemperature: temp.Max,
			AvgHumidity:    b.humidity.value(),
			AvgPressure:    b.pressure.value(),
			AvgWindSpeed:   b.wind.value(),
			Precipitation:  precip,
		})
	}
	return trends
}

func ptr(v float64) *float64 {
	return &v
}
