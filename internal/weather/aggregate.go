package weather

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AggregateReadings combines multiple provider readings into a single Reading.
// Each field is the mean of the providers that reported it; fields no
// provider reported stay nil. The newest provider timestamp wins.
func AggregateReadings(loc Location, readings []ProviderReading, now time.Time) Reading {
	var (
		temp     mean
		humidity mean
		wind     mean
		windDir  bearing
		pressure mean
		precip   mean
		newestTS time.Time
	)

	for _, r := range readings {
		temp.add(r.TemperatureC)
		humidity.add(r.HumidityPct)
		wind.add(r.WindSpeedMS)
		windDir.add(r.WindDirectionDeg)
		pressure.add(r.PressureHpa)
		precip.add(r.PrecipMm)

		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
	}

	if newestTS.IsZero() {
		newestTS = now
	}

	return Reading{
		ID:               uuid.New(),
		LocationID:       loc.ID,
		RecordedAt:       newestTS.UTC(),
		TemperatureC:     temp.value(),
		HumidityPercent:  humidity.value(),
		WindSpeedMS:      wind.value(),
		WindDirectionDeg: windDir.value(),
		PressureHpa:      pressure.value(),
		PrecipitationMM:  precip.value(),
	}
}

// mean accumulates optional values.
type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}

// bearing accumulates optional compass directions as unit vectors so that
// 350° and 10° average to 0° rather than 180°.
type bearing struct {
	sin, cos float64
	n        int
}

func (b *bearing) add(deg *float64) {
	if deg == nil {
		return
	}
	rad := *deg * math.Pi / 180
	b.sin += math.Sin(rad)
	b.cos += math.Cos(rad)
	b.n++
}

func (b bearing) value() *float64 {
	if b.n == 0 {
		return nil
	}
	deg := math.Atan2(b.sin, b.cos) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return &deg
}
