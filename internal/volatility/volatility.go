// Package volatility turns raw weather metric series into a single weighted
// stability score.
package volatility

import (
	"errors"
	"fmt"
	"math"
)

// Metric identifies one of the weather variables that feed the score.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricPressure    Metric = "pressure"
	MetricWindSpeed   Metric = "wind_speed"
)

// weightTolerance bounds the allowed drift of the weight sum from 1.0.
const weightTolerance = 1e-9

// ErrNonFinite is returned by Validate when a series holds NaN or ±Inf.
var ErrNonFinite = errors.New("non-finite sample")

var (
	metricOrder = []Metric{MetricTemperature, MetricHumidity, MetricPressure, MetricWindSpeed}

	weights = map[Metric]float64{
		MetricTemperature: 0.4,
		MetricHumidity:    0.2,
		MetricPressure:    0.2,
		MetricWindSpeed:   0.2,
	}
)

func init() {
	if err := validateWeights(weights); err != nil {
		panic(err)
	}
}

func validateWeights(w map[Metric]float64) error {
	var sum float64
	for _, m := range metricOrder {
		v, ok := w[m]
		if !ok {
			return fmt.Errorf("volatility: missing weight for %s", m)
		}
		if v < 0 {
			return fmt.Errorf("volatility: negative weight for %s", m)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("volatility: weights sum to %v, want 1.0", sum)
	}
	return nil
}

// Metrics returns all scored metrics in a stable order.
func Metrics() []Metric {
	out := make([]Metric, len(metricOrder))
	copy(out, metricOrder)
	return out
}

// Weight returns the fixed weight of m, or 0 for an unknown metric.
func Weight(m Metric) float64 {
	return weights[m]
}

// Series is a run of optional samples. A nil entry is a missing sample.
type Series []*float64

// Values returns the present, finite samples of s.
func (s Series) Values() []float64 {
	out := make([]float64, 0, len(s))
	for _, v := range s {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		out = append(out, *v)
	}
	return out
}

// Input carries one series per metric. Any of them may be empty.
type Input struct {
	Temperature Series
	Humidity    Series
	Pressure    Series
	WindSpeed   Series
}

// Series returns the series for metric m.
func (in Input) Series(m Metric) Series {
	switch m {
	case MetricTemperature:
		return in.Temperature
	case MetricHumidity:
		return in.Humidity
	case MetricPressure:
		return in.Pressure
	case MetricWindSpeed:
		return in.WindSpeed
	default:
		return nil
	}
}

// Validate reports the first non-finite sample in the input.
func (in Input) Validate() error {
	for _, m := range metricOrder {
		for i, v := range in.Series(m) {
			if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
				return fmt.Errorf("%w: %s[%d]", ErrNonFinite, m, i)
			}
		}
	}
	return nil
}

// Score is the weighted sum of per-metric population standard deviations.
// It is non-negative and has no upper bound.
type Score float64

// Contribution describes how a single metric fed into a Score.
type Contribution struct {
	Metric       Metric  `json:"metric"`
	Samples      int     `json:"samples"`
	StdDev       float64 `json:"std_dev"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Report is a Score together with its per-metric breakdown.
type Report struct {
	Score         Score          `json:"score"`
	Contributions []Contribution `json:"contributions"`
}

// Compute returns the composite volatility score for in.
// Metrics with fewer than two usable samples contribute zero.
func Compute(in Input) Score {
	return Explain(in).Score
}

// Explain computes the score and keeps the per-metric breakdown.
func Explain(in Input) Report {
	report := Report{Contributions: make([]Contribution, 0, len(metricOrder))}

	for _, m := range metricOrder {
		values := in.Series(m).Values()
		c := Contribution{
			Metric:  m,
			Samples: len(values),
			Weight:  weights[m],
		}
		if std, ok := PopulationStdDev(values); ok {
			c.StdDev = std
			c.Contribution = std * c.Weight
		}
		report.Score += Score(c.Contribution)
		report.Contributions = append(report.Contributions, c)
	}

	return report
}

// PopulationStdDev returns the standard deviation of values dividing by N.
// ok is false when fewer than two values are supplied.
func PopulationStdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	varianceSum := 0.0
	for _, v := range values {
		varianceSum += (v - mean) * (v - mean)
	}
	return math.Sqrt(varianceSum / float64(len(values))), true
}

// Float returns a pointer to v, handy for building series literals.
func Float(v float64) *float64 {
	return &v
}

// Floats wraps every value of vs as a present sample.
func Floats(vs ...float64) Series {
	out := make(Series, len(vs))
	for i := range vs {
		out[i] = Float(vs[i])
	}
	return out
}
