package volatility

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestComputeScenarios(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{
			name: "empty input",
			in:   Input{},
			want: 0,
		},
		{
			name: "temperature only",
			in:   Input{Temperature: Floats(10, 20)},
			want: 2.0,
		},
		{
			name: "flat temperature plus humidity",
			in: Input{
				Temperature: Floats(20, 20, 20),
				Humidity:    Floats(40, 60),
			},
			want: 2.0,
		},
		{
			name: "single sample contributes nothing",
			in: Input{
				Temperature: Floats(15),
				Pressure:    Floats(1000, 1010),
			},
			want: 0.2 * 5,
		},
		{
			name: "nil samples are skipped",
			in: Input{
				WindSpeed: Series{nil, Float(2), nil, Float(6), nil},
			},
			want: 0.2 * 2,
		},
		{
			name: "all metrics",
			in: Input{
				Temperature: Floats(10, 20),
				Humidity:    Floats(40, 60),
				Pressure:    Floats(1000, 1020),
				WindSpeed:   Floats(0, 4),
			},
			want: 0.4*5 + 0.2*10 + 0.2*10 + 0.2*2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := float64(Compute(tt.in))
			if !almostEqual(got, tt.want) {
				t.Fatalf("Compute() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeSingleMetricEqualsWeightedStdDev(t *testing.T) {
	samples := []float64{3.5, -1, 12, 7.25, 0, 9}
	std, ok := PopulationStdDev(samples)
	if !ok {
		t.Fatal("expected std dev for six samples")
	}

	for _, m := range Metrics() {
		var in Input
		switch m {
		case MetricTemperature:
			in.Temperature = Floats(samples...)
		case MetricHumidity:
			in.Humidity = Floats(samples...)
		case MetricPressure:
			in.Pressure = Floats(samples...)
		case MetricWindSpeed:
			in.WindSpeed = Floats(samples...)
		}

		got := float64(Compute(in))
		want := Weight(m) * std
		if !almostEqual(got, want) {
			t.Errorf("%s: Compute() = %v, want %v", m, got, want)
		}
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	a := Input{
		Temperature: Floats(1, 9, 4, 16, 25),
		Humidity:    Series{Float(80), nil, Float(55), Float(61)},
	}
	b := Input{
		Temperature: Floats(25, 4, 1, 16, 9),
		Humidity:    Series{Float(61), Float(80), nil, Float(55)},
	}

	if got, want := Compute(b), Compute(a); !almostEqual(float64(got), float64(want)) {
		t.Fatalf("reordered score = %v, want %v", got, want)
	}
}

func TestComputeIgnoresNonFinite(t *testing.T) {
	in := Input{Temperature: Series{Float(10), Float(math.NaN()), Float(20), Float(math.Inf(1))}}

	got := float64(Compute(in))
	if math.IsNaN(got) || !almostEqual(got, 2.0) {
		t.Fatalf("Compute() = %v, want 2.0", got)
	}
}

func TestComputeIsUnbounded(t *testing.T) {
	in := Input{Temperature: Floats(-100, 100)}
	if got := Compute(in); got <= 10 {
		t.Fatalf("Compute() = %v, expected a score above 10", got)
	}
}

func TestExplainMatchesCompute(t *testing.T) {
	in := Input{
		Temperature: Floats(10, 20),
		Humidity:    Floats(50),
		Pressure:    Floats(1000, 1004, 1008),
	}

	report := Explain(in)
	if report.Score != Compute(in) {
		t.Fatalf("Explain().Score = %v, Compute() = %v", report.Score, Compute(in))
	}
	if len(report.Contributions) != len(Metrics()) {
		t.Fatalf("expected %d contributions, got %d", len(Metrics()), len(report.Contributions))
	}

	var sum float64
	for _, c := range report.Contributions {
		sum += c.Contribution
	}
	if !almostEqual(sum, float64(report.Score)) {
		t.Fatalf("sum of contributions %v != score %v", sum, report.Score)
	}

	humidity := report.Contributions[1]
	if humidity.Metric != MetricHumidity || humidity.Samples != 1 || humidity.Contribution != 0 {
		t.Fatalf("unexpected humidity contribution: %+v", humidity)
	}
}

func TestPopulationStdDev(t *testing.T) {
	if _, ok := PopulationStdDev(nil); ok {
		t.Error("expected ok=false for no samples")
	}
	if _, ok := PopulationStdDev([]float64{4}); ok {
		t.Error("expected ok=false for one sample")
	}

	std, ok := PopulationStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !ok || !almostEqual(std, 2) {
		t.Fatalf("PopulationStdDev() = %v, %v; want 2, true", std, ok)
	}
}

func TestWeights(t *testing.T) {
	if err := validateWeights(weights); err != nil {
		t.Fatalf("fixed weights invalid: %v", err)
	}

	bad := map[Metric]float64{
		MetricTemperature: 0.5,
		MetricHumidity:    0.2,
		MetricPressure:    0.2,
		MetricWindSpeed:   0.2,
	}
	if err := validateWeights(bad); err == nil {
		t.Fatal("expected error for weights summing to 1.1")
	}

	if Weight("visibility") != 0 {
		t.Fatal("unknown metric should have zero weight")
	}
}

func TestValidate(t *testing.T) {
	ok := Input{Temperature: Series{nil, Float(-3)}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := Input{Pressure: Series{Float(1000), Float(math.Inf(-1))}}
	if err := bad.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
}
