package analytics

import (
	"math"
	"testing"
)

func TestMedian_OddCount(t *testing.T) {
	got := Median([]float64{3, 1, 2})
	if got != 2 {
		t.Errorf("expected median 2, got %f", got)
	}
}

func TestMedian_EvenCount(t *testing.T) {
	got := Median([]float64{4, 1, 3, 2})
	if got != 2.5 {
		t.Errorf("expected median 2.5, got %f", got)
	}
}

func TestMedian_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Median(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input slice was mutated: %v", values)
	}
}

func TestPercentile_LinearInterpolation(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	// idx = 0.5 * 3 = 1.5 -> 20 + 0.5*(30-20) = 25
	got := Percentile(sorted, 0.5)
	if got != 25 {
		t.Errorf("expected 25, got %f", got)
	}
}

func TestPercentile_Bounds(t *testing.T) {
	sorted := []float64{10, 20, 30}
	if got := Percentile(sorted, 0); got != 10 {
		t.Errorf("expected p0 = 10, got %f", got)
	}
	if got := Percentile(sorted, 1); got != 30 {
		t.Errorf("expected p100 = 30, got %f", got)
	}
}

func TestSampleStddev_KnownValue(t *testing.T) {
	// Values 2,4,4,4,5,5,7,9: mean 5, sum sq dev 32, sample var 32/7
	got := SampleStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	want := math.Sqrt(32.0 / 7.0)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, got)
	}
}

func TestSampleStddev_TooFewSamples(t *testing.T) {
	if got := SampleStddev([]float64{42}); got != 0 {
		t.Errorf("expected 0 for single sample, got %f", got)
	}
}

func TestMAD_KnownValue(t *testing.T) {
	// Median 2, abs devs {1,1,0,2,6}, median dev 1
	got := MAD([]float64{1, 1, 2, 4, 8})
	if got != 1 {
		t.Errorf("expected MAD 1, got %f", got)
	}
}

func TestMAD_ConstantSeries(t *testing.T) {
	if got := MAD([]float64{5, 5, 5, 5}); got != 0 {
		t.Errorf("expected MAD 0 for constant series, got %f", got)
	}
}
