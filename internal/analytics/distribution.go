package analytics

import (
	"errors"
	"sort"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// ErrEmptyHistory is returned when too few samples exist to build a
// reference distribution. Recoverable: callers fall back to a pooled
// distribution or omit the market.
var ErrEmptyHistory = errors.New("empty history: not enough samples for reference distribution")

// DefaultMinSamples is the minimum history size for a valid distribution.
const DefaultMinSamples = 30

// DistributionOptions configure BuildDistribution.
type DistributionOptions struct {
	Estimator  domain.DispersionEstimator // defaults to MAD
	MinSamples int                        // defaults to DefaultMinSamples
	// TrimFraction drops the extreme tails symmetrically before computing
	// statistics (0.001 keeps the 0.1%..99.9% quantile range). Zero disables
	// trimming.
	TrimFraction float64
}

func (o DistributionOptions) withDefaults() DistributionOptions {
	if o.Estimator == "" {
		o.Estimator = domain.DispersionMAD
	}
	if o.MinSamples == 0 {
		o.MinSamples = DefaultMinSamples
	}
	return o
}

// BuildDistribution accumulates metric values for one market (or pooled
// across markets) into a reference distribution. Central tendency is always
// the median; dispersion is MAD scaled by the normal consistency constant,
// or plain sample stddev when configured. Robust statistics keep the single
// extreme day being measured from silently dominating its own reference.
func BuildDistribution(records []*domain.MetricRecord, kind domain.MetricKind, opts DistributionOptions) (*domain.ReferenceDistribution, error) {
	opts = opts.withDefaults()

	values := make([]float64, 0, len(records))
	for _, r := range records {
		values = append(values, r.Metric(kind))
	}

	if opts.TrimFraction > 0 {
		values = trimTails(values, opts.TrimFraction)
	}

	if len(values) < opts.MinSamples {
		return nil, ErrEmptyHistory
	}

	var dispersion float64
	switch opts.Estimator {
	case domain.DispersionStddev:
		dispersion = SampleStddev(values)
	default:
		dispersion = MAD(values) * domain.MADConsistency
	}

	return &domain.ReferenceDistribution{
		MetricKind: kind,
		Estimator:  opts.Estimator,
		N:          len(values),
		Median:     Median(values),
		Dispersion: dispersion,
	}, nil
}

// trimTails keeps values within [q(f), q(1-f)] inclusive.
func trimTails(values []float64, f float64) []float64 {
	if len(values) == 0 {
		return values
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lower := Percentile(sorted, f)
	upper := Percentile(sorted, 1-f)

	kept := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	return kept
}
