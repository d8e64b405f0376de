package analytics

import (
	"math"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
)

// Score expresses one target-period metric as a standardized distance from
// its reference distribution. Zero dispersion (a constant-range market)
// yields a +/-Inf sentinel with direction rather than a division fault.
func Score(record *domain.MetricRecord, dist *domain.ReferenceDistribution) *domain.DeviationScore {
	observed := record.Metric(dist.MetricKind)

	direction := domain.DirectionAbove
	if observed < dist.Median {
		direction = domain.DirectionBelow
	}

	var z float64
	if dist.Dispersion == 0 {
		if observed == dist.Median {
			z = 0
		} else if direction == domain.DirectionAbove {
			z = math.Inf(1)
		} else {
			z = math.Inf(-1)
		}
	} else {
		z = (observed - dist.Median) / dist.Dispersion
	}

	return &domain.DeviationScore{
		Key:        record.Key,
		MetricKind: dist.MetricKind,
		Observed:   observed,
		ZScore:     z,
		Direction:  direction,
	}
}
