package analytics

import (
	"fmt"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// DeriveRatio joins numerator and denominator on exact date and computes
// (numerator / scale) / denominator * 100 for every date present in both.
// Dates missing from either side are dropped, as are rows whose
// denominator is zero. The result takes the numerator's frequency.
func DeriveRatio(numerator, denominator domain.Series, scale float64, name string) (domain.RatioSeries, error) {
	if scale <= 0 {
		return domain.RatioSeries{}, apperrors.NewConfigError(
			fmt.Sprintf("ratio scale must be positive, got %v", scale), nil).
			WithContext("ratio", name)
	}

	denoms := denominator.Index()
	points := make([]domain.TimeSeriesPoint, 0, numerator.Len())
	for _, p := range numerator.Points {
		d, ok := denoms[p.Date]
		if !ok || d == 0 {
			continue
		}
		points = append(points, domain.TimeSeriesPoint{
			Date:  p.Date,
			Value: (p.Value / scale) / d * 100,
		})
	}

	return domain.RatioSeries{
		Numerator:   numerator,
		Denominator: denominator,
		Scale:       scale,
		Ratio:       domain.NewSeries(name, numerator.Frequency, points),
	}, nil
}

// JoinedColumns returns the scaled numerator and the denominator aligned
// with ratio's dates, for writing next to the ratio.
func JoinedColumns(r domain.RatioSeries, numeratorName, denominatorName string) []domain.DerivedColumn {
	nums := r.Numerator.Index()
	dens := r.Denominator.Index()
	numCol := make([]domain.OptionalFloat, r.Ratio.Len())
	denCol := make([]domain.OptionalFloat, r.Ratio.Len())
	for i, p := range r.Ratio.Points {
		numCol[i] = domain.Some(nums[p.Date] / r.Scale)
		denCol[i] = domain.Some(dens[p.Date])
	}
	return []domain.DerivedColumn{
		{Name: numeratorName, Values: numCol},
		{Name: denominatorName, Values: denCol},
	}
}
