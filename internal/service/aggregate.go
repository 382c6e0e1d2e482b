package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/skillerhq/skiller/internal/client"
	"github.com/skillerhq/skiller/internal/domain"
)

// Aggregator computes the salary distribution of a job set after
// converting every salary to one target currency.
type Aggregator struct {
	rates  client.RateSource
	target string
}

// NewAggregator creates an Aggregator converting into target currency.
func NewAggregator(rates client.RateSource, target string) *Aggregator {
	return &Aggregator{rates: rates, target: target}
}

// Aggregate converts the salaries to the target currency and summarizes
// them. Maximum and Minimum report the extreme range ends; mean, std,
// median, and quartiles are computed over midpoints only. With no
// contributing values every statistic stays nil.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - salaries: salary ranges, possibly in mixed currencies.
// Returns:
//   - domain.SalaryDistribution: the summary in the target currency.
//   - error: non-nil if a needed exchange rate cannot be resolved.
func (a *Aggregator) Aggregate(ctx context.Context, salaries []domain.Salary) (domain.SalaryDistribution, error) {
	dist := domain.SalaryDistribution{Currency: a.target}

	converted := make([]domain.Salary, 0, len(salaries))
	for _, s := range salaries {
		cs, err := a.convert(ctx, s)
		if err != nil {
			return dist, err
		}
		converted = append(converted, cs)
	}

	var midpoints []float64
	for _, s := range converted {
		if s.YearMax != nil && (dist.Maximum == nil || *s.YearMax > *dist.Maximum) {
			dist.Maximum = ptr(*s.YearMax)
		}
		if s.YearMin != nil && (dist.Minimum == nil || *s.YearMin < *dist.Minimum) {
			dist.Minimum = ptr(*s.YearMin)
		}
		if mid, ok := s.Midpoint(); ok {
			midpoints = append(midpoints, mid)
		}
	}

	if len(midpoints) == 0 {
		return dist, nil
	}

	sort.Float64s(midpoints)
	dist.Mean = ptr(mean(midpoints))
	dist.Std = ptr(std(midpoints, *dist.Mean))
	dist.Median = ptr(quantile(midpoints, 0.5))
	dist.Quantile25 = ptr(quantile(midpoints, 0.25))
	dist.Quantile75 = ptr(quantile(midpoints, 0.75))

	return dist, nil
}

// convert scales both bounds into the target currency. Salaries without a
// stated currency are taken at face value.
func (a *Aggregator) convert(ctx context.Context, s domain.Salary) (domain.Salary, error) {
	if s.Currency == "" || s.Currency == a.target {
		s.Currency = a.target
		return s, nil
	}

	rate, err := a.rates.Rate(ctx, s.Currency, a.target)
	if err != nil {
		return s, fmt.Errorf("failed to convert %s to %s: %w", s.Currency, a.target, err)
	}

	out := domain.Salary{Currency: a.target}
	if s.YearMin != nil {
		out.YearMin = ptr(*s.YearMin * rate)
	}
	if s.YearMax != nil {
		out.YearMax = ptr(*s.YearMax * rate)
	}
	return out, nil
}

func ptr(v float64) *float64 { return &v }

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// std is the population standard deviation.
func std(values []float64, mu float64) float64 {
	var sum float64
	for _, v := range values {
		d := v - mu
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// quantile interpolates linearly between the two nearest ranks of a
// sorted slice.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
