package stats

import (
	"fmt"
	"math"
	"sort"
)

// epsilon absorbs float error in f*n before flooring (0.29*100 = 28.999999999999996).
const epsilon = 1e-9

// Validate checks that every percentile and fraction is in range.
func (c Config) Validate() error {
	for _, p := range append(append([]float64(nil), c.Percentiles...), c.FollowerPercentiles...) {
		if math.IsNaN(p) || p < 0 || p > 100 {
			return fmt.Errorf("%w: %v", ErrInvalidPercentile, p)
		}
	}
	for _, f := range c.TopFractions {
		if math.IsNaN(f) || f <= 0 || f > 1 {
			return fmt.Errorf("%w: %v", ErrInvalidFraction, f)
		}
	}
	return nil
}

// percentile returns the value at percentile p of a sorted slice using
// linear interpolation at rank p/100*(n-1).
func percentile(sorted []float64, p float64) (float64, error) {
	n := len(sorted)
	if n == 0 {
		return 0, ErrEmptyDistribution
	}

	if p <= 0 {
		return sorted[0], nil
	}
	if p >= 100 {
		return sorted[n-1], nil
	}

	rank := p / 100.0 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := lower + 1

	if upper >= n {
		return sorted[lower], nil
	}

	fraction := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*fraction, nil
}

// Percentiles computes each requested percentile of values.
//
// An empty distribution yields an entry per percentile with undefined values.
func Percentiles(values []int, ps []float64) []Percentile {
	sorted := make([]float64, len(values))
	for i, v := range values {
		sorted[i] = float64(v)
	}
	sort.Float64s(sorted)

	out := make([]Percentile, len(ps))
	for i, p := range ps {
		out[i] = Percentile{P: p}

		v, err := percentile(sorted, p)
		if err != nil {
			continue
		}
		out[i].Value = Of(v)

		// Count of values <= v; sorted so a binary search finds the cut.
		atOrBelow := sort.Search(len(sorted), func(j int) bool { return sorted[j] > v })
		out[i].AtOrBelowPct = Of(float64(atOrBelow) / float64(len(sorted)) * 100)
	}
	return out
}

// Mean returns sum/n, or ErrDivisionByZero when n is zero.
func Mean(sum, n int) (float64, error) {
	if n == 0 {
		return 0, ErrDivisionByZero
	}
	return float64(sum) / float64(n), nil
}

// pct returns part/whole*100, or 0 when whole is zero.
func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// Ranking orders counts by count descending, then key ascending.
func Ranking(counts map[string]int) []Rank {
	ranks := make([]Rank, 0, len(counts))
	for k, c := range counts {
		ranks = append(ranks, Rank{Key: k, Count: c})
	}

	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Count != ranks[j].Count {
			return ranks[i].Count > ranks[j].Count
		}
		return ranks[i].Key < ranks[j].Key
	})

	return ranks
}

// TopShares reports the share held by the top floor(f*n) entries of a
// ranking for every fraction f.
func TopShares(ranks []Rank, fractions []float64) []TopShare {
	n := len(ranks)
	total := 0
	for _, r := range ranks {
		total += r.Count
	}

	shares := make([]TopShare, len(fractions))
	for i, f := range fractions {
		k := int(math.Floor(f*float64(n) + epsilon))
		if k > n {
			k = n
		}

		share := TopShare{Fraction: f, Users: k}
		if k > 0 {
			for _, r := range ranks[:k] {
				share.Likes += r.Count
			}
			share.UsersPct = pct(k, n)
			share.LikesPct = pct(share.Likes, total)
		}
		shares[i] = share
	}
	return shares
}

// values returns the counts of a map in unspecified order.
func values(counts map[string]int) []int {
	out := make([]int, 0, len(counts))
	for _, c := range counts {
		out = append(out, c)
	}
	return out
}

// sum adds the counts of a map.
func sum(counts map[string]int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
