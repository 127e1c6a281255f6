package ranking

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// Direction selects which end of the scale is "best" (rank 1).
type Direction int

const (
	// Ascending ranks the smallest value first.
	Ascending Direction = iota
	// Descending ranks the largest value first.
	Descending
)

var ErrInvalidPopulation = errors.New("invalid_population")

// DenseRank assigns rank 1 to the best value under dir. Ties share a rank
// and the next distinct value gets the previous rank plus one, never plus
// the tie count. The returned slice is positionally aligned with values.
func DenseRank(values []decimal.Decimal, dir Direction) []int {
	if len(values) == 0 {
		return nil
	}

	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		cmp := values[idx[a]].Cmp(values[idx[b]])
		if dir == Descending {
			return cmp > 0
		}
		return cmp < 0
	})

	ranks := make([]int, len(values))
	rank := 1
	for pos, i := range idx {
		if pos > 0 && values[i].Cmp(values[idx[pos-1]]) != 0 {
			rank++
		}
		ranks[i] = rank
	}
	return ranks
}

// QuartileOf maps a dense rank into a 1..4 quartile score:
// ceil(rank / (n/4)), clamped to [1,4].
func QuartileOf(rank, populationSize int) (int, error) {
	if populationSize <= 0 {
		return 0, ErrInvalidPopulation
	}
	if rank < 1 {
		return 0, ErrInvalidPopulation
	}

	bucket := float64(populationSize) / 4.0
	q := ceilDiv(rank, bucket)
	if q < 1 {
		q = 1
	}
	if q > 4 {
		q = 4
	}
	return q, nil
}

func ceilDiv(rank int, bucket float64) int {
	v := float64(rank) / bucket
	n := int(v)
	if v > float64(n) {
		n++
	}
	return n
}
