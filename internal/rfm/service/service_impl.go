package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/clock"
	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	"github.com/tomasz-trela/catermetrics/internal/ranking"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
	rfmdomain "github.com/tomasz-trela/catermetrics/internal/rfm/domain"
)

const moduleName = "rfm"

type Service struct {
	log   *zap.Logger
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p ServiceParam) rfmdomain.Service {
	return &Service{
		log:   p.Log.Named("rfm.service"),
		clock: p.Clock,
	}
}

type customerAccum struct {
	ref       recordstoredomain.UserRef
	lastOrder time.Time
	frequency int
	monetary  money.Money
}

// Segment ranks every customer with at least one order on recency,
// frequency and monetary value, converts ranks to quartile scores and
// assigns a segment by ordered rule matching.
func (s *Service) Segment(
	ctx context.Context,
	customers []recordstoredomain.UserRef,
	orders []recordstoredomain.OrderSnapshot,
	verifiedGross map[snowflake.ID]money.Money,
) (rfmdomain.Report, diag.List, error) {
	var report rfmdomain.Report
	var diags diag.List

	if err := ctx.Err(); err != nil {
		return report, diags, err
	}

	refs := make(map[snowflake.ID]recordstoredomain.UserRef, len(customers))
	for _, c := range customers {
		refs[c.ID] = c
	}

	accums := make(map[snowflake.ID]*customerAccum)
	for _, order := range orders {
		gross, ok := verifiedGross[order.ID]
		if !ok {
			// Orders rejected by reconciliation carry no trusted total.
			diags.Add(moduleName, order.ID.String(), "order_total_unverified")
			continue
		}
		acc := accums[order.CustomerID]
		if acc == nil {
			acc = &customerAccum{ref: refs[order.CustomerID], monetary: money.Zero}
			acc.ref.ID = order.CustomerID
			accums[order.CustomerID] = acc
		}
		acc.frequency++
		acc.monetary = acc.monetary.Add(gross)
		if order.PlacedAt.After(acc.lastOrder) {
			acc.lastOrder = order.PlacedAt
		}
	}

	if len(accums) == 0 {
		return report, diags, nil
	}

	population := make([]*customerAccum, 0, len(accums))
	for _, acc := range accums {
		population = append(population, acc)
	}
	sort.Slice(population, func(a, b int) bool {
		return population[a].ref.ID < population[b].ref.ID
	})

	now := s.clock.Now()
	n := len(population)
	recency := make([]decimal.Decimal, n)
	frequency := make([]decimal.Decimal, n)
	monetary := make([]decimal.Decimal, n)
	for i, acc := range population {
		recency[i] = decimal.NewFromInt(int64(recencyDays(now, acc.lastOrder)))
		frequency[i] = decimal.NewFromInt(int64(acc.frequency))
		monetary[i] = acc.monetary.Decimal()
	}

	rRanks := ranking.DenseRank(recency, ranking.Ascending)
	fRanks := ranking.DenseRank(frequency, ranking.Descending)
	mRanks := ranking.DenseRank(monetary, ranking.Descending)

	for i, acc := range population {
		rScore, err := ranking.QuartileOf(rRanks[i], n)
		if err != nil {
			return report, diags, err
		}
		fScore, err := ranking.QuartileOf(fRanks[i], n)
		if err != nil {
			return report, diags, err
		}
		mScore, err := ranking.QuartileOf(mRanks[i], n)
		if err != nil {
			return report, diags, err
		}

		report.Rows = append(report.Rows, rfmdomain.Row{
			CustomerID:  acc.ref.ID,
			Name:        acc.ref.Name,
			Surname:     acc.ref.Surname,
			RecencyDays: recencyDays(now, acc.lastOrder),
			Frequency:   acc.frequency,
			Monetary:    acc.monetary,
			RScore:      rScore,
			FScore:      fScore,
			MScore:      mScore,
			Segment:     segmentFor(rScore, fScore, mScore),
		})
	}

	sort.SliceStable(report.Rows, func(a, b int) bool {
		if report.Rows[a].RecencyDays != report.Rows[b].RecencyDays {
			return report.Rows[a].RecencyDays < report.Rows[b].RecencyDays
		}
		return report.Rows[a].CustomerID < report.Rows[b].CustomerID
	})

	s.log.Debug("rfm segmentation complete", zap.Int("customers", len(report.Rows)))
	return report, diags, nil
}

// segmentFor applies the ordered segment rules; the first match wins.
func segmentFor(r, f, m int) string {
	switch {
	case r == 1 && f == 1 && m == 1:
		return rfmdomain.SegmentChampions
	case r == 4 && f == 1 && m == 1:
		return rfmdomain.SegmentLoyalAtRisk
	case r == 1:
		return rfmdomain.SegmentNewRecent
	case r == 4:
		return rfmdomain.SegmentLost
	case f == 4:
		return rfmdomain.SegmentOneTime
	default:
		return rfmdomain.SegmentOther
	}
}

// recencyDays counts whole days between now and the last order.
func recencyDays(now, last time.Time) int {
	days := int(now.Sub(last).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}
