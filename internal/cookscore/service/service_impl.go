package service

import (
	"context"
	"math"
	"sort"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cookscoredomain "github.com/tomasz-trela/catermetrics/internal/cookscore/domain"
	"github.com/tomasz-trela/catermetrics/internal/diag"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

const moduleName = "cookscore"

type Service struct {
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

func NewService(p ServiceParam) cookscoredomain.Service {
	return &Service{
		log: p.Log.Named("cookscore.service"),
	}
}

type cookAccum struct {
	totalItems   int
	completed    int
	totalSeconds float64
	complaints   int
}

// Score computes each cook's average preparation time over completed
// fulfillments, their complaint rate over all assigned items, and the
// weighted composite. Cooks without a completed fulfillment are excluded;
// the duration normalizer is the per-run maximum average.
func (s *Service) Score(
	ctx context.Context,
	fulfillments []recordstoredomain.FulfillmentRecord,
	complaints []recordstoredomain.ComplaintRecord,
	workers []recordstoredomain.UserRef,
) (cookscoredomain.Report, diag.List, error) {
	var report cookscoredomain.Report
	var diags diag.List

	if err := ctx.Err(); err != nil {
		return report, diags, err
	}

	accums := make(map[snowflake.ID]*cookAccum)
	cooksByItem := make(map[snowflake.ID][]snowflake.ID)
	for _, f := range fulfillments {
		acc := accums[f.CookID]
		if acc == nil {
			acc = &cookAccum{}
			accums[f.CookID] = acc
		}
		acc.totalItems++
		cooksByItem[f.OrderItemID] = append(cooksByItem[f.OrderItemID], f.CookID)

		// Duration is defined only when both timestamps are present.
		if f.BeganAt == nil || f.CompletedAt == nil {
			if f.Status == recordstoredomain.FulfillmentStatusCompleted {
				diags.Add(moduleName, f.ID.String(), "completed_without_timestamps")
			}
			continue
		}
		seconds := f.CompletedAt.Sub(*f.BeganAt).Seconds()
		if seconds < 0 {
			diags.Add(moduleName, f.ID.String(), "negative_duration")
			continue
		}
		acc.completed++
		acc.totalSeconds += seconds
	}

	// A complaint lands on every cook who fulfilled the complained-about
	// order item.
	for _, c := range complaints {
		for _, cookID := range cooksByItem[c.OrderItemID] {
			if acc := accums[cookID]; acc != nil {
				acc.complaints++
			}
		}
	}

	names := make(map[snowflake.ID]recordstoredomain.UserRef, len(workers))
	for _, w := range workers {
		names[w.ID] = w
	}

	type scored struct {
		id  snowflake.ID
		acc *cookAccum
		avg float64
	}
	population := make([]scored, 0, len(accums))
	maxAvg := 0.0
	for id, acc := range accums {
		if acc.totalItems == 0 || acc.completed == 0 {
			continue
		}
		avg := acc.totalSeconds / float64(acc.completed)
		population = append(population, scored{id: id, acc: acc, avg: avg})
		if avg > maxAvg {
			maxAvg = avg
		}
	}

	if len(population) == 0 {
		return report, diags, nil
	}

	for _, cook := range population {
		rate := float64(cook.acc.complaints) / float64(cook.acc.totalItems)

		quality := round3(1 - rate)
		durationShare := 0.0
		if maxAvg > 0 {
			durationShare = cook.avg / maxAvg
		}
		performance := round3(0.4*(1-durationShare) + 0.6*(1-rate))
		overall := round3((quality + performance) / 2)

		ref := names[cook.id]
		report.Rows = append(report.Rows, cookscoredomain.Row{
			WorkerID:           cook.id,
			Name:               ref.Name,
			Surname:            ref.Surname,
			AvgDurationSeconds: round2(cook.avg),
			TotalItems:         cook.acc.totalItems,
			Complaints:         cook.acc.complaints,
			QualityScore:       quality,
			PerformanceScore:   performance,
			OverallScore:       overall,
		})
	}

	sort.SliceStable(report.Rows, func(a, b int) bool {
		if report.Rows[a].OverallScore != report.Rows[b].OverallScore {
			return report.Rows[a].OverallScore > report.Rows[b].OverallScore
		}
		return report.Rows[a].WorkerID < report.Rows[b].WorkerID
	})

	s.log.Debug("cook scoring complete", zap.Int("cooks", len(report.Rows)))
	return report, diags, nil
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
