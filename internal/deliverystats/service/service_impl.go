package service

import (
	"context"
	"math"
	"sort"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	deliverystatsdomain "github.com/tomasz-trela/catermetrics/internal/deliverystats/domain"
	"github.com/tomasz-trela/catermetrics/internal/diag"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

const moduleName = "deliverystats"

type Service struct {
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

func NewService(p ServiceParam) deliverystatsdomain.Service {
	return &Service{
		log: p.Log.Named("deliverystats.service"),
	}
}

type courierAccum struct {
	total        int
	totalMinutes float64
	fast         int
	standard     int
	late         int
	over         int
}

// Profile aggregates delivered records with both timestamps per courier:
// delivery count, average minutes and the percentage split across the
// speed buckets.
func (s *Service) Profile(
	ctx context.Context,
	deliveries []recordstoredomain.DeliveryRecord,
	couriers []recordstoredomain.UserRef,
) (deliverystatsdomain.Report, diag.List, error) {
	var report deliverystatsdomain.Report
	var diags diag.List

	if err := ctx.Err(); err != nil {
		return report, diags, err
	}

	accums := make(map[snowflake.ID]*courierAccum)
	for _, d := range deliveries {
		if d.Status != recordstoredomain.DeliveryStatusDelivered {
			continue
		}
		if d.BeganAt == nil || d.DeliveredAt == nil {
			diags.Add(moduleName, d.ID.String(), "delivered_without_timestamps")
			continue
		}
		minutes := d.DeliveredAt.Sub(*d.BeganAt).Minutes()
		if minutes < 0 {
			diags.Add(moduleName, d.ID.String(), "negative_duration")
			continue
		}

		acc := accums[d.CourierID]
		if acc == nil {
			acc = &courierAccum{}
			accums[d.CourierID] = acc
		}
		acc.total++
		acc.totalMinutes += minutes
		switch {
		case minutes <= deliverystatsdomain.FastLimitMinutes:
			acc.fast++
		case minutes <= deliverystatsdomain.StandardLimitMinutes:
			acc.standard++
		case minutes <= deliverystatsdomain.LateLimitMinutes:
			acc.late++
		default:
			acc.over++
		}
	}

	names := make(map[snowflake.ID]recordstoredomain.UserRef, len(couriers))
	for _, c := range couriers {
		names[c.ID] = c
	}

	for id, acc := range accums {
		ref := names[id]
		total := float64(acc.total)
		report.Rows = append(report.Rows, deliverystatsdomain.Row{
			CourierID:       id,
			Name:            ref.Name,
			Surname:         ref.Surname,
			TotalDeliveries: acc.total,
			AverageMinutes:  round2(acc.totalMinutes / total),
			Performance: deliverystatsdomain.BucketShares{
				FastPercent:     round1(100 * float64(acc.fast) / total),
				StandardPercent: round1(100 * float64(acc.standard) / total),
				LatePercent:     round1(100 * float64(acc.late) / total),
				OverPercent:     round1(100 * float64(acc.over) / total),
			},
		})
	}

	sort.SliceStable(report.Rows, func(a, b int) bool {
		if report.Rows[a].AverageMinutes != report.Rows[b].AverageMinutes {
			return report.Rows[a].AverageMinutes > report.Rows[b].AverageMinutes
		}
		return report.Rows[a].CourierID < report.Rows[b].CourierID
	})

	s.log.Debug("delivery profiling complete", zap.Int("couriers", len(report.Rows)))
	return report, diags, nil
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
