package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/clock"
	"github.com/tomasz-trela/catermetrics/internal/diag"
	forecastdomain "github.com/tomasz-trela/catermetrics/internal/forecast/domain"
	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

const moduleName = "forecast"

type Service struct {
	log   *zap.Logger
	clock clock.Clock
}

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

func NewService(p ServiceParam) forecastdomain.Service {
	return &Service{
		log:   p.Log.Named("forecast.service"),
		clock: p.Clock,
	}
}

// Project buckets the horizon into [d, d+1) day windows from today's
// midnight and, per bucket, sums the verified gross total of every order
// that has a paid invoice and at least one item expected for delivery in
// the window. Each touched bucket gets the order's full total.
func (s *Service) Project(
	ctx context.Context,
	orders []recordstoredomain.OrderSnapshot,
	invoices []recordstoredomain.InvoiceSnapshot,
	verifiedGross map[snowflake.ID]money.Money,
	horizonDays int,
) (forecastdomain.Report, diag.List, error) {
	var report forecastdomain.Report
	var diags diag.List

	if horizonDays == 0 {
		horizonDays = forecastdomain.DefaultHorizonDays
	}
	if horizonDays < 0 {
		return report, diags, forecastdomain.ErrInvalidHorizon
	}
	if err := ctx.Err(); err != nil {
		return report, diags, err
	}

	paid := make(map[snowflake.ID]bool, len(invoices))
	for _, inv := range invoices {
		if inv.Status == recordstoredomain.InvoiceStatusPaid {
			paid[inv.OrderID] = true
		}
	}

	now := s.clock.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	buckets := make([]money.Money, horizonDays)
	for i := range buckets {
		buckets[i] = money.Zero
	}

	for _, order := range orders {
		if !paid[order.ID] {
			continue
		}
		gross, ok := verifiedGross[order.ID]
		if !ok {
			diags.Add(moduleName, order.ID.String(), "order_total_unverified")
			continue
		}

		touched := make(map[int]bool)
		for _, item := range order.Items {
			day := int(item.ExpectedDeliveryAt.Sub(start).Hours() / 24)
			if item.ExpectedDeliveryAt.Before(start) || day < 0 || day >= horizonDays {
				continue
			}
			touched[day] = true
		}
		for day := range touched {
			buckets[day] = buckets[day].Add(gross)
		}
	}

	report.Rows = make([]forecastdomain.Row, horizonDays)
	for i := range buckets {
		report.Rows[i] = forecastdomain.Row{
			Date:             start.AddDate(0, 0, i),
			ProjectedRevenue: buckets[i],
		}
	}

	s.log.Debug("forecast complete", zap.Int("days", horizonDays))
	return report, diags, nil
}
