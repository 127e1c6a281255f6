package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return &Service{log: zap.NewNop()}
}

func delivered(id, courierID int64, minutes int) recordstoredomain.DeliveryRecord {
	began := base
	done := base.Add(time.Duration(minutes) * time.Minute)
	return recordstoredomain.DeliveryRecord{
		ID:          snowflake.ID(id),
		OrderItemID: snowflake.ID(id * 10),
		CourierID:   snowflake.ID(courierID),
		BeganAt:     &began,
		DeliveredAt: &done,
		Status:      recordstoredomain.DeliveryStatusDelivered,
	}
}

func TestProfileBucketsAndAverages(t *testing.T) {
	svc := newTestService()

	// Courier 1: 30m (fast), 90m (standard), 2000m (late), 3000m (over).
	deliveries := []recordstoredomain.DeliveryRecord{
		delivered(1, 1, 30),
		delivered(2, 1, 90),
		delivered(3, 1, 2000),
		delivered(4, 1, 3000),
	}
	couriers := []recordstoredomain.UserRef{
		{ID: snowflake.ID(1), Name: "Iga", Surname: "Lis", Role: recordstoredomain.RoleCourier},
	}

	report, diags, err := svc.Profile(context.Background(), deliveries, couriers)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}

	row := report.Rows[0]
	if row.TotalDeliveries != 4 {
		t.Fatalf("total = %d, want 4", row.TotalDeliveries)
	}
	if row.AverageMinutes != 1280 {
		t.Fatalf("avg = %v, want 1280", row.AverageMinutes)
	}
	p := row.Performance
	if p.FastPercent != 25 || p.StandardPercent != 25 || p.LatePercent != 25 || p.OverPercent != 25 {
		t.Fatalf("buckets = %v/%v/%v/%v, want 25 each",
			p.FastPercent, p.StandardPercent, p.LatePercent, p.OverPercent)
	}
	if row.Name != "Iga" || row.Surname != "Lis" {
		t.Fatalf("courier = %s %s, want Iga Lis", row.Name, row.Surname)
	}
}

func TestProfileBucketBoundariesInclusive(t *testing.T) {
	svc := newTestService()

	deliveries := []recordstoredomain.DeliveryRecord{
		delivered(1, 1, 60),
		delivered(2, 1, 1440),
		delivered(3, 1, 2880),
	}

	report, _, err := svc.Profile(context.Background(), deliveries, nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	p := report.Rows[0].Performance
	if p.FastPercent != 33.3 || p.StandardPercent != 33.3 || p.LatePercent != 33.3 || p.OverPercent != 0 {
		t.Fatalf("buckets = %v/%v/%v/%v, want 33.3/33.3/33.3/0",
			p.FastPercent, p.StandardPercent, p.LatePercent, p.OverPercent)
	}
}

func TestProfileSkipsNonDelivered(t *testing.T) {
	svc := newTestService()

	pending := recordstoredomain.DeliveryRecord{
		ID:        snowflake.ID(1),
		CourierID: snowflake.ID(1),
		Status:    recordstoredomain.DeliveryStatusEnRoute,
	}
	deliveries := []recordstoredomain.DeliveryRecord{
		pending,
		delivered(2, 1, 45),
	}

	report, diags, err := svc.Profile(context.Background(), deliveries, nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if report.Rows[0].TotalDeliveries != 1 {
		t.Fatalf("total = %d, want 1", report.Rows[0].TotalDeliveries)
	}
}

func TestProfileDeliveredWithoutTimestampsDiagnostic(t *testing.T) {
	svc := newTestService()

	deliveries := []recordstoredomain.DeliveryRecord{
		{
			ID:        snowflake.ID(1),
			CourierID: snowflake.ID(1),
			Status:    recordstoredomain.DeliveryStatusDelivered,
		},
	}

	report, diags, err := svc.Profile(context.Background(), deliveries, nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(report.Rows))
	}
	if len(diags) != 1 || diags[0].Reason != "delivered_without_timestamps" {
		t.Fatalf("diagnostics = %+v, want one delivered_without_timestamps", diags)
	}
}

func TestProfileSortsSlowestFirst(t *testing.T) {
	svc := newTestService()

	deliveries := []recordstoredomain.DeliveryRecord{
		delivered(1, 1, 30),
		delivered(2, 2, 120),
	}

	report, _, err := svc.Profile(context.Background(), deliveries, nil)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if report.Rows[0].CourierID != snowflake.ID(2) || report.Rows[1].CourierID != snowflake.ID(1) {
		t.Fatalf("order = %s, %s, want 2, 1", report.Rows[0].CourierID, report.Rows[1].CourierID)
	}
}
