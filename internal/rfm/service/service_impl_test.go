package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/clock"
	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
	rfmdomain "github.com/tomasz-trela/catermetrics/internal/rfm/domain"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return &Service{
		log:   zap.NewNop(),
		clock: clock.Fixed{At: testNow},
	}
}

func customer(id int64, name string) recordstoredomain.UserRef {
	return recordstoredomain.UserRef{
		ID:      snowflake.ID(id),
		Name:    name,
		Surname: "Test",
		Role:    recordstoredomain.RoleCustomer,
	}
}

func order(id, customerID int64, daysAgo int) recordstoredomain.OrderSnapshot {
	return recordstoredomain.OrderSnapshot{
		ID:         snowflake.ID(id),
		CustomerID: snowflake.ID(customerID),
		PlacedAt:   testNow.AddDate(0, 0, -daysAgo),
	}
}

func TestSegmentPopulation(t *testing.T) {
	svc := newTestService()

	customers := []recordstoredomain.UserRef{
		customer(1, "Anna"),
		customer(2, "Bart"),
		customer(3, "Cleo"),
		customer(4, "Dana"),
	}
	orders := []recordstoredomain.OrderSnapshot{
		order(101, 1, 1),
		order(102, 1, 10),
		order(103, 1, 40),
		order(201, 2, 5),
		order(301, 3, 20),
		order(302, 3, 20),
		order(401, 4, 90),
	}
	verified := map[snowflake.ID]money.Money{
		snowflake.ID(101): money.MustParse("100.00"),
		snowflake.ID(102): money.MustParse("50.00"),
		snowflake.ID(103): money.MustParse("200.00"),
		snowflake.ID(201): money.MustParse("40.00"),
		snowflake.ID(301): money.MustParse("60.00"),
		snowflake.ID(302): money.MustParse("60.00"),
		snowflake.ID(401): money.MustParse("10.00"),
	}

	report, diags, err := svc.Segment(context.Background(), customers, orders, verified)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(report.Rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(report.Rows))
	}

	// Sorted by recency ascending.
	first := report.Rows[0]
	if first.CustomerID != snowflake.ID(1) {
		t.Fatalf("first row customer = %s, want 1", first.CustomerID)
	}
	if first.RecencyDays != 1 || first.Frequency != 3 {
		t.Fatalf("customer 1 recency/frequency = %d/%d, want 1/3", first.RecencyDays, first.Frequency)
	}
	if first.Monetary.String() != "350.00" {
		t.Fatalf("customer 1 monetary = %s, want 350.00", first.Monetary)
	}
	if first.RScore != 1 || first.FScore != 1 || first.MScore != 1 {
		t.Fatalf("customer 1 scores = %d/%d/%d, want 1/1/1", first.RScore, first.FScore, first.MScore)
	}
	if first.Segment != rfmdomain.SegmentChampions {
		t.Fatalf("customer 1 segment = %q, want Champions", first.Segment)
	}

	last := report.Rows[3]
	if last.CustomerID != snowflake.ID(4) {
		t.Fatalf("last row customer = %s, want 4", last.CustomerID)
	}
	if last.RScore != 4 {
		t.Fatalf("customer 4 r score = %d, want 4", last.RScore)
	}
	if last.Segment != rfmdomain.SegmentLost {
		t.Fatalf("customer 4 segment = %q, want Lost", last.Segment)
	}
}

func TestSegmentSkipsUnverifiedOrders(t *testing.T) {
	svc := newTestService()

	customers := []recordstoredomain.UserRef{customer(1, "Anna")}
	orders := []recordstoredomain.OrderSnapshot{
		order(101, 1, 1),
		order(102, 1, 2),
	}
	verified := map[snowflake.ID]money.Money{
		snowflake.ID(101): money.MustParse("100.00"),
	}

	report, diags, err := svc.Segment(context.Background(), customers, orders, verified)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(diags) != 1 || diags[0].Reason != "order_total_unverified" {
		t.Fatalf("diagnostics = %+v, want one order_total_unverified", diags)
	}
	if report.Rows[0].Frequency != 1 {
		t.Fatalf("frequency = %d, want 1", report.Rows[0].Frequency)
	}
	if report.Rows[0].Monetary.String() != "100.00" {
		t.Fatalf("monetary = %s, want 100.00", report.Rows[0].Monetary)
	}
}

func TestSegmentCustomersWithoutOrdersAbsent(t *testing.T) {
	svc := newTestService()

	customers := []recordstoredomain.UserRef{
		customer(1, "Anna"),
		customer(2, "Bart"),
	}
	orders := []recordstoredomain.OrderSnapshot{order(101, 1, 1)}
	verified := map[snowflake.ID]money.Money{
		snowflake.ID(101): money.MustParse("10.00"),
	}

	report, _, err := svc.Segment(context.Background(), customers, orders, verified)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}
}

func TestSegmentRulesFirstMatchWins(t *testing.T) {
	cases := []struct {
		r, f, m int
		want    string
	}{
		{1, 1, 1, rfmdomain.SegmentChampions},
		{4, 1, 1, rfmdomain.SegmentLoyalAtRisk},
		{1, 2, 3, rfmdomain.SegmentNewRecent},
		{1, 4, 4, rfmdomain.SegmentNewRecent},
		{4, 2, 2, rfmdomain.SegmentLost},
		{4, 4, 4, rfmdomain.SegmentLost},
		{2, 4, 1, rfmdomain.SegmentOneTime},
		{2, 2, 2, rfmdomain.SegmentOther},
		{3, 1, 1, rfmdomain.SegmentOther},
	}
	for _, tc := range cases {
		if got := segmentFor(tc.r, tc.f, tc.m); got != tc.want {
			t.Fatalf("segmentFor(%d,%d,%d) = %q, want %q", tc.r, tc.f, tc.m, got, tc.want)
		}
	}
}

func TestRecencyDaysClampsFuture(t *testing.T) {
	if got := recencyDays(testNow, testNow.Add(2*time.Hour)); got != 0 {
		t.Fatalf("future order recency = %d, want 0", got)
	}
	if got := recencyDays(testNow, testNow.Add(-36*time.Hour)); got != 1 {
		t.Fatalf("36h recency = %d, want 1", got)
	}
}
