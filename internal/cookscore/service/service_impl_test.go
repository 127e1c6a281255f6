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

func ts(offset time.Duration) *time.Time {
	t := base.Add(offset)
	return &t
}

func completed(id, itemID, cookID int64, duration time.Duration) recordstoredomain.FulfillmentRecord {
	return recordstoredomain.FulfillmentRecord{
		ID:          snowflake.ID(id),
		OrderItemID: snowflake.ID(itemID),
		CookID:      snowflake.ID(cookID),
		BeganAt:     ts(0),
		CompletedAt: ts(duration),
		Status:      recordstoredomain.FulfillmentStatusCompleted,
	}
}

func TestScoreFormulas(t *testing.T) {
	svc := newTestService()

	fulfillments := []recordstoredomain.FulfillmentRecord{
		completed(1, 11, 1, 10*time.Minute),
		completed(2, 12, 1, 20*time.Minute),
		completed(3, 21, 2, 30*time.Minute),
		completed(4, 22, 2, 30*time.Minute),
	}
	complaints := []recordstoredomain.ComplaintRecord{
		{ID: snowflake.ID(901), OrderItemID: snowflake.ID(21), Status: recordstoredomain.ComplaintStatusSubmitted},
	}
	workers := []recordstoredomain.UserRef{
		{ID: snowflake.ID(1), Name: "Ewa", Surname: "Nowak", Role: recordstoredomain.RoleCook},
		{ID: snowflake.ID(2), Name: "Jan", Surname: "Kowal", Role: recordstoredomain.RoleCook},
	}

	report, diags, err := svc.Score(context.Background(), fulfillments, complaints, workers)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(report.Rows))
	}

	// Cook 1: avg 900s, no complaints. Normalizer is cook 2's 1800s avg.
	first := report.Rows[0]
	if first.WorkerID != snowflake.ID(1) {
		t.Fatalf("first worker = %s, want 1", first.WorkerID)
	}
	if first.AvgDurationSeconds != 900 {
		t.Fatalf("avg = %v, want 900", first.AvgDurationSeconds)
	}
	if first.QualityScore != 1.0 {
		t.Fatalf("quality = %v, want 1.0", first.QualityScore)
	}
	if first.PerformanceScore != 0.8 {
		t.Fatalf("performance = %v, want 0.8", first.PerformanceScore)
	}
	if first.OverallScore != 0.9 {
		t.Fatalf("overall = %v, want 0.9", first.OverallScore)
	}

	// Cook 2: complaint rate 0.5, slowest avg so duration share is 1.
	second := report.Rows[1]
	if second.WorkerID != snowflake.ID(2) {
		t.Fatalf("second worker = %s, want 2", second.WorkerID)
	}
	if second.Complaints != 1 || second.TotalItems != 2 {
		t.Fatalf("complaints/items = %d/%d, want 1/2", second.Complaints, second.TotalItems)
	}
	if second.QualityScore != 0.5 {
		t.Fatalf("quality = %v, want 0.5", second.QualityScore)
	}
	if second.PerformanceScore != 0.3 {
		t.Fatalf("performance = %v, want 0.3", second.PerformanceScore)
	}
	if second.OverallScore != 0.4 {
		t.Fatalf("overall = %v, want 0.4", second.OverallScore)
	}
	if second.Name != "Jan" || second.Surname != "Kowal" {
		t.Fatalf("worker name = %s %s, want Jan Kowal", second.Name, second.Surname)
	}
}

func TestScoreExcludesCooksWithoutCompletedWork(t *testing.T) {
	svc := newTestService()

	fulfillments := []recordstoredomain.FulfillmentRecord{
		completed(1, 11, 1, 10*time.Minute),
		{
			ID:          snowflake.ID(2),
			OrderItemID: snowflake.ID(21),
			CookID:      snowflake.ID(2),
			Status:      recordstoredomain.FulfillmentStatusPending,
		},
	}

	report, diags, err := svc.Score(context.Background(), fulfillments, nil, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}
	if report.Rows[0].WorkerID != snowflake.ID(1) {
		t.Fatalf("worker = %s, want 1", report.Rows[0].WorkerID)
	}
}

func TestScoreCompletedWithoutTimestampsDiagnostic(t *testing.T) {
	svc := newTestService()

	fulfillments := []recordstoredomain.FulfillmentRecord{
		{
			ID:          snowflake.ID(1),
			OrderItemID: snowflake.ID(11),
			CookID:      snowflake.ID(1),
			Status:      recordstoredomain.FulfillmentStatusCompleted,
		},
	}

	report, diags, err := svc.Score(context.Background(), fulfillments, nil, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(report.Rows) != 0 {
		t.Fatalf("rows = %d, want 0", len(report.Rows))
	}
	if len(diags) != 1 || diags[0].Reason != "completed_without_timestamps" {
		t.Fatalf("diagnostics = %+v, want one completed_without_timestamps", diags)
	}
}

func TestScoreNegativeDurationDiagnostic(t *testing.T) {
	svc := newTestService()

	fulfillments := []recordstoredomain.FulfillmentRecord{
		{
			ID:          snowflake.ID(1),
			OrderItemID: snowflake.ID(11),
			CookID:      snowflake.ID(1),
			BeganAt:     ts(time.Hour),
			CompletedAt: ts(0),
			Status:      recordstoredomain.FulfillmentStatusCompleted,
		},
	}

	_, diags, err := svc.Score(context.Background(), fulfillments, nil, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(diags) != 1 || diags[0].Reason != "negative_duration" {
		t.Fatalf("diagnostics = %+v, want one negative_duration", diags)
	}
}

func TestScoreTieBreaksOnWorkerID(t *testing.T) {
	svc := newTestService()

	// Identical records for both cooks produce identical scores.
	fulfillments := []recordstoredomain.FulfillmentRecord{
		completed(1, 11, 2, 15*time.Minute),
		completed(2, 12, 1, 15*time.Minute),
	}

	report, _, err := svc.Score(context.Background(), fulfillments, nil, nil)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if len(report.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(report.Rows))
	}
	if report.Rows[0].WorkerID != snowflake.ID(1) || report.Rows[1].WorkerID != snowflake.ID(2) {
		t.Fatalf("tie order = %s, %s, want 1, 2", report.Rows[0].WorkerID, report.Rows[1].WorkerID)
	}
}
