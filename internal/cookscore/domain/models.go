package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// Row is one cook's quality and throughput profile for a run.
type Row struct {
	WorkerID           snowflake.ID `json:"worker_id"`
	Name               string       `json:"name"`
	Surname            string       `json:"surname"`
	AvgDurationSeconds float64      `json:"avg_duration_seconds"`
	TotalItems         int          `json:"total_items"`
	Complaints         int          `json:"complaints"`
	QualityScore       float64      `json:"quality_score"`
	PerformanceScore   float64      `json:"performance_score"`
	OverallScore       float64      `json:"overall_score"`
}

// Report lists scored cooks, best overall score first.
type Report struct {
	Rows []Row `json:"rows"`
}

// Service scores cooks from fulfillment and complaint records.
type Service interface {
	Score(
		ctx context.Context,
		fulfillments []recordstoredomain.FulfillmentRecord,
		complaints []recordstoredomain.ComplaintRecord,
		workers []recordstoredomain.UserRef,
	) (Report, diag.List, error)
}
