package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// Delivery-time bucket limits, in minutes.
const (
	FastLimitMinutes     = 60
	StandardLimitMinutes = 1440
	LateLimitMinutes     = 2880
)

// BucketShares splits a courier's deliveries into speed buckets, as
// percentages of their total.
type BucketShares struct {
	FastPercent     float64 `json:"fast_percent"`
	StandardPercent float64 `json:"standard_percent"`
	LatePercent     float64 `json:"late_percent"`
	OverPercent     float64 `json:"over_percent"`
}

// Row is one courier's delivery-time profile.
type Row struct {
	CourierID       snowflake.ID `json:"courier_id"`
	Name            string       `json:"name"`
	Surname         string       `json:"surname"`
	TotalDeliveries int          `json:"total_deliveries"`
	AverageMinutes  float64      `json:"average_minutes"`
	Performance     BucketShares `json:"performance"`
}

// Report lists couriers, slowest average first.
type Report struct {
	Rows []Row `json:"rows"`
}

// Service profiles courier delivery times from delivered records.
type Service interface {
	Profile(
		ctx context.Context,
		deliveries []recordstoredomain.DeliveryRecord,
		couriers []recordstoredomain.UserRef,
	) (Report, diag.List, error)
}
