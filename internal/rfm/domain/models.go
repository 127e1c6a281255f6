package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// Segment labels, first-match-wins over the (r, f, m) score triple.
const (
	SegmentChampions   = "Champions"
	SegmentLoyalAtRisk = "Loyal at risk"
	SegmentNewRecent   = "New/Recent"
	SegmentLost        = "Lost"
	SegmentOneTime     = "One-time"
	SegmentOther       = "Other"
)

// Row is one customer's recency/frequency/monetary profile.
type Row struct {
	CustomerID  snowflake.ID `json:"customer_id"`
	Name        string       `json:"name"`
	Surname     string       `json:"surname"`
	RecencyDays int          `json:"recency"`
	Frequency   int          `json:"frequency"`
	Monetary    money.Money  `json:"monetary"`
	RScore      int          `json:"r_score"`
	FScore      int          `json:"f_score"`
	MScore      int          `json:"m_score"`
	Segment     string       `json:"segment"`
}

// Report is the segmented customer population, sorted by recency
// ascending. Customers without orders are absent, not labelled.
type Report struct {
	Rows []Row `json:"rows"`
}

// Service computes the RFM segmentation. Gross totals come from the
// reconciliation pass, keyed by order id.
type Service interface {
	Segment(
		ctx context.Context,
		customers []recordstoredomain.UserRef,
		orders []recordstoredomain.OrderSnapshot,
		verifiedGross map[snowflake.ID]money.Money,
	) (Report, diag.List, error)
}
