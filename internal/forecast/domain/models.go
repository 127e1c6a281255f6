package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// DefaultHorizonDays is the forecast window when the caller does not
// choose one.
const DefaultHorizonDays = 7

// Row is one day bucket of projected revenue.
type Row struct {
	Date             time.Time   `json:"date"`
	ProjectedRevenue money.Money `json:"projected_revenue"`
}

// Report has exactly one row per horizon day, ascending, zero-filled.
//
// An order whose items land in several buckets contributes its full gross
// total to each of them, so the projection is an upper bound, not a
// partition of revenue.
type Report struct {
	Rows []Row `json:"rows"`
}

// Service projects near-future revenue from expected delivery dates.
type Service interface {
	Project(
		ctx context.Context,
		orders []recordstoredomain.OrderSnapshot,
		invoices []recordstoredomain.InvoiceSnapshot,
		verifiedGross map[snowflake.ID]money.Money,
		horizonDays int,
	) (Report, diag.List, error)
}

var (
	ErrInvalidHorizon = errors.New("invalid_horizon")
)
