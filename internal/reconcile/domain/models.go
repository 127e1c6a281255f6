package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// Row is one reconciled order: the totals recomputed from line prices and
// whether the linked invoice disagrees beyond one minor unit.
type Row struct {
	OrderID       snowflake.ID `json:"order_id"`
	ComputedNet   money.Money  `json:"computed_net"`
	ComputedVAT   money.Money  `json:"computed_vat"`
	ComputedGross money.Money  `json:"computed_gross"`
	Mismatch      bool         `json:"mismatch"`
}

// Report is the reconciliation output. Downstream modules read verified
// gross totals from here rather than trusting stored order totals.
type Report struct {
	Rows []Row `json:"rows"`
}

// VerifiedGross indexes computed gross totals by order id.
func (r Report) VerifiedGross() map[snowflake.ID]money.Money {
	totals := make(map[snowflake.ID]money.Money, len(r.Rows))
	for _, row := range r.Rows {
		totals[row.OrderID] = row.ComputedGross
	}
	return totals
}

// Service recomputes and cross-checks monetary totals.
type Service interface {
	Reconcile(ctx context.Context, orders []recordstoredomain.OrderSnapshot, invoices []recordstoredomain.InvoiceSnapshot) (Report, diag.List, error)
}

var (
	ErrInvalidOrder = errors.New("invalid_order")
)
