package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/diag"
	"github.com/tomasz-trela/catermetrics/internal/money"
	reconciledomain "github.com/tomasz-trela/catermetrics/internal/reconcile/domain"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

const moduleName = "reconcile"

type Service struct {
	log *zap.Logger
}

type ServiceParam struct {
	fx.In

	Log *zap.Logger
}

func NewService(p ServiceParam) reconciledomain.Service {
	return &Service{
		log: p.Log.Named("reconcile.service"),
	}
}

// Reconcile recomputes each order's net/VAT/gross from its line prices and
// compares the triple against the totals derived from the order's invoice.
// A disagreement beyond one minor unit marks the row as a mismatch; it is
// reported as data, never raised. Invalid orders are skipped with a
// diagnostic and processing continues.
func (s *Service) Reconcile(
	ctx context.Context,
	orders []recordstoredomain.OrderSnapshot,
	invoices []recordstoredomain.InvoiceSnapshot,
) (reconciledomain.Report, diag.List, error) {
	var report reconciledomain.Report
	var diags diag.List

	invoicesByOrder := make(map[snowflake.ID][]recordstoredomain.InvoiceSnapshot, len(invoices))
	orderIDs := make(map[snowflake.ID]struct{}, len(orders))
	for _, o := range orders {
		orderIDs[o.ID] = struct{}{}
	}
	for _, inv := range invoices {
		if _, ok := orderIDs[inv.OrderID]; !ok {
			diags.Add(moduleName, inv.ID.String(), "invoice_order_not_found")
			continue
		}
		invoicesByOrder[inv.OrderID] = append(invoicesByOrder[inv.OrderID], inv)
	}
	for orderID, group := range invoicesByOrder {
		// At most one invoice per order is an upstream rule; violations
		// are reported, not enforced.
		if len(group) > 1 {
			diags.Add(moduleName, orderID.String(), "duplicate_invoices_for_order")
		}
	}

	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return report, diags, err
		}

		net, ok := orderNet(order)
		if !ok {
			diags.Add(moduleName, order.ID.String(), reconciledomain.ErrInvalidOrder.Error())
			s.log.Warn("order skipped",
				zap.String("order_id", order.ID.String()),
				zap.Error(reconciledomain.ErrInvalidOrder),
			)
			continue
		}

		vat := net.MulScalar(order.VATRate)
		gross := net.Add(vat)

		mismatch := false
		for _, inv := range invoicesByOrder[order.ID] {
			invNet, invVAT, invGross := invoiceTotals(inv)
			if !money.WithinMinorUnit(invNet, net) ||
				!money.WithinMinorUnit(invVAT, vat) ||
				!money.WithinMinorUnit(invGross, gross) {
				mismatch = true
			}
		}

		report.Rows = append(report.Rows, reconciledomain.Row{
			OrderID:       order.ID,
			ComputedNet:   net,
			ComputedVAT:   vat,
			ComputedGross: gross,
			Mismatch:      mismatch,
		})
	}

	return report, diags, nil
}

// orderNet sums every line price across the order's items and rounds once.
// An order with no items or no line courses is invalid input.
func orderNet(order recordstoredomain.OrderSnapshot) (money.Money, bool) {
	if len(order.Items) == 0 {
		return money.Zero, false
	}

	var prices []money.Money
	for _, item := range order.Items {
		for _, line := range item.Courses {
			prices = append(prices, line.Price)
		}
	}
	if len(prices) == 0 {
		return money.Zero, false
	}
	return money.Sum(prices...), true
}

// invoiceTotals recomputes the invoice triple from its lines:
// line net is round2(unit * qty), totals are rounded sums of the lines.
func invoiceTotals(inv recordstoredomain.InvoiceSnapshot) (net, vat, gross money.Money) {
	var lineNets []money.Money
	for _, line := range inv.Lines {
		lineNet := line.UnitPrice.MulScalar(decimal.NewFromInt(int64(line.Quantity)))
		lineNets = append(lineNets, lineNet)
	}
	net = money.Sum(lineNets...)
	vat = net.MulScalar(inv.VATRate)
	gross = net.Add(vat)
	return net, vat, gross
}
