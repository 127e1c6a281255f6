package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tomasz-trela/catermetrics/internal/money"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

func newTestService() *Service {
	return &Service{log: zap.NewNop()}
}

func vatRate(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func testOrder(id, customer int64, rate string, prices ...string) recordstoredomain.OrderSnapshot {
	item := recordstoredomain.OrderItem{ID: snowflake.ID(id * 100)}
	for i, p := range prices {
		item.Courses = append(item.Courses, recordstoredomain.LineCourse{
			CourseID: snowflake.ID(id*1000 + int64(i)),
			Price:    money.MustParse(p),
		})
	}
	return recordstoredomain.OrderSnapshot{
		ID:         snowflake.ID(id),
		CustomerID: snowflake.ID(customer),
		VATRate:    vatRate(rate),
		Items:      []recordstoredomain.OrderItem{item},
	}
}

func matchingInvoice(invID, orderID int64, rate string, prices ...string) recordstoredomain.InvoiceSnapshot {
	inv := recordstoredomain.InvoiceSnapshot{
		ID:      snowflake.ID(invID),
		OrderID: snowflake.ID(orderID),
		Status:  recordstoredomain.InvoiceStatusPaid,
		VATRate: vatRate(rate),
	}
	for i, p := range prices {
		inv.Lines = append(inv.Lines, recordstoredomain.InvoiceLine{
			LineCourseID: snowflake.ID(orderID*1000 + int64(i)),
			UnitPrice:    money.MustParse(p),
			Quantity:     1,
		})
	}
	return inv
}

func TestReconcileComputesTriple(t *testing.T) {
	svc := newTestService()
	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "100.00", "23.45"),
	}
	invoices := []recordstoredomain.InvoiceSnapshot{
		matchingInvoice(501, 1, "0.08", "100.00", "23.45"),
	}

	report, diags, err := svc.Reconcile(context.Background(), orders, invoices)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}

	row := report.Rows[0]
	if row.ComputedNet.String() != "123.45" {
		t.Fatalf("net = %s, want 123.45", row.ComputedNet)
	}
	if row.ComputedVAT.String() != "9.88" {
		t.Fatalf("vat = %s, want 9.88", row.ComputedVAT)
	}
	if row.ComputedGross.String() != "133.33" {
		t.Fatalf("gross = %s, want 133.33", row.ComputedGross)
	}
	if row.Mismatch {
		t.Fatal("matching invoice flagged as mismatch")
	}
}

func TestReconcileToleratesOneMinorUnit(t *testing.T) {
	svc := newTestService()
	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "10.00"),
	}
	// Invoice net 10.01 is one cent off the computed 10.00.
	invoices := []recordstoredomain.InvoiceSnapshot{
		matchingInvoice(501, 1, "0.08", "10.01"),
	}

	report, _, err := svc.Reconcile(context.Background(), orders, invoices)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if report.Rows[0].Mismatch {
		t.Fatal("one-cent drift must stay within tolerance")
	}
}

func TestReconcileFlagsMismatchBeyondTolerance(t *testing.T) {
	svc := newTestService()
	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "10.00"),
	}
	invoices := []recordstoredomain.InvoiceSnapshot{
		matchingInvoice(501, 1, "0.08", "10.05"),
	}

	report, _, err := svc.Reconcile(context.Background(), orders, invoices)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !report.Rows[0].Mismatch {
		t.Fatal("five-cent drift must be flagged")
	}
}

func TestReconcileSkipsEmptyOrderWithDiagnostic(t *testing.T) {
	svc := newTestService()
	empty := recordstoredomain.OrderSnapshot{
		ID:      snowflake.ID(2),
		VATRate: vatRate("0.08"),
	}
	orders := []recordstoredomain.OrderSnapshot{
		empty,
		testOrder(1, 10, "0.08", "10.00"),
	}

	report, diags, err := svc.Reconcile(context.Background(), orders, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}
	if report.Rows[0].OrderID != snowflake.ID(1) {
		t.Fatalf("kept order = %s, want 1", report.Rows[0].OrderID)
	}
	if len(diags) != 1 || diags[0].Reason != "invalid_order" {
		t.Fatalf("diagnostics = %+v, want one invalid_order", diags)
	}
}

func TestReconcileOrphanInvoiceDiagnostic(t *testing.T) {
	svc := newTestService()
	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "10.00"),
	}
	invoices := []recordstoredomain.InvoiceSnapshot{
		matchingInvoice(501, 999, "0.08", "10.00"),
	}

	report, diags, err := svc.Reconcile(context.Background(), orders, invoices)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(report.Rows))
	}
	if len(diags) != 1 || diags[0].Reason != "invoice_order_not_found" {
		t.Fatalf("diagnostics = %+v, want one invoice_order_not_found", diags)
	}
}

func TestReconcileDuplicateInvoicesDiagnostic(t *testing.T) {
	svc := newTestService()
	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "10.00"),
	}
	invoices := []recordstoredomain.InvoiceSnapshot{
		matchingInvoice(501, 1, "0.08", "10.00"),
		matchingInvoice(502, 1, "0.08", "10.00"),
	}

	_, diags, err := svc.Reconcile(context.Background(), orders, invoices)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	found := false
	for _, d := range diags {
		if d.Reason == "duplicate_invoices_for_order" {
			found = true
		}
	}
	if !found {
		t.Fatalf("diagnostics = %+v, want duplicate_invoices_for_order", diags)
	}
}

func TestReconcileCancelledContext(t *testing.T) {
	svc := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "10.00"),
	}
	_, _, err := svc.Reconcile(ctx, orders, nil)
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestVerifiedGrossIndex(t *testing.T) {
	svc := newTestService()
	orders := []recordstoredomain.OrderSnapshot{
		testOrder(1, 10, "0.08", "100.00"),
		testOrder(2, 11, "0.05", "50.00"),
	}

	report, _, err := svc.Reconcile(context.Background(), orders, nil)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	totals := report.VerifiedGross()
	if got := totals[snowflake.ID(1)].String(); got != "108.00" {
		t.Fatalf("order 1 gross = %s, want 108.00", got)
	}
	if got := totals[snowflake.ID(2)].String(); got != "52.50" {
		t.Fatalf("order 2 gross = %s, want 52.50", got)
	}
}
