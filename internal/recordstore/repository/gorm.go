package repository

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
)

// Store loads entity snapshots from the catering database. It issues
// SELECTs only.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

type StoreParam struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewStore(p StoreParam) recordstoredomain.Repository {
	return &Store{
		db:  p.DB,
		log: p.Log.Named("recordstore"),
	}
}

// LoadSnapshots reads every entity set the engine consumes in one pass.
func (s *Store) LoadSnapshots(ctx context.Context) (recordstoredomain.Snapshots, error) {
	var snaps recordstoredomain.Snapshots
	if s.db == nil {
		return snaps, recordstoredomain.ErrStoreUnavailable
	}

	orders, err := s.loadOrders(ctx)
	if err != nil {
		return snaps, err
	}
	snaps.Orders = orders

	invoices, err := s.loadInvoices(ctx)
	if err != nil {
		return snaps, err
	}
	snaps.Invoices = invoices

	var fulfillments []fulfillmentRow
	if err := s.db.WithContext(ctx).Find(&fulfillments).Error; err != nil {
		return snaps, err
	}
	for _, row := range fulfillments {
		snaps.Fulfillments = append(snaps.Fulfillments, recordstoredomain.FulfillmentRecord{
			ID:          row.ID,
			OrderItemID: row.OrderItemID,
			CookID:      row.CookID,
			BeganAt:     row.BeganAt,
			CompletedAt: row.CompletedAt,
			Status:      recordstoredomain.FulfillmentStatus(row.Status),
		})
	}

	var complaints []complaintRow
	if err := s.db.WithContext(ctx).Find(&complaints).Error; err != nil {
		return snaps, err
	}
	for _, row := range complaints {
		snaps.Complaints = append(snaps.Complaints, recordstoredomain.ComplaintRecord{
			ID:           row.ID,
			OrderItemID:  row.OrderItemID,
			CourseID:     row.CourseID,
			Status:       recordstoredomain.ComplaintStatus(row.Status),
			RefundAmount: row.RefundAmount,
			ResolvedAt:   row.ResolvedAt,
		})
	}

	var opinions []opinionRow
	if err := s.db.WithContext(ctx).Find(&opinions).Error; err != nil {
		return snaps, err
	}
	for _, row := range opinions {
		snaps.Opinions = append(snaps.Opinions, recordstoredomain.OpinionRecord{
			CourseID:   row.CourseID,
			CustomerID: row.CustomerID,
			Rating:     row.Rating,
		})
	}

	var courses []courseRow
	if err := s.db.WithContext(ctx).Find(&courses).Error; err != nil {
		return snaps, err
	}
	for _, row := range courses {
		snaps.Courses = append(snaps.Courses, recordstoredomain.CourseRef{
			ID:    row.ID,
			Name:  row.Name,
			Price: row.Price,
		})
	}

	var users []userRow
	if err := s.db.WithContext(ctx).Find(&users).Error; err != nil {
		return snaps, err
	}
	for _, row := range users {
		snaps.Users = append(snaps.Users, recordstoredomain.UserRef{
			ID:      row.ID,
			Name:    row.Name,
			Surname: row.Surname,
			Role:    recordstoredomain.Role(row.Role),
		})
	}

	var deliveries []deliveryRow
	if err := s.db.WithContext(ctx).Find(&deliveries).Error; err != nil {
		return snaps, err
	}
	for _, row := range deliveries {
		snaps.Deliveries = append(snaps.Deliveries, recordstoredomain.DeliveryRecord{
			ID:          row.ID,
			OrderItemID: row.OrderItemID,
			CourierID:   row.CourierID,
			BeganAt:     row.BeganAt,
			DeliveredAt: row.DeliveredAt,
			Status:      recordstoredomain.DeliveryStatus(row.Status),
		})
	}

	s.log.Debug("snapshots loaded",
		zap.Int("orders", len(snaps.Orders)),
		zap.Int("invoices", len(snaps.Invoices)),
		zap.Int("fulfillments", len(snaps.Fulfillments)),
	)
	return snaps, nil
}

func (s *Store) loadOrders(ctx context.Context) ([]recordstoredomain.OrderSnapshot, error) {
	var orders []orderRow
	if err := s.db.WithContext(ctx).Order("placed_at").Find(&orders).Error; err != nil {
		return nil, err
	}

	var items []orderItemRow
	if err := s.db.WithContext(ctx).Find(&items).Error; err != nil {
		return nil, err
	}

	var lines []orderItemCourseRow
	if err := s.db.WithContext(ctx).Find(&lines).Error; err != nil {
		return nil, err
	}

	linesByItem := make(map[int64][]recordstoredomain.LineCourse, len(items))
	for _, row := range lines {
		linesByItem[int64(row.OrderItemID)] = append(linesByItem[int64(row.OrderItemID)], recordstoredomain.LineCourse{
			CourseID: row.CourseID,
			Name:     row.Name,
			Price:    row.Price,
		})
	}

	itemsByOrder := make(map[int64][]recordstoredomain.OrderItem, len(orders))
	for _, row := range items {
		itemsByOrder[int64(row.OrderID)] = append(itemsByOrder[int64(row.OrderID)], recordstoredomain.OrderItem{
			ID:                 row.ID,
			ExpectedDeliveryAt: row.ExpectedDeliveryAt,
			Courses:            linesByItem[int64(row.ID)],
		})
	}

	result := make([]recordstoredomain.OrderSnapshot, 0, len(orders))
	for _, row := range orders {
		result = append(result, recordstoredomain.OrderSnapshot{
			ID:         row.ID,
			CustomerID: row.CustomerID,
			PlacedAt:   row.PlacedAt,
			VATRate:    row.VATRate,
			NetTotal:   row.NetTotal,
			VATTotal:   row.VATTotal,
			GrossTotal: row.GrossTotal,
			Items:      itemsByOrder[int64(row.ID)],
		})
	}
	return result, nil
}

func (s *Store) loadInvoices(ctx context.Context) ([]recordstoredomain.InvoiceSnapshot, error) {
	var invoices []invoiceRow
	if err := s.db.WithContext(ctx).Find(&invoices).Error; err != nil {
		return nil, err
	}

	var lines []invoiceLineRow
	if err := s.db.WithContext(ctx).Find(&lines).Error; err != nil {
		return nil, err
	}

	linesByInvoice := make(map[int64][]recordstoredomain.InvoiceLine, len(invoices))
	for _, row := range lines {
		linesByInvoice[int64(row.InvoiceID)] = append(linesByInvoice[int64(row.InvoiceID)], recordstoredomain.InvoiceLine{
			LineCourseID: row.LineCourseID,
			UnitPrice:    row.UnitPrice,
			Quantity:     row.Quantity,
			Net:          row.Net,
			VAT:          row.VAT,
			Gross:        row.Gross,
		})
	}

	result := make([]recordstoredomain.InvoiceSnapshot, 0, len(invoices))
	for _, row := range invoices {
		result = append(result, recordstoredomain.InvoiceSnapshot{
			ID:      row.ID,
			OrderID: row.OrderID,
			Status:  recordstoredomain.InvoiceStatus(row.Status),
			VATRate: row.VATRate,
			Lines:   linesByInvoice[int64(row.ID)],
		})
	}
	return result, nil
}
