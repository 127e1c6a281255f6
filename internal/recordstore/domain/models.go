package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/tomasz-trela/catermetrics/internal/money"
)

// The engine consumes read-only snapshots of externally owned entities.
// Optional fields are pointers; a nil pointer is "no value", never zero.

// LineCourse is one course sold inside an order item, with the price the
// customer actually paid.
type LineCourse struct {
	CourseID snowflake.ID `json:"course_id"`
	Name     string       `json:"name"`
	Price    money.Money  `json:"price"`
}

// OrderItem groups the courses scheduled for one delivery slot.
type OrderItem struct {
	ID                 snowflake.ID `json:"id"`
	ExpectedDeliveryAt time.Time    `json:"expected_delivery_at"`
	Courses            []LineCourse `json:"courses"`
}

// OrderSnapshot is one placed order with its embedded items and the
// totals recorded at purchase time.
type OrderSnapshot struct {
	ID         snowflake.ID    `json:"id"`
	CustomerID snowflake.ID    `json:"customer_id"`
	PlacedAt   time.Time       `json:"placed_at"`
	VATRate    decimal.Decimal `json:"vat_rate"`
	NetTotal   money.Money     `json:"net_total"`
	VATTotal   money.Money     `json:"vat_total"`
	GrossTotal money.Money     `json:"gross_total"`
	Items      []OrderItem     `json:"items"`
}

// InvoiceStatus mirrors the billing lifecycle recorded upstream.
type InvoiceStatus string

const (
	InvoiceStatusIssued    InvoiceStatus = "issued"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// InvoiceLine is one billed position referencing the order's line course.
type InvoiceLine struct {
	LineCourseID snowflake.ID `json:"line_course_id"`
	UnitPrice    money.Money  `json:"unit_price"`
	Quantity     int          `json:"quantity"`
	Net          money.Money  `json:"net"`
	VAT          money.Money  `json:"vat"`
	Gross        money.Money  `json:"gross"`
}

// InvoiceSnapshot is the invoice issued for a single order.
type InvoiceSnapshot struct {
	ID      snowflake.ID    `json:"id"`
	OrderID snowflake.ID    `json:"order_id"`
	Status  InvoiceStatus   `json:"status"`
	VATRate decimal.Decimal `json:"vat_rate"`
	Lines   []InvoiceLine   `json:"lines"`
}

// FulfillmentStatus is the kitchen-side lifecycle of one order item.
type FulfillmentStatus string

const (
	FulfillmentStatusPending       FulfillmentStatus = "pending"
	FulfillmentStatusInPreparation FulfillmentStatus = "in_preparation"
	FulfillmentStatusCompleted     FulfillmentStatus = "completed"
	FulfillmentStatusCancelled     FulfillmentStatus = "cancelled"
)

// FulfillmentRecord ties an order item to the cook who prepared it.
// Duration is defined only when both timestamps are present.
type FulfillmentRecord struct {
	ID          snowflake.ID      `json:"id"`
	OrderItemID snowflake.ID      `json:"order_item_id"`
	CookID      snowflake.ID      `json:"cook_id"`
	BeganAt     *time.Time        `json:"began_at,omitempty"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Status      FulfillmentStatus `json:"status"`
}

// ComplaintStatus is the complaint resolution lifecycle.
type ComplaintStatus string

const (
	ComplaintStatusSubmitted        ComplaintStatus = "submitted"
	ComplaintStatusUnderReview      ComplaintStatus = "under_review"
	ComplaintStatusResolvedPositive ComplaintStatus = "resolved_positive"
	ComplaintStatusResolvedNegative ComplaintStatus = "resolved_negative"
)

// ComplaintRecord references the order item and the specific course
// the customer complained about.
type ComplaintRecord struct {
	ID           snowflake.ID    `json:"id"`
	OrderItemID  snowflake.ID    `json:"order_item_id"`
	CourseID     snowflake.ID    `json:"course_id"`
	Status       ComplaintStatus `json:"status"`
	RefundAmount *money.Money    `json:"refund_amount,omitempty"`
	ResolvedAt   *time.Time      `json:"resolved_at,omitempty"`
}

// OpinionRecord is a 1-5 course rating; upstream guarantees at most one
// per (course, customer) pair.
type OpinionRecord struct {
	CourseID   snowflake.ID `json:"course_id"`
	CustomerID snowflake.ID `json:"customer_id"`
	Rating     int          `json:"rating"`
}

// CourseRef is the catalog entry an order line points at.
type CourseRef struct {
	ID    snowflake.ID `json:"id"`
	Name  string       `json:"name"`
	Price money.Money  `json:"price"`
}

// Role is the coarse user role recorded upstream.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleCook     Role = "cook"
	RoleCourier  Role = "courier"
)

// UserRef identifies a user (customer, cook or courier) for report
// annotation.
type UserRef struct {
	ID      snowflake.ID `json:"id"`
	Name    string       `json:"name"`
	Surname string       `json:"surname"`
	Role    Role         `json:"role"`
}

// DeliveryStatus is the courier-side lifecycle of one order item.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusEnRoute   DeliveryStatus = "en_route"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// DeliveryRecord ties an order item to the courier who carried it out.
type DeliveryRecord struct {
	ID          snowflake.ID   `json:"id"`
	OrderItemID snowflake.ID   `json:"order_item_id"`
	CourierID   snowflake.ID   `json:"courier_id"`
	BeganAt     *time.Time     `json:"began_at,omitempty"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
	Status      DeliveryStatus `json:"status"`
}

// Snapshots is everything one engine run reads, loaded once up front.
type Snapshots struct {
	Orders       []OrderSnapshot
	Invoices     []InvoiceSnapshot
	Fulfillments []FulfillmentRecord
	Complaints   []ComplaintRecord
	Opinions     []OpinionRecord
	Courses      []CourseRef
	Users        []UserRef
	Deliveries   []DeliveryRecord
}

// UsersByRole filters the user set by role.
func (s Snapshots) UsersByRole(role Role) []UserRef {
	var out []UserRef
	for _, u := range s.Users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out
}
