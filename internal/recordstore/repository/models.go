package repository

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"

	"github.com/tomasz-trela/catermetrics/internal/money"
)

// Row models mirror the upstream catering schema. The engine only ever
// SELECTs from these tables.

type userRow struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	Name    string       `gorm:"type:text;not null"`
	Surname string       `gorm:"type:text;not null"`
	Role    string       `gorm:"type:text;not null;index"`
}

func (userRow) TableName() string { return "users" }

type courseRow struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	Name  string       `gorm:"type:text;not null"`
	Price money.Money  `gorm:"type:text;not null"`
}

func (courseRow) TableName() string { return "courses" }

type orderRow struct {
	ID         snowflake.ID    `gorm:"primaryKey"`
	CustomerID snowflake.ID    `gorm:"not null;index"`
	PlacedAt   time.Time       `gorm:"not null"`
	VATRate    decimal.Decimal `gorm:"type:text;not null;column:vat_rate"`
	NetTotal   money.Money     `gorm:"type:text;not null"`
	VATTotal   money.Money     `gorm:"type:text;not null;column:vat_total"`
	GrossTotal money.Money     `gorm:"type:text;not null"`
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID                 snowflake.ID `gorm:"primaryKey"`
	OrderID            snowflake.ID `gorm:"not null;index"`
	ExpectedDeliveryAt time.Time    `gorm:"not null"`
}

func (orderItemRow) TableName() string { return "order_items" }

type orderItemCourseRow struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrderItemID snowflake.ID `gorm:"not null;index"`
	CourseID    snowflake.ID `gorm:"not null;index"`
	Name        string       `gorm:"type:text;not null"`
	Price       money.Money  `gorm:"type:text;not null"`
}

func (orderItemCourseRow) TableName() string { return "order_item_courses" }

type invoiceRow struct {
	ID      snowflake.ID    `gorm:"primaryKey"`
	OrderID snowflake.ID    `gorm:"not null;index"`
	Status  string          `gorm:"type:text;not null"`
	VATRate decimal.Decimal `gorm:"type:text;not null;column:vat_rate"`
}

func (invoiceRow) TableName() string { return "invoices" }

type invoiceLineRow struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	InvoiceID    snowflake.ID `gorm:"not null;index"`
	LineCourseID snowflake.ID `gorm:"not null"`
	UnitPrice    money.Money  `gorm:"type:text;not null"`
	Quantity     int          `gorm:"not null"`
	Net          money.Money  `gorm:"type:text;not null"`
	VAT          money.Money  `gorm:"type:text;not null;column:vat"`
	Gross        money.Money  `gorm:"type:text;not null"`
}

func (invoiceLineRow) TableName() string { return "invoice_lines" }

type fulfillmentRow struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrderItemID snowflake.ID `gorm:"not null;index"`
	CookID      snowflake.ID `gorm:"not null;index"`
	BeganAt     *time.Time
	CompletedAt *time.Time
	Status      string `gorm:"type:text;not null"`
}

func (fulfillmentRow) TableName() string { return "fulfillments" }

type complaintRow struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	OrderItemID  snowflake.ID `gorm:"not null;index"`
	CourseID     snowflake.ID `gorm:"not null;index"`
	Status       string       `gorm:"type:text;not null"`
	RefundAmount *money.Money `gorm:"type:text"`
	ResolvedAt   *time.Time
}

func (complaintRow) TableName() string { return "complaints" }

type opinionRow struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	CourseID   snowflake.ID `gorm:"not null;index"`
	CustomerID snowflake.ID `gorm:"not null;index"`
	Rating     int          `gorm:"not null"`
}

func (opinionRow) TableName() string { return "opinions" }

type deliveryRow struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrderItemID snowflake.ID `gorm:"not null;index"`
	CourierID   snowflake.ID `gorm:"not null;index"`
	BeganAt     *time.Time
	DeliveredAt *time.Time
	Status      string `gorm:"type:text;not null"`
}

func (deliveryRow) TableName() string { return "deliveries" }
