// internal/domain/models.go
package domain

import "time"

// Order represents one logistics order for a medical device
type Order struct {
	ID             string      `json:"id" db:"id"`
	Type           OrderType   `json:"type" db:"order_type"`
	Status         OrderStatus `json:"status" db:"status"`
	DeviceType     DeviceType  `json:"device_type" db:"device_type"`
	PracticeName   string      `json:"practice_name" db:"practice_name"`
	ClinicName     string      `json:"clinic_name" db:"clinic_name"`
	CreatedDate    time.Time   `json:"created_date" db:"created_date"`
	DeliveryDate   *time.Time  `json:"delivery_date,omitempty" db:"delivery_date"`
	TrackingNumber *string     `json:"tracking_number,omitempty" db:"tracking_number"`
	Assignment     Assignment  `json:"is_assigned_to_patient" db:"is_assigned_to_patient"`
}

// IsUnassignedDelivery reports a delivered device not yet linked to a patient.
func (o Order) IsUnassignedDelivery() bool {
	return o.Status == StatusDelivered && o.Assignment == AssignmentUnassigned
}

// StockItem is an inventory snapshot for one device type
type StockItem struct {
	DeviceType DeviceType `json:"device_type" db:"device_type"`
	Quantity   int        `json:"quantity" db:"quantity"`
	MinLevel   int        `json:"min_level" db:"min_level"`
	MaxLevel   int        `json:"max_level" db:"max_level"`
}

// StockLevel is a StockItem evaluated for the stock management table
type StockLevel struct {
	StockItem
	FulfillmentPercent float64 `json:"fulfillment_percent"`
	Critical           bool    `json:"critical"`
	Status             string  `json:"status"`
}

// PracticeStats is one row of the practice & clinic ranking
type PracticeStats struct {
	PracticeName string `json:"practice_name"`
	ClinicName   string `json:"clinic_name"`
	OrderCount   int    `json:"order_count"`
	Rank         int    `json:"rank"`
}
