package domain

import "strings"

// OrderType categorizes the intent of an order.
type OrderType string

const (
	OrderTypeNew         OrderType = "New"
	OrderTypeReplacement OrderType = "Replacement"
	OrderTypeAdditional  OrderType = "Additional"
	OrderTypeReturn      OrderType = "Return"
)

// OrderStatus is the forward-only lifecycle of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusCreated   OrderStatus = "Created"
	StatusInTransit OrderStatus = "In Transit"
	StatusDelivered OrderStatus = "Delivered"
)

// DeviceType is one of the medical device categories shipped to practices.
type DeviceType string

const (
	DeviceHeartMonitor DeviceType = "Heart Monitor"
	DeviceGlucometer   DeviceType = "Glucometer"
	DeviceBPCuff       DeviceType = "BP Cuff"
	DevicePulseOx      DeviceType = "Pulse Oximeter"
	DeviceSmartScale   DeviceType = "Smart Scale"
)

// DeviceAll disables device filtering.
const DeviceAll = "All"

// AllOrderTypes lists order types in canonical order.
var AllOrderTypes = []OrderType{OrderTypeNew, OrderTypeReplacement, OrderTypeAdditional, OrderTypeReturn}

// AllOrderStatuses lists statuses in lifecycle order.
var AllOrderStatuses = []OrderStatus{StatusPending, StatusCreated, StatusInTransit, StatusDelivered}

// AllDeviceTypes lists the supported device categories.
var AllDeviceTypes = []DeviceType{DeviceHeartMonitor, DeviceGlucometer, DeviceBPCuff, DevicePulseOx, DeviceSmartScale}

var orderTypeCodes = map[string]OrderType{
	"new":         OrderTypeNew,
	"replacement": OrderTypeReplacement,
	"additional":  OrderTypeAdditional,
	"return":      OrderTypeReturn,
}

var orderStatusCodes = map[string]OrderStatus{
	"pending":    StatusPending,
	"created":    StatusCreated,
	"in transit": StatusInTransit,
	"in_transit": StatusInTransit,
	"delivered":  StatusDelivered,
}

var deviceTypeCodes = map[string]DeviceType{
	"heart monitor":  DeviceHeartMonitor,
	"glucometer":     DeviceGlucometer,
	"bp cuff":        DeviceBPCuff,
	"pulse oximeter": DevicePulseOx,
	"smart scale":    DeviceSmartScale,
}

// ParseOrderType returns the order type for a given label (case-insensitive).
func ParseOrderType(label string) (OrderType, bool) {
	t, ok := orderTypeCodes[strings.ToLower(strings.TrimSpace(label))]

	return t, ok
}

// ParseOrderStatus returns the status for a given label (case-insensitive).
func ParseOrderStatus(label string) (OrderStatus, bool) {
	s, ok := orderStatusCodes[strings.ToLower(strings.TrimSpace(label))]

	return s, ok
}

// ParseDeviceType returns the device type for a given label (case-insensitive).
func ParseDeviceType(label string) (DeviceType, bool) {
	d, ok := deviceTypeCodes[strings.ToLower(strings.TrimSpace(label))]

	return d, ok
}

// IsOutbound reports whether the type belongs to the outbound view.
func (t OrderType) IsOutbound() bool {
	switch t {
	case OrderTypeNew, OrderTypeReplacement, OrderTypeAdditional:
		return true
	}
	return false
}
