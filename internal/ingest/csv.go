// Package ingest reads and writes order exports as CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

// Columns is the CSV header written by WriteOrders and required by ReadOrders.
var Columns = []string{
	"id", "type", "status", "device_type", "practice_name", "clinic_name",
	"created_date", "delivery_date", "tracking_number", "is_assigned_to_patient",
}

var requiredColumns = []string{"id", "type", "status", "device_type", "practice_name", "clinic_name", "created_date"}

// ReadOrders parses an orders CSV. Columns are matched by header name
// (case-insensitive) so extra or reordered columns are accepted.
func ReadOrders(r io.Reader) ([]domain.Order, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var orders []domain.Order
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		field := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		o, err := parseOrder(field)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		orders = append(orders, o)
	}

	return orders, nil
}

func parseOrder(field func(string) string) (domain.Order, error) {
	o := domain.Order{
		ID:           field("id"),
		PracticeName: field("practice_name"),
		ClinicName:   field("clinic_name"),
	}
	if o.ID == "" {
		return o, errors.New("empty id")
	}

	var ok bool
	if o.Type, ok = domain.ParseOrderType(field("type")); !ok {
		return o, fmt.Errorf("unknown order type %q", field("type"))
	}
	if o.Status, ok = domain.ParseOrderStatus(field("status")); !ok {
		return o, fmt.Errorf("unknown status %q", field("status"))
	}
	if o.DeviceType, ok = domain.ParseDeviceType(field("device_type")); !ok {
		return o, fmt.Errorf("unknown device type %q", field("device_type"))
	}

	created, err := parseTime(field("created_date"))
	if err != nil {
		return o, fmt.Errorf("created_date: %w", err)
	}
	o.CreatedDate = created

	if raw := field("delivery_date"); raw != "" {
		delivered, err := parseTime(raw)
		if err != nil {
			return o, fmt.Errorf("delivery_date: %w", err)
		}
		o.DeliveryDate = &delivered
	}

	if tracking := field("tracking_number"); tracking != "" {
		o.TrackingNumber = &tracking
	}

	if raw := field("is_assigned_to_patient"); raw != "" {
		if err := o.Assignment.Scan(strings.ToLower(raw)); err != nil {
			return o, err
		}
	}

	return o, nil
}

// parseTime accepts RFC 3339 timestamps or bare ISO dates (midnight UTC).
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(domain.ISODate, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}
	return t, nil
}

// WriteOrders writes orders with the Columns header.
func WriteOrders(w io.Writer, orders []domain.Order) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, o := range orders {
		record := []string{
			o.ID,
			string(o.Type),
			string(o.Status),
			string(o.DeviceType),
			o.PracticeName,
			o.ClinicName,
			o.CreatedDate.UTC().Format(time.RFC3339),
			"",
			"",
			"",
		}
		if o.DeliveryDate != nil {
			record[7] = o.DeliveryDate.UTC().Format(time.RFC3339)
		}
		if o.TrackingNumber != nil {
			record[8] = *o.TrackingNumber
		}
		switch o.Assignment {
		case domain.AssignmentAssigned:
			record[9] = "true"
		case domain.AssignmentUnassigned:
			record[9] = "false"
		}

		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
