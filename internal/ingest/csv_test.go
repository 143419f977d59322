package ingest

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/logistics-dash/backend-go/internal/domain"
)

func TestReadOrders(t *testing.T) {
	input := strings.Join([]string{
		"ID,Status,Type,Device_Type,Practice_Name,Clinic_Name,Created_Date,Delivery_Date,Tracking_Number,Is_Assigned_To_Patient,notes",
		"ORD-1,Delivered,New,Glucometer,Oak Ridge Medical,East Annex,2025-02-01T09:30:00Z,2025-02-04T12:00:00Z,TRK123,false,fragile",
		"ORD-2,pending,return,bp cuff,Lakeside Cardiology,West Plaza,2025-02-03,,,,",
	}, "\n")

	orders, err := ReadOrders(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, domain.StatusDelivered, first.Status)
	assert.Equal(t, domain.OrderTypeNew, first.Type)
	assert.Equal(t, domain.AssignmentUnassigned, first.Assignment)
	require.NotNil(t, first.DeliveryDate)
	require.NotNil(t, first.TrackingNumber)
	assert.Equal(t, "TRK123", *first.TrackingNumber)
	assert.True(t, first.IsUnassignedDelivery())

	second := orders[1]
	assert.Equal(t, domain.OrderTypeReturn, second.Type)
	assert.Equal(t, domain.DeviceBPCuff, second.DeviceType)
	assert.Equal(t, time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC), second.CreatedDate)
	assert.Nil(t, second.DeliveryDate)
	assert.Nil(t, second.TrackingNumber)
	assert.Equal(t, domain.AssignmentNotApplicable, second.Assignment)
}

func TestReadOrders_Errors(t *testing.T) {
	_, err := ReadOrders(strings.NewReader("id,type\nORD-1,New\n"))
	assert.ErrorContains(t, err, "missing required column")

	header := strings.Join(Columns, ",")
	_, err = ReadOrders(strings.NewReader(header + "\nORD-1,New,Pending,Stethoscope,P,C,2025-01-01,,,\n"))
	assert.ErrorContains(t, err, "line 2")
	assert.ErrorContains(t, err, "unknown device type")
}

func TestWriteThenReadOrders(t *testing.T) {
	delivered := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	tracking := "TRKABC"
	orders := []domain.Order{
		{
			ID: "ORD-1000", Type: domain.OrderTypeReplacement, Status: domain.StatusDelivered,
			DeviceType: domain.DeviceSmartScale, PracticeName: "Green Valley Health", ClinicName: "North Wing",
			CreatedDate: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), DeliveryDate: &delivered,
			TrackingNumber: &tracking, Assignment: domain.AssignmentAssigned,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOrders(&buf, orders))
	assert.True(t, strings.HasPrefix(buf.String(), strings.Join(Columns, ",")+"\n"))

	read, err := ReadOrders(&buf)
	require.NoError(t, err)
	assert.Equal(t, orders, read)
}
