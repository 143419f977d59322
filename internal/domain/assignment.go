package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Assignment tracks whether a delivered device has been linked to a patient.
// It is only meaningful for delivered orders.
type Assignment int

const (
	AssignmentNotApplicable Assignment = iota
	AssignmentAssigned
	AssignmentUnassigned
)

func (a Assignment) String() string {
	switch a {
	case AssignmentAssigned:
		return "assigned"
	case AssignmentUnassigned:
		return "unassigned"
	default:
		return "not_applicable"
	}
}

// AssignmentFromBool maps the stored boolean onto an Assignment.
func AssignmentFromBool(assigned bool) Assignment {
	if assigned {
		return AssignmentAssigned
	}
	return AssignmentUnassigned
}

// MarshalJSON encodes the assignment as null, true or false.
func (a Assignment) MarshalJSON() ([]byte, error) {
	switch a {
	case AssignmentAssigned:
		return []byte("true"), nil
	case AssignmentUnassigned:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, true or false.
func (a *Assignment) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode assignment: %w", err)
	}
	if v == nil {
		*a = AssignmentNotApplicable
		return nil
	}
	*a = AssignmentFromBool(*v)
	return nil
}

// Scan implements sql.Scanner for a nullable boolean column.
func (a *Assignment) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = AssignmentNotApplicable
	case bool:
		*a = AssignmentFromBool(v)
	case []byte:
		return a.scanText(string(v))
	case string:
		return a.scanText(v)
	default:
		return fmt.Errorf("unsupported assignment type %T", src)
	}
	return nil
}

func (a *Assignment) scanText(v string) error {
	switch v {
	case "t", "true", "TRUE", "1":
		*a = AssignmentAssigned
	case "f", "false", "FALSE", "0":
		*a = AssignmentUnassigned
	default:
		return fmt.Errorf("invalid assignment value %q", v)
	}
	return nil
}

// Value implements driver.Valuer.
func (a Assignment) Value() (driver.Value, error) {
	switch a {
	case AssignmentAssigned:
		return true, nil
	case AssignmentUnassigned:
		return false, nil
	default:
		return nil, nil
	}
}
