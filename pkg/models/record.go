package models

import (
	"fmt"
	"time"
)

// DateFormat is the canonical layout for every date stored in the dataset.
const DateFormat = "2006-01-02"

// Record represents one disconnection case. Field names follow the canonical
// column set; JSON tags match the column names used by the snapshot table and
// the grid API so a marshaled record is a canonical row.
type Record struct {
	ClientID         int64  `json:"nro_cli"`
	MeterID          int64  `json:"nro_med"`
	CustomerName     string `json:"usuario"`
	Address          string `json:"domicilio"`
	Normalized       bool   `json:"normalizado"`
	SignupDate       string `json:"fecha_alta"`
	InterventionDate string `json:"fecha_intervencion"`
	Status           Status `json:"estado"`
}

// Validate checks that every field is present and of canonical form.
// A record that fails validation must not enter the resident dataset.
func (r *Record) Validate() error {
	if r.ClientID <= 0 {
		return fmt.Errorf("client id must be positive, got %d", r.ClientID)
	}
	if r.MeterID == 0 {
		return fmt.Errorf("meter id is required for client %d", r.ClientID)
	}
	if r.CustomerName == "" {
		return fmt.Errorf("customer name is required for client %d", r.ClientID)
	}
	if r.Address == "" {
		return fmt.Errorf("address is required for client %d", r.ClientID)
	}
	if err := validateDate(r.SignupDate); err != nil {
		return fmt.Errorf("signup date for client %d: %w", r.ClientID, err)
	}
	if err := validateDate(r.InterventionDate); err != nil {
		return fmt.Errorf("intervention date for client %d: %w", r.ClientID, err)
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid status %q for client %d", r.Status, r.ClientID)
	}
	return nil
}

func validateDate(s string) error {
	if s == "" {
		return fmt.Errorf("date is required")
	}
	parsed, err := time.Parse(DateFormat, s)
	if err != nil {
		return fmt.Errorf("date %q is not in canonical YYYY-MM-DD form", s)
	}
	// time.Parse is strict about calendar validity, but round-trip anyway so
	// a value like "2011-1-3" cannot sneak through as canonical.
	if parsed.Format(DateFormat) != s {
		return fmt.Errorf("date %q is not in canonical YYYY-MM-DD form", s)
	}
	return nil
}
