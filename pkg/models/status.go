package models

// Status is the workflow state of a disconnection record. The stored values
// are the ones the field teams use, so they survive export and re-import
// unchanged.
type Status string

const (
	StatusLoaded        Status = "cargado"
	StatusPending       Status = "pendiente"
	StatusReview        Status = "revisar"
	StatusOtherDistrict Status = "otro distrito"
)

// AllStatuses lists every valid status in display order.
var AllStatuses = []Status{StatusLoaded, StatusPending, StatusReview, StatusOtherDistrict}

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusLoaded, StatusPending, StatusReview, StatusOtherDistrict:
		return true
	}
	return false
}

// ParseStatus maps a stored status string to its Status value. Unrecognized
// values map to StatusPending with ok=false; callers that require strictness
// check ok, ingestion paths take the pending default.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	if s.Valid() {
		return s, true
	}
	return StatusPending, false
}
