package adapters

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/epe-tools/desvinculados-engine/pkg/models"
	"github.com/epe-tools/desvinculados-engine/pkg/normalize"
)

// renameColumns maps a source-named raw row onto canonical column names.
// Source columns are renamed through the declared mapping; columns already
// carrying a canonical name pass through, so the engine's own exports
// re-import cleanly. Everything else is dropped.
func renameColumns(raw map[string]string) map[string]string {
	canonical := make(map[string]string, len(raw))
	known := make(map[string]bool, 8)
	for _, c := range models.CanonicalColumns() {
		known[c] = true
	}
	for name, value := range raw {
		if target, ok := models.CanonicalName(strings.TrimSpace(name)); ok {
			canonical[target] = value
		} else if n := strings.ToLower(strings.TrimSpace(name)); known[n] {
			canonical[n] = value
		}
	}
	return canonical
}

// buildRecord coerces a canonically-named raw row into a validated Record.
// datePolicy applies to explicit date values; absent dates take their
// defaults (intervention date defaults to today). A non-nil error means the
// row must be dropped from the batch.
func buildRecord(raw map[string]string, datePolicy normalize.DatePolicy, now time.Time) (models.Record, error) {
	var rec models.Record

	clientID, err := parseID(raw[models.ColClientID])
	if err != nil {
		return rec, fmt.Errorf("client id: %w", err)
	}
	if clientID <= 0 {
		return rec, fmt.Errorf("client id must be positive, got %d", clientID)
	}
	meterID, err := parseID(raw[models.ColMeterID])
	if err != nil {
		return rec, fmt.Errorf("meter id for client %d: %w", clientID, err)
	}

	signup, err := normalize.Date(raw[models.ColSignupDate], datePolicy, now)
	if err != nil {
		return rec, fmt.Errorf("signup date for client %d: %w", clientID, err)
	}
	intervention, err := normalize.Date(raw[models.ColInterventionDate], datePolicy, now)
	if err != nil {
		return rec, fmt.Errorf("intervention date for client %d: %w", clientID, err)
	}

	status, _ := models.ParseStatus(strings.TrimSpace(raw[models.ColStatus]))

	rec = models.Record{
		ClientID:         clientID,
		MeterID:          meterID,
		CustomerName:     strings.TrimSpace(raw[models.ColCustomerName]),
		Address:          strings.TrimSpace(raw[models.ColAddress]),
		Normalized:       normalize.Bool(raw[models.ColNormalized]),
		SignupDate:       signup,
		InterventionDate: intervention,
		Status:           status,
	}
	if err := rec.Validate(); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseID(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("value is missing")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("value %q is not numeric", s)
	}
	return id, nil
}
