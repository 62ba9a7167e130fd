package normalize

import (
	"strings"

	"github.com/epe-tools/desvinculados-engine/pkg/models"
)

// StatusFromSymbol maps the short codes the field crews pencil into the
// spreadsheet's first column onto workflow statuses. The mapping is total:
// every input, including empty cells and codes nobody remembers inventing,
// yields one of the enumerated statuses.
func StatusFromSymbol(raw string) models.Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "+":
		return models.StatusLoaded
	case "?":
		return models.StatusReview
	case "x", "-":
		return models.StatusOtherDistrict
	default:
		return models.StatusPending
	}
}
