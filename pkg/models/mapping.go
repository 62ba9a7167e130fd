package models

import "fmt"

// Canonical column names, in dataset order. These are also the snapshot
// table's column names and the default CSV export header.
const (
	ColClientID         = "nro_cli"
	ColMeterID          = "nro_med"
	ColCustomerName     = "usuario"
	ColAddress          = "domicilio"
	ColNormalized       = "normalizado"
	ColSignupDate       = "fecha_alta"
	ColInterventionDate = "fecha_intervencion"
	ColStatus           = "estado"
)

// CanonicalColumns returns the canonical column names in dataset order.
func CanonicalColumns() []string {
	return []string{
		ColClientID, ColMeterID, ColCustomerName, ColAddress,
		ColNormalized, ColSignupDate, ColInterventionDate, ColStatus,
	}
}

// sourceToCanonical renames the commercial system's export columns to the
// canonical set. Columns with no entry here are dropped on ingestion.
var sourceToCanonical = map[string]string{
	"NROCLI":              ColClientID,
	"NUMERO_MEDIDOR":      ColMeterID,
	"FULLNAME":            ColCustomerName,
	"DOMICILIO_COMERCIAL": ColAddress,
	"NORMALIZADO":         ColNormalized,
	"FECHA_ALTA":          ColSignupDate,
}

// canonicalToSource is the inverse of sourceToCanonical, built and validated
// at init so export can reproduce original-style headers.
var canonicalToSource = func() map[string]string {
	known := make(map[string]bool, 8)
	for _, c := range CanonicalColumns() {
		known[c] = true
	}
	inv := make(map[string]string, len(sourceToCanonical))
	for src, canonical := range sourceToCanonical {
		if !known[canonical] {
			panic(fmt.Sprintf("rename mapping targets unknown canonical column %q", canonical))
		}
		if prev, dup := inv[canonical]; dup {
			panic(fmt.Sprintf("rename mapping is not bijective: %q and %q both map to %q", prev, src, canonical))
		}
		inv[canonical] = src
	}
	return inv
}()

// CanonicalName resolves a source-native column name to its canonical name.
func CanonicalName(source string) (string, bool) {
	c, ok := sourceToCanonical[source]
	return c, ok
}

// SourceName resolves a canonical column name back to the source-native name.
// Columns the sources never carry (estado, fecha_intervencion) have no source
// name and keep their canonical one on export.
func SourceName(canonical string) (string, bool) {
	s, ok := canonicalToSource[canonical]
	return s, ok
}
