package apperrors

import "errors"

var (
	ErrFormatMismatch  = errors.New("file does not match the expected format")
	ErrTableMissing    = errors.New("snapshot table not found")
	ErrUnsupportedKind = errors.New("unsupported source kind")
	ErrInvalidDate     = errors.New("date could not be normalized")
	ErrNoDataset       = errors.New("no dataset loaded")
)
