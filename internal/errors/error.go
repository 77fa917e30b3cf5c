package errors

import (
	"errors"
)

var (
	ErrDuplicateId            = errors.New("medicine id already exist")
	ErrMedicineNotFound       = errors.New("medicine not found")
	ErrInsufficientStock      = errors.New("not enough stock")
	ErrInvalidSelection       = errors.New("nothing selected")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrInvalidMedicine        = errors.New("invalid medicine")
	ErrPersistenceUnavailable = errors.New("catalog file unavailable")
	ErrCatalogNotFound        = errors.New("catalog file not found")
	ErrBackupSourceMissing    = errors.New("nothing to back up")
	ErrInvalidBackupKind      = errors.New("invalid backup kind")
	ErrAccessDenied           = errors.New("incorrect password")
)
