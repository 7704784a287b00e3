package cellar

import "errors"

var (
	ErrUnitNotFound    = errors.New("storage unit not found")
	ErrWineNotFound    = errors.New("wine not found")
	ErrBottleNotFound  = errors.New("bottle not found")
	ErrNotStored       = errors.New("bottle is not stored")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrGeometryConflict is returned when a unit change would leave stored
	// bottles outside the new bounds.
	ErrGeometryConflict = errors.New("stored bottles fall outside the new geometry")
)
