package workflow

import (
	"errors"
	"fmt"

	"github.com/grovetrack/importflow/internal/models"
)

// ErrShipmentNotFound is returned when the shipment id does not exist.
// Kept distinct from InvalidTransitionError so the API can answer 404 vs 409.
var ErrShipmentNotFound = errors.New("shipment not found")

// InvalidTransitionError reports an operation attempted from the wrong state.
type InvalidTransitionError struct {
	ShipmentID string
	Actual     models.ShipmentStatus
	Expected   []models.ShipmentStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("shipment %s is in status %q, operation requires one of %v",
		e.ShipmentID, e.Actual, e.Expected)
}

// IsInvalidTransition reports whether err is an InvalidTransitionError.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}
