package service

import (
	"errors"
	"fmt"

	"github.com/bdist/aviacao-service/internal/model"
)

// ErrFlightNotFound is returned before any write when the requested flight
// does not exist.
var ErrFlightNotFound = errors.New("flight not found")

// SeatsExhaustedError reports that no seat of the requested class was left
// for one of the passengers.  The whole purchase has been rolled back when
// this error is returned.
type SeatsExhaustedError struct {
	FirstClass bool
}

func (e *SeatsExhaustedError) Error() string {
	return fmt.Sprintf("no %s seats left on this flight", model.ClassName(e.FirstClass))
}
