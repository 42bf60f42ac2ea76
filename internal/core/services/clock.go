package services

import (
	"time"

	"github.com/finkit/currency_rates_app/internal/core/domain"
	portssvc "github.com/finkit/currency_rates_app/internal/core/ports/services"
)

// realClock is the production Clock: today's calendar date in UTC.
type realClock struct{}

func (realClock) Today() time.Time {
	return domain.DateOnly(time.Now().UTC())
}

// NewRealClock returns the wall clock used outside of tests.
func NewRealClock() portssvc.Clock {
	return realClock{}
}
