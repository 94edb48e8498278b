package service

import "fmt"

// ValidationError reports an unplayable request: bad stake, bad odds, bad
// difficulty, or a dice count the chosen tier can never win with. The wallet
// is never touched when one of these is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// PolicyError reports a request blocked by platform policy rather than by its
// own shape: game disabled, maintenance, daily quota, hourly risk caps.
type PolicyError struct {
	Policy  string
	Message string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("blocked by policy %s: %s", e.Policy, e.Message)
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// InsufficientBalanceError reports a wallet too small for the requested stake.
type InsufficientBalanceError struct {
	Available float64
	Required  float64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %.2f, need %.2f", e.Available, e.Required)
}
