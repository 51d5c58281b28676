// Package validation provides the constructor-time checks shared by gatrack
// packages. Every failure is a *errors.ValidationError so callers can match
// it with errors.Is(err, errors.ErrInvalidConfiguration).
package validation
