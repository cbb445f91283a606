// Package validator provides a thin wrapper around the go-playground/validator library,
// enabling declarative struct validation with standardized error formatting.
//
// Besides the built-in tags it registers "token_symbol", which accepts rollup
// token tickers such as "ETH", "USDC" or "wBTC".
package validator

import (
	"errors"
	"fmt"
	"regexp"

	gvalidator "github.com/go-playground/validator/v10"
)

// ErrValidationFailed is returned as the first error in a multi-error chain when validation fails.
var ErrValidationFailed = errors.New("struct validation failed")

// validator is a singleton instance of the go-playground validator,
// initialized automatically on package load.
var validator *gvalidator.Validate

// errStringFormat defines the template used to describe individual validation errors.
//
// Example: "'Symbol': value 'eth!' does not meet the requirements for the 'token_symbol' validation"
const errStringFormat = "'%s': value '%v' does not meet the requirements for the '%s' validation"

// tokenSymbolPattern matches rollup token tickers.
var tokenSymbolPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,12}$`)

func init() {
	validator = gvalidator.New(gvalidator.WithRequiredStructEnabled())

	// Registration only fails on an empty tag or a nil function.
	_ = validator.RegisterValidation("token_symbol", func(fl gvalidator.FieldLevel) bool {
		return tokenSymbolPattern.MatchString(fl.Field().String())
	})
}

// formatError transforms a raw validator error into a structured, human-readable multi-error chain.
//
// If the input is a set of validation errors, it returns a combined error with ErrValidationFailed as the root,
// followed by a formatted message for each field error. Otherwise, the original error is returned unchanged.
func formatError(err error) error {
	var validationErrors gvalidator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	errs := []error{ErrValidationFailed}
	for _, validationErr := range validationErrors {
		err := fmt.Errorf(errStringFormat,
			validationErr.Field(),
			validationErr.Value(),
			validationErr.Tag(),
		)

		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Validate checks if the given struct satisfies its validation tags.
//
// It returns nil if all fields pass validation. Otherwise, it returns a combined error that includes
// ErrValidationFailed and one formatted message for each field that failed validation.
func Validate(v any) error {
	if err := validator.Struct(v); err != nil {
		return formatError(err)
	}

	return nil
}
