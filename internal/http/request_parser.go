// Package http provides the HTTP server and handler implementations.
//
// This file parses and validates mutation form bodies. Structural checks
// run through go-playground/validator tags before any domain validation,
// so malformed submissions never reach the service layer.

package http

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// transactionForm is the wire shape of a POST /transactions body.
// Amount stays a string here so the exact user input reaches the
// service layer's decimal parsing untouched.
type transactionForm struct {
	Type     string `form:"type" validate:"required,oneof=income expense"`
	Amount   string `form:"amount" validate:"required,max=32"`
	Category string `form:"category" validate:"required,max=64"`
	Date     string `form:"date" validate:"required,datetime=2006-01-02"`
	Note     string `form:"note" validate:"max=200"`
}

type budgetForm struct {
	Budget string `form:"budget" validate:"required,max=32"`
}

// parseTransactionForm reads and validates the create-transaction form.
// The returned builder is non-nil when the request should be rejected.
func parseTransactionForm(r *http.Request) (transactionForm, *HTMXResponseBuilder) {
	if err := r.ParseForm(); err != nil {
		return transactionForm{}, BadRequestError("Invalid request format")
	}

	form := transactionForm{
		Type:     sanitizeInput(r.Form.Get("type")),
		Amount:   sanitizeInput(r.Form.Get("amount")),
		Category: sanitizeInput(r.Form.Get("category")),
		Date:     sanitizeInput(r.Form.Get("date")),
		Note:     sanitizeInput(r.Form.Get("note")),
	}

	if err := validate.Struct(form); err != nil {
		return transactionForm{}, UnprocessableEntityError(validationMessage(err))
	}

	return form, nil
}

// parseBudgetForm reads and validates the budget settings form.
func parseBudgetForm(r *http.Request) (budgetForm, *HTMXResponseBuilder) {
	if err := r.ParseForm(); err != nil {
		return budgetForm{}, BadRequestError("Invalid request format")
	}

	form := budgetForm{Budget: sanitizeInput(r.Form.Get("budget"))}
	if err := validate.Struct(form); err != nil {
		return budgetForm{}, UnprocessableEntityError(validationMessage(err))
	}

	return form, nil
}

// validationMessage turns the first field error into a human-readable message.
func validationMessage(err error) string {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return "Invalid form data"
	}
	return formatValidationError(validationErrs[0])
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' is too long", fe.Field())
	case "datetime":
		return fmt.Sprintf("Field '%s' must be a date in YYYY-MM-DD format", fe.Field())
	default:
		return fmt.Sprintf("Field '%s' is invalid", fe.Field())
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}

// RequireGET is a convenience function for GET-only handlers.
func RequireGET(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodGet)
}
