// Package mvalidate wraps go-playground/validator/v10 as the one place that
// reads the `validate:"..."` struct tags on mmodel's input types, grounded on
// the retrieval pack's internal/httpserver/validate.go (same package-level
// validator instance, same ValidationErrors-to-field-messages shape),
// translated from that package's HTTP error envelope to a single
// apperrors.Error so CreateUser/CreateOrder can return it unchanged.
package mvalidate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/coreflux/idorder/common/apperrors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` struct tags and returns a
// KindInvalidInput apperrors.Error naming every failing field, or nil.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperrors.NewInvalidInput(err.Error())
	}

	messages := make([]string, 0, len(ve))
	for _, fe := range ve {
		messages = append(messages, fieldErrorMessage(fe))
	}

	return apperrors.NewInvalidInput(strings.Join(messages, "; "))
}

func fieldErrorMessage(fe validator.FieldError) string {
	return fmt.Sprintf("%s failed %q validation", fe.Field(), fe.Tag())
}
