package dto

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validate is shared by every request DTO.
var Validate = validator.New()

func validationMessages(v any) map[string]string {
	errorMessages := map[string]string{}
	errs := Validate.Struct(v)
	if errs == nil {
		return errorMessages
	}
	validationErrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		errorMessages["_"] = errs.Error()
		return errorMessages
	}
	for _, err := range validationErrs {
		errorMessages[err.Field()] = fieldMessage(err)
	}
	return errorMessages
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}

// Details converts field messages into error details.
func Details(messages map[string]string) map[string]any {
	out := make(map[string]any, len(messages))
	for k, v := range messages {
		out[k] = v
	}
	return out
}
