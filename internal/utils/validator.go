// internal/utils/validator.go
package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var accountNamePattern = regexp.MustCompile(`^[a-z1-5.]{1,12}$`)

func init() {
	validate = validator.New()
	validate.RegisterValidation("chain_account", validateChainAccount)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// Chain account names are 1-12 characters from [a-z1-5.] and may not begin
// or end with a dot.
func validateChainAccount(fl validator.FieldLevel) bool {
	name := fl.Field().String()

	if !accountNamePattern.MatchString(name) {
		return false
	}
	if name[0] == '.' || name[len(name)-1] == '.' {
		return false
	}
	return true
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   e.Field(),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "chain_account":
		return e.Field() + " must be a valid chain account name"
	default:
		return e.Field() + " is invalid"
	}
}
