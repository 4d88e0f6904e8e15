// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate

	productPrefixPattern = regexp.MustCompile(`^[A-Za-z]{1,4}$`)
	productNoPattern     = regexp.MustCompile(`^[A-Z]{1,4}[0-9]{4}$`)
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("product_prefix", validateProductPrefix)
	validate.RegisterValidation("product_no", validateProductNo)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateProductPrefix(fl validator.FieldLevel) bool {
	return productPrefixPattern.MatchString(fl.Field().String())
}

func validateProductNo(fl validator.FieldLevel) bool {
	return IsProductNo(fl.Field().String())
}

// IsProductNo reports whether s has the shape of a generated product number.
func IsProductNo(s string) bool {
	return productNoPattern.MatchString(s)
}

// Validation tags for common fields
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
				Field:   strings.ToLower(e.Field()),
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
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "product_prefix":
		return "Prefix must be 1-4 letters"
	case "product_no":
		return "Product number must be up to 4 uppercase letters followed by 4 digits"
	default:
		return e.Field() + " is invalid"
	}
}
