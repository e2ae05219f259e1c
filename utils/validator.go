package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct validates a struct against its validate tags.
func ValidateStruct(obj interface{}) error {
	return validate.Struct(obj)
}

// IsValidTableName reports whether name works as an unquoted MySQL table or
// schema identifier. Permission records store names verbatim, so anything
// that could never appear in a scanned statement is rejected up front.
func IsValidTableName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}

	// MySQL forbids unquoted identifiers made of digits alone
	digitsOnly := true
	for _, char := range name {
		switch {
		case char >= '0' && char <= '9':
		case (char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			char == '_' || char == '$':
			digitsOnly = false
		default:
			return false
		}
	}
	return !digitsOnly
}
