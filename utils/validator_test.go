package utils

import (
	"strings"
	"testing"
)

func TestIsValidTableName(t *testing.T) {
	valid := []string{"orders", "order_items", "Orders2", "_staging", "db$archive", "a1"}
	for _, name := range valid {
		if !IsValidTableName(name) {
			t.Errorf("Expected %q to be a valid table name", name)
		}
	}

	invalid := []string{
		"",
		"123",
		"order-items",
		"orders; DROP TABLE users",
		"analytics.orders",
		"`orders`",
		strings.Repeat("a", 65),
	}
	for _, name := range invalid {
		if IsValidTableName(name) {
			t.Errorf("Expected %q to be rejected as a table name", name)
		}
	}
}

func TestValidateStruct(t *testing.T) {
	type probe struct {
		Name string `validate:"required"`
	}

	if err := ValidateStruct(&probe{Name: "orders"}); err != nil {
		t.Errorf("Expected populated struct to validate, got %v", err)
	}
	if err := ValidateStruct(&probe{}); err == nil {
		t.Error("Expected missing required field to fail validation")
	}
}
