package validation_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"dynamicapp/internal/models"
	"dynamicapp/internal/validation"
)

func validEntity() *models.DynamicEntity {
	e := models.NewDynamicEntity()
	e.Name = "Widget"
	e.Description = "A small widget"
	e.Category = "Tools"
	e.Price = decimal.RequireFromString("9.99")
	e.Quantity = 5
	return e
}

func TestEntity_Valid(t *testing.T) {
	v := validation.New()
	assert.Nil(t, v.Entity(validEntity()))
}

func TestEntity_RequiredFields(t *testing.T) {
	v := validation.New()

	errs := v.Entity(&models.DynamicEntity{})

	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Category is required", errs["category"])
	assert.Equal(t, "Price is required", errs["price"])
	assert.NotContains(t, errs, "description")
	assert.NotContains(t, errs, "quantity")
}

func TestEntity_BlankStringsAreRejected(t *testing.T) {
	v := validation.New()
	e := validEntity()
	e.Name = "   "
	e.Category = "\t"

	errs := v.Entity(e)

	assert.Equal(t, "Name is required", errs["name"])
	assert.Equal(t, "Category is required", errs["category"])
}

func TestEntity_StringLengths(t *testing.T) {
	v := validation.New()
	e := validEntity()
	e.Name = strings.Repeat("n", 101)
	e.Description = strings.Repeat("d", 501)
	e.Category = strings.Repeat("c", 51)

	errs := v.Entity(e)

	assert.Equal(t, "Name cannot exceed 100 characters", errs["name"])
	assert.Equal(t, "Description cannot exceed 500 characters", errs["description"])
	assert.Equal(t, "Category cannot exceed 50 characters", errs["category"])

	e = validEntity()
	e.Name = strings.Repeat("é", 100)
	e.Category = strings.Repeat("c", 50)
	e.Description = ""
	assert.Nil(t, v.Entity(e))
}

func TestEntity_PriceRange(t *testing.T) {
	v := validation.New()

	tests := []struct {
		price string
		valid bool
	}{
		{"0.01", true},
		{"100000", true},
		{"1200.00", true},
		{"0.001", false},
		{"100000.01", false},
		{"-5", false},
		{"0.0099999999999999999", false},
		{"100000.0000000000001", false},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			e := validEntity()
			e.Price = decimal.RequireFromString(tt.price)
			errs := v.Entity(e)
			if tt.valid {
				assert.Nil(t, errs)
			} else {
				assert.Equal(t, "Price must be between 0.01 and 100,000", errs["price"])
			}
		})
	}
}

func TestEntity_QuantityRange(t *testing.T) {
	v := validation.New()

	for _, q := range []int{0, 10000} {
		e := validEntity()
		e.Quantity = q
		assert.Nil(t, v.Entity(e), "quantity %d", q)
	}
	for _, q := range []int{-1, 10001} {
		e := validEntity()
		e.Quantity = q
		assert.Equal(t, "Quantity must be between 0 and 10,000", v.Entity(e)["quantity"], "quantity %d", q)
	}
}

func TestEntity_Nil(t *testing.T) {
	v := validation.New()
	assert.Contains(t, v.Entity(nil), "entity")
}
