package model

import (
	"testing"
	"time"

	"food-manager/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItem() *FoodItem {
	purchase := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &FoodItem{
		ID:               "item-1",
		Name:             "Milk",
		Category:         CategoryDairy,
		Quantity:         1,
		Unit:             "gallon",
		StorageCondition: StorageRefrigerated,
		PurchaseDate:     purchase,
		ExpirationDate:   purchase.AddDate(0, 0, 7),
		ShelfLifeDays:    7,
		CurrentState:     DefaultState,
	}
}

func TestFoodItemValidate(t *testing.T) {
	require.NoError(t, validItem().Validate())

	tests := []struct {
		name   string
		mutate func(*FoodItem)
	}{
		{"blank name", func(f *FoodItem) { f.Name = "   " }},
		{"empty name", func(f *FoodItem) { f.Name = "" }},
		{"bad category", func(f *FoodItem) { f.Category = "snacks" }},
		{"bad storage", func(f *FoodItem) { f.StorageCondition = "cellar" }},
		{"negative quantity", func(f *FoodItem) { f.Quantity = -1 }},
		{"expiration before purchase", func(f *FoodItem) { f.ExpirationDate = f.PurchaseDate.Add(-time.Hour) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := validItem()
			tt.mutate(item)
			err := item.Validate()
			require.Error(t, err)
			assert.True(t, common.IsValidationError(err))
		})
	}
}

func TestZeroQuantityIsValid(t *testing.T) {
	item := validItem()
	item.Quantity = 0
	assert.NoError(t, item.Validate())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2026-03-01", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2026-03-01T10:30:00", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-03-01T10:30:00.123456", time.Date(2026, 3, 1, 10, 30, 0, 123456000, time.UTC)},
		{"2026-03-01T10:30:00Z", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
		{"2026-03-01T12:30:00+02:00", time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTimestamp(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "tomorrow", "2026-13-01", "01/03/2026"} {
		_, err := ParseTimestamp(raw)
		require.Error(t, err, raw)
		assert.True(t, common.IsValidationError(err))
	}
}

func TestEnumValid(t *testing.T) {
	assert.True(t, CategoryMeat.Valid())
	assert.False(t, Category("fish").Valid())
	assert.True(t, StorageRoomTemp.Valid())
	assert.False(t, StorageCondition("").Valid())
}
