package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartTotals(t *testing.T) {
	cart := Cart{
		Items: []CartItem{
			{ProductId: 1, ProductPrice: 19.99, Quantity: 2},
			{ProductId: 2, ProductPrice: 5.50, Quantity: 3},
		},
	}

	totals := cart.Totals()
	assert.Equal(t, 5, totals.TotalItems)
	assert.Equal(t, 56.48, totals.TotalPrice)
}

func TestCartTotalsEmpty(t *testing.T) {
	cart := Cart{}
	totals := cart.Totals()
	assert.Equal(t, 0, totals.TotalItems)
	assert.Equal(t, 0.0, totals.TotalPrice)
}
