package market

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessagesNameTheProduct(t *testing.T) {
	short := &InsufficientInventoryError{ProductID: "p-1", Requested: 5, Available: 2}
	assert.Equal(t, "insufficient inventory for product p-1: requested 5, available 2", short.Error())

	badQty := &InvalidQuantityError{ProductID: "p-2", Quantity: 0}
	assert.Contains(t, badQty.Error(), "p-2")

	notFound := &ProductNotFoundError{ProductID: "p-3"}
	assert.Equal(t, "product not found: p-3", notFound.Error())

	wrong := &WrongShopError{ProductID: "p-4", ShopID: "s-1"}
	assert.Contains(t, wrong.Error(), "p-4")
	assert.Contains(t, wrong.Error(), "s-1")
}

func TestErrorsUnwrapThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("place order: %w", &InsufficientInventoryError{ProductID: "p-1", Requested: 3, Available: 1})

	var short *InsufficientInventoryError
	require.ErrorAs(t, wrapped, &short)
	assert.Equal(t, "p-1", short.ProductID)

	assert.True(t, errors.Is(fmt.Errorf("tx: %w", ErrLockTimeout), ErrLockTimeout))
	assert.True(t, errors.Is(fmt.Errorf("x: %w", ErrEmptyOrder), ErrEmptyOrder))
}
