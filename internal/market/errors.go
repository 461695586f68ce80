package market

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyOrder    = errors.New("order has no items")
	ErrOrderNotFound = errors.New("order not found")

	// ErrLockTimeout: lock row tidak kebagian / deadlock di store.
	// Retryable; caller ulangi seluruh placement dengan request baru.
	ErrLockTimeout = errors.New("inventory lock timeout")
)

type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity %d for product %s", e.Quantity, e.ProductID)
}

type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

type InsufficientInventoryError struct {
	ProductID string
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for product %s: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// WrongShopError: item menunjuk produk milik shop lain.
type WrongShopError struct {
	ProductID string
	ShopID    string
}

func (e *WrongShopError) Error() string {
	return fmt.Sprintf("product %s does not belong to shop %s", e.ProductID, e.ShopID)
}
