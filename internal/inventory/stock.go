// Package inventory holds the stock state machine applied to a locked
// inventory row before it is written back.
package inventory

import (
	"errors"
	"fmt"

	"github.com/projuktisheba/bottling-erp-api/internal/models"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrOverRelease       = errors.New("cannot release more than reserved")
	ErrUnknownMovement   = errors.New("unknown movement type")
)

// Stock is the position of one product in boxes.
type Stock struct {
	ProductID int64
	Available int64
	Reserved  int64
}

// Apply mutates s by one movement. s is left untouched on error, and neither
// counter is ever allowed below zero.
func (s *Stock) Apply(movement string, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	available, reserved := s.Available, s.Reserved
	switch movement {
	case models.MOVEMENT_RESTOCK:
		available += qty
	case models.MOVEMENT_RESERVE:
		if available < qty {
			return fmt.Errorf("%w for product %d: available %d, required %d", ErrInsufficientStock, s.ProductID, available, qty)
		}
		available -= qty
		reserved += qty
	case models.MOVEMENT_RELEASE:
		if reserved < qty {
			return fmt.Errorf("%w for product %d: reserved %d, requested %d", ErrOverRelease, s.ProductID, reserved, qty)
		}
		reserved -= qty
	case models.MOVEMENT_CANCEL:
		if reserved < qty {
			return fmt.Errorf("%w for product %d: reserved %d, requested %d", ErrOverRelease, s.ProductID, reserved, qty)
		}
		reserved -= qty
		available += qty
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMovement, movement)
	}
	s.Available, s.Reserved = available, reserved
	return nil
}

// Outstanding returns, per product, the boxes an order still holds in reserve:
// reserved minus what was already released or cancelled.
func Outstanding(movements []*models.InventoryMovement) map[int64]int64 {
	held := map[int64]int64{}
	for _, m := range movements {
		switch m.MovementType {
		case models.MOVEMENT_RESERVE:
			held[m.ProductID] += m.Quantity
		case models.MOVEMENT_RELEASE, models.MOVEMENT_CANCEL:
			held[m.ProductID] -= m.Quantity
		}
	}
	for pid, q := range held {
		if q <= 0 {
			delete(held, pid)
		}
	}
	return held
}

// Demand sums item quantities per product, so an order listing the same
// product twice reserves it once.
func Demand(items []*models.OrderItem) map[int64]int64 {
	out := map[int64]int64{}
	for _, it := range items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
