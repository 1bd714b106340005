// Package cart implements the cart state machine as a pure reducer: a
// transition function over a closed set of actions. Every transition
// returns a fresh CartState with total and itemCount recomputed from the
// item list, so the aggregates can never drift from the items.
package cart

import "grocer-service/internal/models"

// Action is one of the cart transitions. The set is closed: AddItem,
// RemoveItem, UpdateQuantity, Clear and Load.
type Action interface {
	isAction()
}

// AddItem merges an item into the cart. If an item with the same id is
// already present its quantity is incremented by Item.Quantity; otherwise
// the item is appended at the end of the sequence. A non-positive
// quantity is treated as 1.
type AddItem struct {
	Item models.CartItem
}

// RemoveItem drops the item with the given id. Removing an absent id is a
// no-op, not an error.
type RemoveItem struct {
	ID string
}

// UpdateQuantity sets the quantity of the item with the given id. Any
// value below 1 removes the item entirely.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

// Clear resets the cart to the empty initial state.
type Clear struct{}

// Load replaces the state wholesale with a persisted snapshot. Aggregates
// are re-derived from the snapshot's items rather than trusted.
type Load struct {
	State models.CartState
}

func (AddItem) isAction()        {}
func (RemoveItem) isAction()     {}
func (UpdateQuantity) isAction() {}
func (Clear) isAction()         {}
func (Load) isAction()          {}

// Empty returns the initial cart state.
func Empty() models.CartState {
	return models.CartState{Items: []models.CartItem{}}
}

// Apply runs one transition and returns the next state. The input state
// is never mutated; item slices are copied before modification.
func Apply(state models.CartState, action Action) models.CartState {
	switch a := action.(type) {
	case AddItem:
		item := a.Item
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		items := copyItems(state.Items)
		merged := false
		for i := range items {
			if items[i].ID == item.ID {
				items[i].Quantity += item.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, item)
		}
		return withDerived(items)

	case RemoveItem:
		items := make([]models.CartItem, 0, len(state.Items))
		for _, it := range state.Items {
			if it.ID != a.ID {
				items = append(items, it)
			}
		}
		return withDerived(items)

	case UpdateQuantity:
		items := make([]models.CartItem, 0, len(state.Items))
		for _, it := range state.Items {
			if it.ID == a.ID {
				it.Quantity = a.Quantity
			}
			if it.Quantity >= 1 {
				items = append(items, it)
			}
		}
		return withDerived(items)

	case Clear:
		return Empty()

	case Load:
		return Normalize(a.State)
	}

	return state
}

// Normalize re-derives total and itemCount from the item list and drops
// any row with a quantity below 1. Used on hydration so stale or
// corrupted persisted aggregates are never trusted.
func Normalize(state models.CartState) models.CartState {
	items := make([]models.CartItem, 0, len(state.Items))
	for _, it := range state.Items {
		if it.Quantity >= 1 {
			items = append(items, it)
		}
	}
	return withDerived(items)
}

func withDerived(items []models.CartItem) models.CartState {
	var total float64
	var count int
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
		count += it.Quantity
	}
	return models.CartState{Items: items, Total: total, ItemCount: count}
}

func copyItems(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(items))
	copy(out, items)
	return out
}
