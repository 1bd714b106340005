package cart

import (
	"testing"

	"grocer-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func item(id string, price float64, qty int) models.CartItem {
	return models.CartItem{ID: id, Name: "product-" + id, Price: price, Image: "/img/" + id, Quantity: qty}
}

func TestAddItemAppends(t *testing.T) {
	state := Empty()
	state = Apply(state, AddItem{Item: item("banana", 0.99, 2)})
	state = Apply(state, AddItem{Item: item("milk", 3.49, 1)})

	assert.Len(t, state.Items, 2)
	assert.Equal(t, "banana", state.Items[0].ID)
	assert.Equal(t, "milk", state.Items[1].ID)
	assert.Equal(t, 3, state.ItemCount)
	assert.InDelta(t, 2*0.99+3.49, state.Total, 1e-9)
}

func TestAddItemMergesByID(t *testing.T) {
	state := Empty()
	state = Apply(state, AddItem{Item: item("banana", 0.99, 2)})
	state = Apply(state, AddItem{Item: item("banana", 0.99, 3)})

	assert.Len(t, state.Items, 1)
	assert.Equal(t, 5, state.Items[0].Quantity)
	assert.Equal(t, 5, state.ItemCount)
	assert.InDelta(t, 5*0.99, state.Total, 1e-9)
}

func TestAddItemDefaultsQuantityToOne(t *testing.T) {
	state := Apply(Empty(), AddItem{Item: item("eggs", 4.99, 0)})

	assert.Len(t, state.Items, 1)
	assert.Equal(t, 1, state.Items[0].Quantity)
	assert.Equal(t, 1, state.ItemCount)
}

func TestAddItemKeepsInsertionOrderOnMerge(t *testing.T) {
	state := Empty()
	state = Apply(state, AddItem{Item: item("a", 1, 1)})
	state = Apply(state, AddItem{Item: item("b", 2, 1)})
	state = Apply(state, AddItem{Item: item("a", 1, 1)})

	assert.Equal(t, "a", state.Items[0].ID)
	assert.Equal(t, "b", state.Items[1].ID)
	assert.Equal(t, 2, state.Items[0].Quantity)
}

func TestRemoveItem(t *testing.T) {
	state := Empty()
	state = Apply(state, AddItem{Item: item("banana", 0.99, 2)})
	state = Apply(state, AddItem{Item: item("milk", 3.49, 1)})

	state = Apply(state, RemoveItem{ID: "banana"})

	assert.Len(t, state.Items, 1)
	assert.Equal(t, "milk", state.Items[0].ID)
	assert.Equal(t, 1, state.ItemCount)
	assert.InDelta(t, 3.49, state.Total, 1e-9)
}

func TestRemoveAbsentItemIsNoop(t *testing.T) {
	state := Apply(Empty(), AddItem{Item: item("banana", 0.99, 2)})
	next := Apply(state, RemoveItem{ID: "missing"})

	assert.Equal(t, state.Items, next.Items)
	assert.Equal(t, state.Total, next.Total)
	assert.Equal(t, state.ItemCount, next.ItemCount)
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	state := Apply(Empty(), AddItem{Item: item("banana", 0.99, 2)})
	state = Apply(state, UpdateQuantity{ID: "banana", Quantity: 7})

	assert.Equal(t, 7, state.Items[0].Quantity)
	assert.Equal(t, 7, state.ItemCount)
	assert.InDelta(t, 7*0.99, state.Total, 1e-9)
}

func TestUpdateQuantityBelowOneRemoves(t *testing.T) {
	for _, qty := range []int{0, -1, -10} {
		state := Apply(Empty(), AddItem{Item: item("banana", 0.99, 2)})
		state = Apply(state, UpdateQuantity{ID: "banana", Quantity: qty})

		assert.Empty(t, state.Items)
		assert.Zero(t, state.ItemCount)
		assert.Zero(t, state.Total)
	}
}

func TestClear(t *testing.T) {
	state := Apply(Empty(), AddItem{Item: item("banana", 0.99, 2)})
	state = Apply(state, Clear{})

	assert.Equal(t, Empty(), state)
}

func TestLoadRederivesAggregates(t *testing.T) {
	// Persisted aggregates are stale on purpose; Load must recompute
	// them from the items instead of trusting the blob.
	persisted := models.CartState{
		Items:     []models.CartItem{item("banana", 0.99, 2), item("milk", 3.49, 1)},
		Total:     999,
		ItemCount: 42,
	}

	state := Apply(Empty(), Load{State: persisted})

	assert.Equal(t, 3, state.ItemCount)
	assert.InDelta(t, 2*0.99+3.49, state.Total, 1e-9)
}

func TestNormalizeDropsZeroQuantityRows(t *testing.T) {
	state := Normalize(models.CartState{
		Items: []models.CartItem{item("a", 1, 0), item("b", 2, 3)},
	})

	assert.Len(t, state.Items, 1)
	assert.Equal(t, "b", state.Items[0].ID)
	assert.Equal(t, 3, state.ItemCount)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	state := Apply(Empty(), AddItem{Item: item("banana", 0.99, 2)})
	_ = Apply(state, AddItem{Item: item("banana", 0.99, 3)})
	_ = Apply(state, UpdateQuantity{ID: "banana", Quantity: 9})

	assert.Equal(t, 2, state.Items[0].Quantity)
	assert.Equal(t, 2, state.ItemCount)
}

func TestItemCountMatchesSumOfQuantities(t *testing.T) {
	adds := []struct {
		id  string
		qty int
	}{
		{"a", 1}, {"b", 4}, {"a", 2}, {"c", 3}, {"b", 1},
	}

	state := Empty()
	want := 0
	for _, add := range adds {
		state = Apply(state, AddItem{Item: item(add.id, 2.5, add.qty)})
		want += add.qty
	}

	assert.Equal(t, want, state.ItemCount)
	assert.InDelta(t, float64(want)*2.5, state.Total, 1e-9)

	// Recomputation over the same item list is idempotent.
	again := Normalize(state)
	assert.Equal(t, state, again)
}
