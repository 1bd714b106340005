package service

import (
	"context"
	"testing"
	"time"

	"grocer-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrders(orders *fakeOrderStore, userID string, list ...models.Order) {
	orders.orders[userID] = list
}

func namedOrder(id, status string, createdAt time.Time, itemNames ...string) models.Order {
	items := make([]models.CartItem, 0, len(itemNames))
	for _, name := range itemNames {
		items = append(items, models.CartItem{ID: name, Name: name, Price: 1, Quantity: 1})
	}
	return models.Order{ID: id, Status: status, CreatedAt: createdAt, Items: items}
}

func orderFixture() (*OrderService, *fakeOrderStore, *fakeEvents) {
	orders := newFakeOrderStore()
	events := &fakeEvents{}
	svc := NewOrderService(orders, nil, events)
	return svc, orders, events
}

func TestListOrdersSortsNewestFirst(t *testing.T) {
	svc, orders, _ := orderFixture()
	t1 := time.Now().Add(-3 * time.Hour)
	t2 := time.Now().Add(-2 * time.Hour)
	t3 := time.Now().Add(-1 * time.Hour)
	seedOrders(orders, "u1",
		namedOrder("ORD-1", models.StatusDelivered, t1),
		namedOrder("ORD-3", models.StatusConfirmed, t3),
		namedOrder("ORD-2", models.StatusPreparing, t2),
	)

	got, err := svc.ListOrders(context.Background(), "u1", models.OrderFilter{})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "ORD-3", got[0].ID)
	assert.Equal(t, "ORD-2", got[1].ID)
	assert.Equal(t, "ORD-1", got[2].ID)
}

func TestListOrdersStatusFilter(t *testing.T) {
	svc, orders, _ := orderFixture()
	now := time.Now()
	seedOrders(orders, "u1",
		namedOrder("ORD-1", models.StatusConfirmed, now.Add(-3*time.Hour)),
		namedOrder("ORD-2", models.StatusDelivered, now.Add(-2*time.Hour)),
		namedOrder("ORD-3", models.StatusCancelled, now.Add(-1*time.Hour)),
	)

	got, err := svc.ListOrders(context.Background(), "u1", models.OrderFilter{Status: models.StatusDelivered})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-2", got[0].ID)

	// "all" disables the status filter.
	got, err = svc.ListOrders(context.Background(), "u1", models.OrderFilter{Status: models.StatusFilterAll})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestListOrdersSearchFilter(t *testing.T) {
	svc, orders, _ := orderFixture()
	now := time.Now()
	seedOrders(orders, "u1",
		namedOrder("ORD-100", models.StatusDelivered, now.Add(-3*time.Hour), "Organic Banana", "Milk"),
		namedOrder("ORD-200", models.StatusDelivered, now.Add(-2*time.Hour), "Sourdough Bread"),
	)

	// Case-insensitive substring over item names.
	got, err := svc.ListOrders(context.Background(), "u1", models.OrderFilter{Search: "BANANA"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-100", got[0].ID)

	// Matches against the order id too.
	got, err = svc.ListOrders(context.Background(), "u1", models.OrderFilter{Search: "ord-200"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-200", got[0].ID)

	got, err = svc.ListOrders(context.Background(), "u1", models.OrderFilter{Search: "caviar"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListOrdersWindowFilter(t *testing.T) {
	svc, orders, _ := orderFixture()
	now := time.Now()
	seedOrders(orders, "u1",
		namedOrder("ORD-old", models.StatusDelivered, now.Add(-40*24*time.Hour)),
		namedOrder("ORD-recent", models.StatusDelivered, now.Add(-2*24*time.Hour)),
	)

	got, err := svc.ListOrders(context.Background(), "u1", models.OrderFilter{Window: models.WindowWeek})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-recent", got[0].ID)

	got, err = svc.ListOrders(context.Background(), "u1", models.OrderFilter{Window: models.WindowQuarter})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListOrdersFiltersAreConjunctive(t *testing.T) {
	svc, orders, _ := orderFixture()
	now := time.Now()
	seedOrders(orders, "u1",
		namedOrder("ORD-1", models.StatusDelivered, now.Add(-1*time.Hour), "Banana"),
		namedOrder("ORD-2", models.StatusConfirmed, now.Add(-2*time.Hour), "Banana"),
		namedOrder("ORD-3", models.StatusDelivered, now.Add(-3*time.Hour), "Bread"),
	)

	got, err := svc.ListOrders(context.Background(), "u1", models.OrderFilter{
		Search: "banana",
		Status: models.StatusDelivered,
		Window: models.WindowWeek,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-1", got[0].ID)
}

func TestListOrdersIsAPureRead(t *testing.T) {
	svc, orders, _ := orderFixture()
	now := time.Now()
	seedOrders(orders, "u1",
		namedOrder("ORD-1", models.StatusDelivered, now.Add(-2*time.Hour)),
		namedOrder("ORD-2", models.StatusConfirmed, now.Add(-1*time.Hour)),
	)

	_, err := svc.ListOrders(context.Background(), "u1", models.OrderFilter{Status: models.StatusDelivered})
	require.NoError(t, err)

	// The persisted list is untouched, in original order.
	assert.Equal(t, "ORD-1", orders.orders["u1"][0].ID)
	assert.Equal(t, "ORD-2", orders.orders["u1"][1].ID)
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _ := orderFixture()

	_, err := svc.GetOrder(context.Background(), "u1", "ORD-missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

type fakeArchive struct {
	orders map[string]models.Order
}

func (f *fakeArchive) GetArchivedOrder(_ context.Context, userID, orderID string) (*models.Order, error) {
	order, ok := f.orders[userID+"/"+orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

func TestGetOrderFallsBackToArchive(t *testing.T) {
	orders := newFakeOrderStore()
	archive := &fakeArchive{orders: map[string]models.Order{
		"u1/ORD-9": namedOrder("ORD-9", models.StatusDelivered, time.Now().Add(-400*24*time.Hour)),
	}}
	svc := NewOrderService(orders, archive, &fakeEvents{})

	got, err := svc.GetOrder(context.Background(), "u1", "ORD-9")
	require.NoError(t, err)
	assert.Equal(t, "ORD-9", got.ID)
}

func TestCancelOrder(t *testing.T) {
	svc, orders, events := orderFixture()
	seedOrders(orders, "u1", namedOrder("ORD-1", models.StatusConfirmed, time.Now()))

	got, err := svc.CancelOrder(context.Background(), "u1", "ORD-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Equal(t, models.StatusCancelled, orders.orders["u1"][0].Status)
	require.Len(t, events.cancelled, 1)
	assert.Equal(t, "ORD-1", events.cancelled[0].OrderID)
}

func TestCancelDeliveredOrderFails(t *testing.T) {
	svc, orders, _ := orderFixture()
	seedOrders(orders, "u1", namedOrder("ORD-1", models.StatusDelivered, time.Now()))

	_, err := svc.CancelOrder(context.Background(), "u1", "ORD-1")
	assert.ErrorIs(t, err, ErrOrderNotCancellable)
}

func TestCancelTwiceIsIdempotent(t *testing.T) {
	svc, orders, events := orderFixture()
	seedOrders(orders, "u1", namedOrder("ORD-1", models.StatusConfirmed, time.Now()))

	_, err := svc.CancelOrder(context.Background(), "u1", "ORD-1")
	require.NoError(t, err)
	got, err := svc.CancelOrder(context.Background(), "u1", "ORD-1")
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, got.Status)
	assert.Len(t, events.cancelled, 1)
}

func TestGetTrackingTimeline(t *testing.T) {
	svc, orders, _ := orderFixture()
	created := time.Now().Add(-30 * time.Minute)
	order := namedOrder("ORD-1", models.StatusPreparing, created, "Banana")
	order.ShippingInfo.City = "Springfield"
	seedOrders(orders, "u1", order)

	info, err := svc.GetTracking(context.Background(), "u1", "ORD-1")
	require.NoError(t, err)

	// 30 minutes in: confirmed, preparing and packed have happened.
	assert.Len(t, info.History, 3)
	assert.Equal(t, 2, info.CurrentStep)
	assert.Equal(t, "ORD-1", info.Order.ID)
}
