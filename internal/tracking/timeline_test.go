package tracking

import (
	"testing"
	"time"

	"grocer-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderAt(created time.Time, status string) models.Order {
	return models.Order{
		ID:           "ORD-1",
		Status:       status,
		CreatedAt:    created,
		ShippingInfo: models.ShippingInfo{City: "Springfield"},
	}
}

func TestTimelineOnlyIncludesPastEvents(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 1},
		{9 * time.Minute, 1},
		{10 * time.Minute, 2},
		{25 * time.Minute, 3},
		{50 * time.Minute, 4},
		{80 * time.Minute, 5},
		{48 * time.Hour, 5},
	}

	for _, tc := range cases {
		events := Timeline(orderAt(created, models.StatusConfirmed), created.Add(tc.elapsed))
		assert.Len(t, events, tc.want, "elapsed %v", tc.elapsed)
	}
}

func TestTimelineTimestampsFollowSchedule(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	events := Timeline(orderAt(created, models.StatusOutForDelivery), created.Add(2*time.Hour))

	require.Len(t, events, 5)
	assert.Equal(t, "Order Confirmed", events[0].Status)
	assert.True(t, events[1].Timestamp.Equal(created.Add(10*time.Minute)))
	assert.True(t, events[2].Timestamp.Equal(created.Add(25*time.Minute)))
	assert.True(t, events[3].Timestamp.Equal(created.Add(50*time.Minute)))
	assert.True(t, events[4].Timestamp.Equal(created.Add(80*time.Minute)))

	// Out-for-delivery is located in the shipping city.
	assert.Equal(t, "Springfield", events[3].Location)
}

func TestTimelineCancelledOrder(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	events := Timeline(orderAt(created, models.StatusCancelled), created.Add(3*time.Hour))

	require.Len(t, events, 1)
	assert.Equal(t, "Order Cancelled", events[0].Status)
}

func TestCurrentStep(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 0},
		{9 * time.Minute, 0},
		{10 * time.Minute, 1},
		{30 * time.Minute, 2},
		{55 * time.Minute, 3},
		{90 * time.Minute, 4},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, CurrentStep(created, created.Add(tc.elapsed)), "elapsed %v", tc.elapsed)
	}
}

func TestStatusAt(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		elapsed time.Duration
		want    string
	}{
		{5 * time.Minute, models.StatusConfirmed},
		{10 * time.Minute, models.StatusPreparing},
		{30 * time.Minute, models.StatusPreparing},
		{50 * time.Minute, models.StatusOutForDelivery},
		{80 * time.Minute, models.StatusDelivered},
		{7 * 24 * time.Hour, models.StatusDelivered},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusAt(created, created.Add(tc.elapsed)), "elapsed %v", tc.elapsed)
	}
}

func TestAdvance(t *testing.T) {
	created := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	next, ok := Advance(orderAt(created, models.StatusConfirmed), created.Add(15*time.Minute))
	assert.True(t, ok)
	assert.Equal(t, models.StatusPreparing, next)

	// No forward transition due yet.
	_, ok = Advance(orderAt(created, models.StatusPreparing), created.Add(15*time.Minute))
	assert.False(t, ok)

	// Terminal states never advance.
	_, ok = Advance(orderAt(created, models.StatusDelivered), created.Add(48*time.Hour))
	assert.False(t, ok)
	_, ok = Advance(orderAt(created, models.StatusCancelled), created.Add(48*time.Hour))
	assert.False(t, ok)

	// A long-idle confirmed order jumps straight to delivered.
	next, ok = Advance(orderAt(created, models.StatusConfirmed), created.Add(3*time.Hour))
	assert.True(t, ok)
	assert.Equal(t, models.StatusDelivered, next)
}
