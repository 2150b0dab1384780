package service

import (
	"context"
	"testing"

	"github.com/bossshopp/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportsCountOnlyShippedAndDelivered(t *testing.T) {
	h := newServiceHarness(t)
	fx := seedShop(t, h.DB)
	ctx := context.Background()

	shipped, err := h.Orders.Create(ctx, CreateOrderInput{UserID: fx.User.ID, Items: []OrderLineInput{{ProductID: fx.Phone.ID, Quantity: 2}}})
	require.NoError(t, err)
	delivered, err := h.Orders.Create(ctx, CreateOrderInput{UserID: fx.Other.ID, Items: []OrderLineInput{{ProductID: fx.Laptop.ID, Quantity: 2}}})
	require.NoError(t, err)
	_, err = h.Orders.Create(ctx, CreateOrderInput{UserID: fx.Other.ID, Items: []OrderLineInput{{ProductID: fx.Phone.ID, Quantity: 1}}})
	require.NoError(t, err)

	for _, status := range []string{constants.OrderStatusProcessing, constants.OrderStatusShipped} {
		_, err = h.Orders.UpdateStatus(ctx, shipped.ID, status)
		require.NoError(t, err)
	}
	for _, status := range []string{constants.OrderStatusProcessing, constants.OrderStatusShipped, constants.OrderStatusDelivered} {
		_, err = h.Orders.UpdateStatus(ctx, delivered.ID, status)
		require.NoError(t, err)
	}

	stats, err := h.Reports.SalesStatistics(ctx, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, "150.00", stats.TotalRevenue.String())
	assert.Equal(t, "75.00", stats.AverageTicket.String())
	assert.Equal(t, "50.00", stats.MinOrder.String())
	assert.Equal(t, "100.00", stats.MaxOrder.String())

	top, err := h.Reports.TopProducts(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, int64(2), top[0].TotalSold)

	daily, err := h.Reports.DailySales(ctx, 7)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, int64(2), daily[0].TotalOrders)

	users, err := h.Reports.UserStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), users.TotalUsers)
	assert.Equal(t, int64(2), users.NewUsers30d)
	assert.Equal(t, int64(2), users.ActiveUsers)

	counts, err := h.Reports.TableCounts(ctx)
	require.NoError(t, err)
	found := false
	for _, row := range counts {
		if row.Table == "orders" {
			found = true
			assert.Equal(t, int64(3), row.Rows)
		}
	}
	assert.True(t, found)
}
