package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mstolbov/market_api/internal/models"
)

func TestCheckoutCreatesOrderAndClearsCart(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	widget := seedProduct(t, gdb, "widget", 9.99, 10)
	gadget := seedProduct(t, gdb, "gadget", 25.00, 3)
	seedCartLine(t, gdb, user.ID, widget.ID, 2)
	seedCartLine(t, gdb, user.ID, gadget.ID, 1)

	order, err := svc.Checkout(testCtx, user.ID)
	require.NoError(t, err)

	require.Equal(t, models.OrderStatusPending, order.Status)
	require.NotEmpty(t, order.Reference)
	require.Len(t, order.Items, 2)
	require.InDelta(t, 2*9.99+25.00, order.Total, 1e-9)

	var left int64
	require.NoError(t, gdb.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&left).Error)
	require.Zero(t, left)

	var stocked models.Product
	require.NoError(t, gdb.First(&stocked, widget.ID).Error)
	require.EqualValues(t, 8, stocked.Stock)
}

func TestCheckoutLastUnitHasOneWinner(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	alice := seedUser(t, gdb, "alice@example.com", "user")
	bob := seedUser(t, gdb, "bob@example.com", "user")
	rare := seedProduct(t, gdb, "rare", 99.00, 1)
	seedCartLine(t, gdb, alice.ID, rare.ID, 1)
	seedCartLine(t, gdb, bob.ID, rare.ID, 1)

	_, err := svc.Checkout(testCtx, alice.ID)
	require.NoError(t, err)

	_, err = svc.Checkout(testCtx, bob.ID)
	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.EqualValues(t, 0, stockErr.Available)

	var orders int64
	require.NoError(t, gdb.Model(&models.Order{}).Count(&orders).Error)
	require.EqualValues(t, 1, orders)
}

func TestDecrementStockGuardsInOneStatement(t *testing.T) {
	gdb, r := newTestRepo(t)
	p := seedProduct(t, gdb, "rare", 99.00, 1)

	taken, err := r.DecrementStock(testCtx, p.ID, 2)
	require.NoError(t, err)
	require.False(t, taken)

	taken, err = r.DecrementStock(testCtx, p.ID, 1)
	require.NoError(t, err)
	require.True(t, taken)

	// the last unit is gone; the same decrement now reports short stock
	taken, err = r.DecrementStock(testCtx, p.ID, 1)
	require.NoError(t, err)
	require.False(t, taken)

	var left models.Product
	require.NoError(t, gdb.First(&left, p.ID).Error)
	require.EqualValues(t, 0, left.Stock)
}

func TestCheckoutInsufficientStockRollsBack(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	cheap := seedProduct(t, gdb, "cheap", 1.00, 100)
	scarce := seedProduct(t, gdb, "scarce", 50.00, 1)
	seedCartLine(t, gdb, user.ID, cheap.ID, 5)
	seedCartLine(t, gdb, user.ID, scarce.ID, 3)

	_, err := svc.Checkout(testCtx, user.ID)

	var stockErr *StockError
	require.ErrorAs(t, err, &stockErr)
	require.Equal(t, scarce.ID, stockErr.ProductID)
	require.EqualValues(t, 3, stockErr.Requested)
	require.EqualValues(t, 1, stockErr.Available)

	// nothing moved: the first line's decrement is rolled back too
	var p models.Product
	require.NoError(t, gdb.First(&p, cheap.ID).Error)
	require.EqualValues(t, 100, p.Stock)

	var orders int64
	require.NoError(t, gdb.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)

	var lines int64
	require.NoError(t, gdb.Model(&models.CartItem{}).Where("user_id = ?", user.ID).Count(&lines).Error)
	require.EqualValues(t, 2, lines)
}

func TestCheckoutEmptyCart(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}
	user := seedUser(t, gdb, "buyer@example.com", "user")

	_, err := svc.Checkout(testCtx, user.ID)
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutSnapshotsUnitPrice(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	p := seedProduct(t, gdb, "widget", 10.00, 5)
	seedCartLine(t, gdb, user.ID, p.ID, 1)

	order, err := svc.Checkout(testCtx, user.ID)
	require.NoError(t, err)

	// a later price change must not touch the order
	require.NoError(t, gdb.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", 99.00).Error)

	got, err := svc.Get(testCtx, Actor{UserID: user.ID, Role: "user"}, order.ID)
	require.NoError(t, err)
	require.InDelta(t, 10.00, got.Items[0].UnitPrice, 1e-9)
	require.InDelta(t, 10.00, got.Total, 1e-9)
}

func TestOrderGetForbiddenForStranger(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	owner := seedUser(t, gdb, "owner@example.com", "user")
	other := seedUser(t, gdb, "other@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 5)
	seedCartLine(t, gdb, owner.ID, p.ID, 1)

	order, err := svc.Checkout(testCtx, owner.ID)
	require.NoError(t, err)

	_, err = svc.Get(testCtx, Actor{UserID: other.ID, Role: "user"}, order.ID)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Get(testCtx, Actor{UserID: other.ID, Role: "admin"}, order.ID)
	require.NoError(t, err)
}

func placeOrder(t *testing.T, svc *OrderService, userID, productID uint) *models.Order {
	t.Helper()
	seedCartLine(t, svc.DB, userID, productID, 1)
	order, err := svc.Checkout(testCtx, userID)
	require.NoError(t, err)
	return order
}

func TestTransitionTable(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}
	admin := Actor{UserID: 999, Role: "admin"}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 100)
	order := placeOrder(t, svc, user.ID, p.ID)

	// pending -> confirmed -> shipped -> delivered, each legal in turn
	for _, next := range []models.OrderStatus{
		models.OrderStatusConfirmed,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
	} {
		got, err := svc.Transition(testCtx, admin, order.ID, next)
		require.NoError(t, err)
		require.Equal(t, next, got.Status)
	}

	// delivered is terminal
	_, err := svc.Transition(testCtx, admin, order.ID, models.OrderStatusCancelled)
	var trErr *TransitionError
	require.ErrorAs(t, err, &trErr)
	require.Equal(t, "delivered", trErr.From)
	require.Equal(t, "cancelled", trErr.To)
}

func TestTransitionIllegalEdges(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}
	admin := Actor{UserID: 999, Role: "admin"}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 100)

	for _, tc := range []struct {
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{models.OrderStatusPending, models.OrderStatusShipped},
		{models.OrderStatusPending, models.OrderStatusDelivered},
		{models.OrderStatusConfirmed, models.OrderStatusCancelled},
		{models.OrderStatusShipped, models.OrderStatusCancelled},
		{models.OrderStatusCancelled, models.OrderStatusConfirmed},
	} {
		order := placeOrder(t, svc, user.ID, p.ID)
		require.NoError(t, gdb.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", tc.from).Error)

		_, err := svc.Transition(testCtx, admin, order.ID, tc.to)
		var trErr *TransitionError
		require.ErrorAs(t, err, &trErr, "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestTransitionUnknownStatus(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 100)
	order := placeOrder(t, svc, user.ID, p.ID)

	_, err := svc.Transition(testCtx, Actor{UserID: 999, Role: "admin"}, order.ID, "teleported")
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	require.Equal(t, "status", valErr.Fields[0].Field)
}

func TestTransitionOwnerMayOnlyCancel(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 100)
	owner := Actor{UserID: user.ID, Role: "user"}

	order := placeOrder(t, svc, user.ID, p.ID)
	_, err := svc.Transition(testCtx, owner, order.ID, models.OrderStatusConfirmed)
	require.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Transition(testCtx, owner, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusCancelled, got.Status)
}

func TestListOrdersScopedToOwner(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	alice := seedUser(t, gdb, "alice@example.com", "user")
	bob := seedUser(t, gdb, "bob@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 100)
	placeOrder(t, svc, alice.ID, p.ID)
	placeOrder(t, svc, alice.ID, p.ID)
	placeOrder(t, svc, bob.ID, p.ID)

	own, meta, err := svc.List(testCtx, Actor{UserID: alice.ID, Role: "user"}, ListOrdersOptions{})
	require.NoError(t, err)
	require.Len(t, own, 2)
	require.EqualValues(t, 2, meta.Total)

	all, meta, err := svc.List(testCtx, Actor{UserID: 999, Role: "admin"}, ListOrdersOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.EqualValues(t, 3, meta.Total)
}

func TestListOrdersStatusFilter(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}
	admin := Actor{UserID: 999, Role: "admin"}

	user := seedUser(t, gdb, "buyer@example.com", "user")
	p := seedProduct(t, gdb, "widget", 5.00, 100)
	placeOrder(t, svc, user.ID, p.ID)
	cancelled := placeOrder(t, svc, user.ID, p.ID)
	_, err := svc.Transition(testCtx, admin, cancelled.ID, models.OrderStatusCancelled)
	require.NoError(t, err)

	got, _, err := svc.List(testCtx, admin, ListOrdersOptions{Status: "cancelled"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, cancelled.ID, got[0].ID)
}

func TestOrderGetNotFound(t *testing.T) {
	gdb, r := newTestRepo(t)
	svc := &OrderService{DB: gdb, Repo: r}

	_, err := svc.Get(testCtx, Actor{UserID: 1, Role: "admin"}, 404)
	require.True(t, errors.Is(err, ErrNotFound))
}
