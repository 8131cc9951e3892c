package inventory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/georgemunganga/smartsupply-backend/internal/apperr"
	"github.com/georgemunganga/smartsupply-backend/internal/database"
	"github.com/georgemunganga/smartsupply-backend/internal/database/dbtest"
)

func seedProduct(t *testing.T, db *database.DB, id, name string) {
	t.Helper()
	_, err := db.ExecContext(context.Background(),
		`INSERT INTO products (id, name, price, total_quantity) VALUES ($1, $2, $3, $4)`,
		id, name, "9.99", 100)
	require.NoError(t, err)
}

func allocationFor(t *testing.T, repo Repository, productID, managerID string) Allocation {
	t.Helper()
	all, err := repo.Allocations(context.Background(), productID)
	require.NoError(t, err)
	for _, a := range all {
		if a.ManagerID == managerID {
			return a
		}
	}
	t.Fatalf("no allocation for %s at %s", productID, managerID)
	return Allocation{}
}

func TestAllocateAccumulatesBothFields(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Allocate(ctx, "P1", "M1", 12))
	require.NoError(t, repo.Allocate(ctx, "P1", "M1", 8))

	a := allocationFor(t, repo, "P1", "M1")
	assert.Equal(t, 20, a.Quantity)
	assert.Equal(t, 20, a.InitialQuantity)
}

func TestSetAllocationOverwritesQuantityOnly(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Allocate(ctx, "P1", "M1", 30))
	require.NoError(t, repo.SetAllocation(ctx, "P1", "M1", 7))

	a := allocationFor(t, repo, "P1", "M1")
	assert.Equal(t, 7, a.Quantity)
	assert.Equal(t, 30, a.InitialQuantity)

	err := repo.SetAllocation(ctx, "P1", "M9", 7)
	require.ErrorIs(t, err, ErrRowMissing)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, map[string]any{"reason": ReasonRowMissing, "product_id": "P1", "manager_id": "M9"}, apperr.As(err).Details())
	assert.Equal(t, 0, dbtest.Count(t, db, "offline_inventory", "manager_id = $1", "M9"))
}

func TestOnlineLifecycle(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	_, ok, err := repo.OnlineQuantity(ctx, "P1")
	require.NoError(t, err)
	assert.False(t, ok)
	err = repo.SetOnline(ctx, "P1", 5)
	require.ErrorIs(t, err, ErrRowMissing)
	assert.Equal(t, map[string]any{"reason": ReasonRowMissing, "product_id": "P1"}, apperr.As(err).Details())

	require.NoError(t, repo.CreateOnline(ctx, "P1", 40))
	require.ErrorIs(t, repo.CreateOnline(ctx, "P1", 40), apperr.ErrConflict)
	require.NoError(t, repo.SetOnline(ctx, "P1", 30))
	require.NoError(t, repo.DecrementOnline(ctx, "P1", 10))

	qty, ok, err := repo.OnlineQuantity(ctx, "P1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 20, qty)

	err = repo.DecrementOnline(ctx, "P1", 21)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	qty, _, err = repo.OnlineQuantity(ctx, "P1")
	require.NoError(t, err)
	assert.Equal(t, 20, qty)

	require.NoError(t, repo.DecrementOnline(ctx, "P1", 20))
	qty, _, _ = repo.OnlineQuantity(ctx, "P1")
	assert.Equal(t, 0, qty)
}

func TestDecrementAllocation(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Allocate(ctx, "P1", "M1", 30))

	remaining, err := repo.DecrementAllocation(ctx, "P1", "M1", 5)
	require.NoError(t, err)
	assert.Equal(t, 25, remaining)

	remaining, err = repo.DecrementAllocation(ctx, "P1", "M1", 26)
	require.ErrorIs(t, err, apperr.ErrInsufficientStock)
	assert.Equal(t, 25, remaining)

	_, err = repo.DecrementAllocation(ctx, "P1", "M2", 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	a := allocationFor(t, repo, "P1", "M1")
	assert.Equal(t, 25, a.Quantity)
	assert.Equal(t, 30, a.InitialQuantity, "sales never touch the allocated total")
}

func TestStoreAvailabilityAndGrouping(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	seedProduct(t, db, "P2", "Bread")
	repo := NewPostgresRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Allocate(ctx, "P1", "M1", 30))
	require.NoError(t, repo.Allocate(ctx, "P2", "M1", 10))
	require.NoError(t, repo.Allocate(ctx, "P1", "M2", 5))
	_, err := repo.DecrementAllocation(ctx, "P1", "M1", 4)
	require.NoError(t, err)

	products, err := repo.StoreAvailability(ctx, "M1")
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Bread", products[0].Name)
	assert.Equal(t, StoreProduct{ID: "P1", Name: "Milk", AllocatedStock: 30, CurrentStock: 26}, products[1])

	empty, err := repo.StoreAvailability(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, empty)

	grouped, err := repo.AllocationsByProduct(ctx)
	require.NoError(t, err)
	assert.Len(t, grouped["P1"], 2)
	assert.Len(t, grouped["P2"], 1)
}

func TestDeleteForProduct(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	repo := NewPostgresRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.CreateOnline(ctx, "P1", 5))
	require.NoError(t, repo.Allocate(ctx, "P1", "M1", 5))

	require.NoError(t, repo.DeleteForProduct(ctx, "P1"))
	assert.Equal(t, 0, dbtest.Count(t, db, "online_inventory", ""))
	assert.Equal(t, 0, dbtest.Count(t, db, "offline_inventory", ""))
	require.NoError(t, repo.DeleteForProduct(ctx, "P1"))
}

func TestStoreAvailabilityHandler(t *testing.T) {
	db := dbtest.Open(t)
	seedProduct(t, db, "P1", "Milk")
	repo := NewPostgresRepository(db)
	require.NoError(t, repo.Allocate(context.Background(), "P1", "M1", 30))

	r := chi.NewRouter()
	NewHandler(NewService(repo), nil).RegisterRoutes(r)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/store/availability?manager_id=M1", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	var got []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "P1", got[0]["id"])
	assert.EqualValues(t, 30, got[0]["allocated_stock"])
	assert.EqualValues(t, 30, got[0]["current_stock"])
	assert.Nil(t, got[0]["image"])

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/store/availability", nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
