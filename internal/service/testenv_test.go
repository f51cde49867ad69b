package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/db"
	"github.com/mstolbov/market_api/internal/models"
	"github.com/mstolbov/market_api/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func newTestRepo(t *testing.T) (*gorm.DB, *repo.GormRepo) {
	gdb := newTestDB(t)
	return gdb, repo.New(gdb)
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price float64, stock uint) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Stock: stock}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func seedUser(t *testing.T, gdb *gorm.DB, email, role string) *models.User {
	t.Helper()
	u := &models.User{Name: "tester", Email: email, Role: role, Active: true, PasswordHash: "x"}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func seedCartLine(t *testing.T, gdb *gorm.DB, userID, productID, qty uint) {
	t.Helper()
	require.NoError(t, gdb.Create(&models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}).Error)
}

var testCtx = context.Background()
