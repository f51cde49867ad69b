package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mstolbov/market_api/internal/models"
)

func configurePool(sqlDB *sql.DB) {
	const (
		maxOpenConns    = 20
		maxIdleConns    = 10
		connMaxLifetime = 30 * time.Minute
		connMaxIdleTime = 5 * time.Minute
	)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)
}

// Open connects to postgres when dsn is set, otherwise falls back to an
// in-memory sqlite database so the service can run without external
// infrastructure.
func Open(ctx context.Context, dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		PrepareStmt: true,
		NowFunc:     func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	if dsn == "" {
		db, err = gorm.Open(sqlite.Open(":memory:"), gormCfg)
	} else {
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap sql.DB: %w", err)
	}
	if dsn == "" {
		// each sqlite :memory: connection is its own database
		sqlDB.SetMaxOpenConns(1)
	} else {
		configurePool(sqlDB)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := sqlDB.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("ping database: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Post{},
		&models.Comment{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.RefreshToken{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
