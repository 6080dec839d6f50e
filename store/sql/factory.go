package sqlstore

import (
	"database/sql"
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	// Drivers registered for OpenSQLite and OpenPostgres.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-chatrelay/core"
)

// RepositoryFactory wires the delivery ledger on top of a shared bun handle.
type RepositoryFactory struct {
	db *bun.DB

	deliveryStore *DeliveryStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.deliveryStore != nil {
		return nil
	}
	deliveryStore, err := NewDeliveryStore(f.db)
	if err != nil {
		return err
	}
	f.deliveryStore = deliveryStore
	return nil
}

func (f *RepositoryFactory) DeliveryStore() *DeliveryStore {
	if f == nil {
		return nil
	}
	return f.deliveryStore
}

// DeliveryLedger exposes the store under the interface-typed accessor the
// gateway builder probes for.
func (f *RepositoryFactory) DeliveryLedger() core.DeliveryLog {
	if f == nil || f.deliveryStore == nil {
		return nil
	}
	return f.deliveryStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

// OpenSQLite opens a sqlite-backed bun handle for the ledger. Useful for
// single-binary deployments and tests.
func OpenSQLite(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// OpenPostgres opens a postgres-backed bun handle for the ledger.
func OpenPostgres(dsn string) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open postgres: %w", err)
	}
	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
