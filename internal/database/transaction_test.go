package database

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"
)

func withItems(t *testing.T) Database {
	t.Helper()
	ctx := context.Background()
	db, err := NewDatabase(ctx, "sqlite:///:memory:")
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Session(ctx).Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)").Error; err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func countItems(t *testing.T, db Database) int64 {
	t.Helper()
	var count int64
	if err := db.Session(context.Background()).Raw("SELECT COUNT(*) FROM test_items").Scan(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return count
}

func TestWithTransaction_Success(t *testing.T) {
	ctx := context.Background()
	db := withItems(t)

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", "a").Error; err != nil {
			return err
		}
		return tx.Exec("INSERT INTO test_items (name) VALUES (?)", "b").Error
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}
	if got := countItems(t, db); got != 2 {
		t.Errorf("expected 2 items, got %d", got)
	}
}

func TestWithTransaction_Error(t *testing.T) {
	ctx := context.Background()
	db := withItems(t)
	boom := errors.New("boom")

	err := WithTransaction(ctx, db, func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", "a").Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if got := countItems(t, db); got != 0 {
		t.Errorf("expected rollback, found %d items", got)
	}
}

func TestWithTransactionResult(t *testing.T) {
	ctx := context.Background()
	db := withItems(t)

	name, err := WithTransactionResult(ctx, db, func(tx *gorm.DB) (string, error) {
		if err := tx.Exec("INSERT INTO test_items (name) VALUES (?)", "x").Error; err != nil {
			return "", err
		}
		var n string
		err := tx.Raw("SELECT name FROM test_items LIMIT 1").Scan(&n).Error
		return n, err
	})
	if err != nil {
		t.Fatalf("WithTransactionResult: %v", err)
	}
	if name != "x" {
		t.Errorf("expected x, got %q", name)
	}

	_, err = WithTransactionResult(ctx, db, func(tx *gorm.DB) (int, error) {
		return 0, errors.New("fail")
	})
	if err == nil {
		t.Fatal("expected error")
	}
}
