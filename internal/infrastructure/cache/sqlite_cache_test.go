package cache

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/model"
)

func setupCache(t *testing.T) *SQLiteCache {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.CacheEntry{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return NewSQLiteCache(db)
}

func TestCacheSetGetDelete(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%t err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", "v1", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || value != "v1" {
		t.Fatalf("expected v1, got ok=%t value=%q err=%v", ok, value, err)
	}

	if err := c.Set(ctx, "k", "v2", 0); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, ok, err = c.Get(ctx, "k")
	if err != nil || !ok || value != "v2" {
		t.Fatalf("expected v2, got ok=%t value=%q err=%v", ok, value, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "k"); ok {
		t.Fatal("expected miss after delete")
	}
}

func TestCacheTTLExpiry(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "short", "v", time.Millisecond); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, ok, err := c.Get(ctx, "short"); err != nil || ok {
		t.Fatalf("expected expired miss, got ok=%t err=%v", ok, err)
	}
}

func TestCacheRejectsEmptyKey(t *testing.T) {
	c := setupCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "  ", "v", 0); err == nil {
		t.Fatal("expected error for blank key")
	}
	if _, _, err := c.Get(ctx, ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestCacheEvictsOverCap(t *testing.T) {
	c := setupCache(t)
	c.maxEntries = 3
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := c.Set(ctx, fmt.Sprintf("k%d", i), "v", 0); err != nil {
			t.Fatalf("set k%d: %v", i, err)
		}
	}

	var count int64
	if err := c.db.Model(&model.CacheEntry{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count > 3 {
		t.Fatalf("expected at most 3 entries, got %d", count)
	}

	// The newest key must survive eviction.
	if _, ok, err := c.Get(ctx, "k4"); err != nil || !ok {
		t.Fatalf("newest key evicted: ok=%t err=%v", ok, err)
	}
}
