package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ajschmidt2/bluebeam-consolidator/internal/errs"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/infrastructure/persistence/sqlite/model"
	"github.com/ajschmidt2/bluebeam-consolidator/internal/ports"
)

// defaultMaxEntries bounds the cache table; the oldest entries beyond the
// cap are swept on write.
const defaultMaxEntries = 2000

// SQLiteCache is a content-addressed key-value cache in the application
// database, used to memoize classifier verdicts. Entries carry an optional
// expiry and the table is size-capped, so the cache stays an explicit,
// bounded store rather than an unbounded memo table.
type SQLiteCache struct {
	db         *gorm.DB
	maxEntries int
}

var _ ports.Cache = (*SQLiteCache)(nil)

func NewSQLiteCache(db *gorm.DB) *SQLiteCache {
	return &SQLiteCache{db: db, maxEntries: defaultMaxEntries}
}

func (c *SQLiteCache) Get(ctx context.Context, key string) (string, bool, error) {
	if ctx == nil {
		return "", false, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return "", false, errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return "", false, errors.New("key is required")
	}

	var row model.CacheEntry
	if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "query cache by key")
	}

	if row.ExpiresAt != "" && row.ExpiresAt <= time.Now().UTC().Format(time.RFC3339Nano) {
		_ = c.db.WithContext(ctx).Where("key = ?", trimmedKey).Delete(&model.CacheEntry{}).Error
		return "", false, nil
	}

	return row.Value, true, nil
}

func (c *SQLiteCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	now := time.Now().UTC()
	expiresAt := ""
	if ttl > 0 {
		expiresAt = now.Add(ttl).Format(time.RFC3339Nano)
	}

	row := model.CacheEntry{
		Key:       trimmedKey,
		Value:     value,
		ExpiresAt: expiresAt,
		UpdatedAt: now.Format(time.RFC3339Nano),
	}

	if err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"expires_at": row.ExpiresAt,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error; err != nil {
		return errs.Wrap(err, "upsert cache key")
	}

	return c.evict(ctx)
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	trimmedKey := strings.TrimSpace(key)
	if trimmedKey == "" {
		return errors.New("key is required")
	}

	if err := c.db.WithContext(ctx).Where("key = ?", trimmedKey).Delete(&model.CacheEntry{}).Error; err != nil {
		return errs.Wrap(err, "delete cache key")
	}
	return nil
}

// evict drops expired entries, then the least-recently-written entries
// beyond the size cap.
func (c *SQLiteCache) evict(ctx context.Context) error {
	db := c.db.WithContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	if err := db.Where("expires_at <> '' AND expires_at <= ?", now).Delete(&model.CacheEntry{}).Error; err != nil {
		return errs.Wrap(err, "evict expired cache entries")
	}

	var count int64
	if err := db.Model(&model.CacheEntry{}).Count(&count).Error; err != nil {
		return errs.Wrap(err, "count cache entries")
	}
	if int(count) <= c.maxEntries {
		return nil
	}

	overflow := int(count) - c.maxEntries
	var victims []string
	if err := db.Model(&model.CacheEntry{}).
		Order("updated_at asc").
		Limit(overflow).
		Pluck("key", &victims).Error; err != nil {
		return errs.Wrap(err, "select cache eviction victims")
	}
	if len(victims) == 0 {
		return nil
	}

	if err := db.Where("key IN ?", victims).Delete(&model.CacheEntry{}).Error; err != nil {
		return errs.Wrap(err, "evict cache entries over cap")
	}
	return nil
}
