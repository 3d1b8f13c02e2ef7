package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	apperrors "github.com/jrsteele09/ums-portal/internal/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type sessionRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Data      []byte
	ExpiresAt int64 `gorm:"index"` // unix seconds, 0 = never
	UpdatedAt time.Time
}

func (sessionRow) TableName() string {
	return "portal_sessions"
}

// SQLStore keeps sessions in a SQL table through gorm.
type SQLStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ Store = (*SQLStore)(nil)

// OpenSQLite opens (creating if needed) the SQLite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite allows a single writer

	return db, nil
}

// NewSQLStore migrates the sessions table and returns the store.
func NewSQLStore(db *gorm.DB) (*SQLStore, error) {
	if err := db.AutoMigrate(&sessionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate sessions table: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (Record, error) {
	var row sessionRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("[SQLStore Get] %w", err)
	}

	var record Record
	if err := json.Unmarshal(row.Data, &record); err != nil {
		return Record{}, fmt.Errorf("[SQLStore Get] corrupt session record: %w", err)
	}
	if record.Expired(s.now()) {
		return Record{}, apperrors.ErrSessionNotFound
	}
	return record, nil
}

func (s *SQLStore) Upsert(ctx context.Context, key string, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("[SQLStore Upsert] failed to encode record: %w", err)
	}

	row := sessionRow{ID: key, Data: data}
	if !record.ExpiresAt.IsZero() {
		row.ExpiresAt = record.ExpiresAt.Unix()
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("[SQLStore Upsert] %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&sessionRow{}, "id = ?", key).Error; err != nil {
		return fmt.Errorf("[SQLStore Delete] %w", err)
	}
	return nil
}

func (s *SQLStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at > 0 AND expires_at <= ?", before.Unix()).
		Delete(&sessionRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("[SQLStore DeleteExpired] %w", res.Error)
	}
	return int(res.RowsAffected), nil
}
