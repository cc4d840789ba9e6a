package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/board-sync/pkg/types"
)

const boardRowName = "default"

type boardRecord struct {
	Name      string `gorm:"primaryKey;size:64"`
	Document  string `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (boardRecord) TableName() string { return "boards" }

// PostgresStorage keeps the board as one jsonb row.
type PostgresStorage struct {
	db   *gorm.DB
	name string
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&boardRecord{}); err != nil {
		return nil, fmt.Errorf("migrate boards table: %w", err)
	}
	return &PostgresStorage{db: db, name: boardRowName}, nil
}

func (p *PostgresStorage) Load(ctx context.Context) ([]byte, error) {
	var rec boardRecord
	err := p.db.WithContext(ctx).First(&rec, "name = ?", p.name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load board row: %w", err)
	}
	return []byte(rec.Document), nil
}

func (p *PostgresStorage) Save(ctx context.Context, b types.Board) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	rec := boardRecord{Name: p.name, Document: string(data), UpdatedAt: time.Now().UTC()}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"document", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save board row: %w", err)
	}
	return nil
}

func (p *PostgresStorage) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
