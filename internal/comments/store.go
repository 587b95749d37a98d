// Package comments persists dashboard annotations in an embedded SQLite
// database. Comments are append-only and survive restarts.
package comments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"purchdash/pkg/contracts/domain"
)

// commentRow is the persisted shape. ID is the surrogate key that keeps
// listing in insertion order.
type commentRow struct {
	ID          uint   `gorm:"primaryKey"`
	SubjectID   string `gorm:"index:idx_subject;not null"`
	SubjectType string `gorm:"index:idx_subject;not null"`
	Text        string `gorm:"not null"`
	Author      string `gorm:"not null"`
	CreatedAt   time.Time
}

func (commentRow) TableName() string { return "comments" }

// Store wraps a single shared gorm handle over the SQLite file.
type Store struct {
	db       *gorm.DB
	validate *validator.Validate
	logger   *slog.Logger
}

// Open opens (creating if necessary) the comment database at path and
// runs migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open comment store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&commentRow{}); err != nil {
		return nil, fmt.Errorf("migrate comment store: %w", err)
	}
	logger.Info("comment store ready", slog.String("path", path))
	return &Store{
		db:       db,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "comment_store")),
	}, nil
}

// Add validates and persists one comment. CreatedAt is stamped here when
// the caller left it zero.
func (s *Store) Add(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	if err := s.validate.Struct(c); err != nil {
		return domain.Comment{}, fmt.Errorf("invalid comment: %w", err)
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	row := commentRow{
		SubjectID:   c.SubjectID,
		SubjectType: string(c.SubjectType),
		Text:        c.Text,
		Author:      c.Author,
		CreatedAt:   c.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return domain.Comment{}, fmt.Errorf("persist comment: %w", err)
	}
	s.logger.Debug("comment added",
		slog.String("subject_id", c.SubjectID),
		slog.String("subject_type", string(c.SubjectType)))
	return c, nil
}

// List returns every comment on the given subject in insertion order.
func (s *Store) List(ctx context.Context, subjectID string, subjectType domain.SubjectType) ([]domain.Comment, error) {
	var rows []commentRow
	err := s.db.WithContext(ctx).
		Where("subject_id = ? AND subject_type = ?", subjectID, string(subjectType)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list comments for %s/%s: %w", subjectType, subjectID, err)
	}
	out := make([]domain.Comment, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.Comment{
			SubjectID:   r.SubjectID,
			SubjectType: domain.SubjectType(r.SubjectType),
			Text:        r.Text,
			Author:      r.Author,
			CreatedAt:   r.CreatedAt,
		})
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
