// Package testutil provides shared test doubles and fixtures for package tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"biolink/internal/config"
	"biolink/internal/database"
	"biolink/internal/models"
	"biolink/internal/repository"

	"gorm.io/gorm"
)

// NewSQLiteDB returns a migrated in-memory database closed at test cleanup.
func NewSQLiteDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite, DBPath: ":memory:"}

	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	if err := database.ApplySchema(context.Background(), db, cfg); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t testing.TB, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// FailingProfileRepo wraps a real repository and fails writes on demand.
type FailingProfileRepo struct {
	repository.ProfileRepository
	FailSave    bool
	FailReplace bool
}

func (r *FailingProfileRepo) SaveProfile(ctx context.Context, userID uint, fields models.ProfileFields) error {
	if r.FailSave {
		return models.NewStoreError("save profile", context.DeadlineExceeded)
	}
	return r.ProfileRepository.SaveProfile(ctx, userID, fields)
}

func (r *FailingProfileRepo) ReplaceCustomLinks(ctx context.Context, userID uint, links []models.LinkInput) error {
	if r.FailReplace {
		return models.NewStoreError("replace custom links", context.DeadlineExceeded)
	}
	return r.ProfileRepository.ReplaceCustomLinks(ctx, userID, links)
}

// Transaction keeps the failure switches on the transactional repository.
func (r *FailingProfileRepo) Transaction(ctx context.Context, fn func(repository.ProfileRepository) error) error {
	return r.ProfileRepository.Transaction(ctx, func(tx repository.ProfileRepository) error {
		return fn(&FailingProfileRepo{ProfileRepository: tx, FailSave: r.FailSave, FailReplace: r.FailReplace})
	})
}
