package repository

import (
	"context"
	"errors"
	"strings"

	"biolink/internal/models"
	"biolink/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository reads and writes a user's profile row and custom links.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID uint) (*models.Profile, error)
	GetCustomLinks(ctx context.Context, userID uint) ([]models.CustomLink, error)
	SaveProfile(ctx context.Context, userID uint, fields models.ProfileFields) error
	ReplaceCustomLinks(ctx context.Context, userID uint, links []models.LinkInput) error
	Transaction(ctx context.Context, fn func(repo ProfileRepository) error) error
}

var profileColumns = []string{
	"name", "bio", "avatar",
	"instagram", "twitter", "youtube", "linkedin", "github",
	"updated_at",
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetProfile returns nil, nil when the user has never saved a profile.
func (r *profileRepository) GetProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	defer observability.TrackQuery("select", "profiles")()

	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewStoreError("load profile", err)
	}
	return &profile, nil
}

// GetCustomLinks returns the user's links in submitted order, never nil.
func (r *profileRepository) GetCustomLinks(ctx context.Context, userID uint) ([]models.CustomLink, error) {
	defer observability.TrackQuery("select", "custom_links")()

	links := []models.CustomLink{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Order("id ASC").
		Find(&links).Error; err != nil {
		return nil, models.NewStoreError("load custom links", err)
	}
	return links, nil
}

// SaveProfile inserts the row on first save and overwrites every field afterwards.
func (r *profileRepository) SaveProfile(ctx context.Context, userID uint, fields models.ProfileFields) error {
	defer observability.TrackQuery("upsert", "profiles")()

	profile := models.Profile{UserID: userID, ProfileFields: fields}
	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(profileColumns),
		}).
		Create(&profile).Error
	if err != nil {
		return models.NewStoreError("save profile", err)
	}
	return nil
}

// ReplaceCustomLinks deletes every link of the user and inserts the given list.
// Entries with a blank url are dropped; positions are renumbered from zero.
func (r *profileRepository) ReplaceCustomLinks(ctx context.Context, userID uint, links []models.LinkInput) error {
	defer observability.TrackQuery("replace", "custom_links")()

	rows := make([]models.CustomLink, 0, len(links))
	for _, l := range links {
		url := strings.TrimSpace(l.URL)
		if url == "" {
			continue
		}
		rows = append(rows, models.CustomLink{
			UserID:   userID,
			Position: len(rows),
			Label:    strings.TrimSpace(l.Label),
			URL:      url,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CustomLink{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&rows).Error
	})
	if err != nil {
		return models.NewStoreError("replace custom links", err)
	}
	return nil
}

// Transaction runs fn against a repository bound to a single database transaction.
func (r *profileRepository) Transaction(ctx context.Context, fn func(repo ProfileRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&profileRepository{db: tx})
	})
}
