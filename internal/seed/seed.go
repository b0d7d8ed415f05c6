// Package seed fills the database with demo users, profiles and links for
// local development.
package seed

import (
	"context"
	"fmt"
	"strings"

	"biolink/internal/models"
	"biolink/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded account.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	MaxLinks    int
	ShouldClean bool
	// Seed makes the generated data reproducible; 0 picks a random seed.
	Seed int64
	// HashCost overrides the bcrypt cost; 0 means bcrypt.DefaultCost.
	HashCost int
}

// Seeder creates demo data through the repositories.
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	profiles repository.ProfileRepository
	faker    *gofakeit.Faker
	opts     Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.MaxLinks < 0 {
		opts.MaxLinks = 0
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		profiles: repository.NewProfileRepository(db),
		faker:    gofakeit.New(opts.Seed),
		opts:     opts,
	}
}

// ClearAll removes every row, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&models.CustomLink{}, &models.Profile{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds opts.NumUsers users, each with a profile and up to opts.MaxLinks links.
func (s *Seeder) Run(ctx context.Context) ([]*models.User, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.opts.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user := &models.User{Username: s.username(i), PasswordHash: string(hash)}
		if err := s.users.Create(ctx, user); err != nil {
			return users, fmt.Errorf("create user %s: %w", user.Username, err)
		}

		if err := s.seedProfile(ctx, user); err != nil {
			return users, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (s *Seeder) seedProfile(ctx context.Context, user *models.User) error {
	f := s.faker
	handle := strings.ToLower(user.Username)

	fields := models.ProfileFields{
		Name: f.Name(),
		Bio:  truncateRunes(f.HackerPhrase(), 280),
	}
	if f.Bool() {
		fields.Instagram = "https://instagram.com/" + handle
	}
	if f.Bool() {
		fields.Twitter = "https://twitter.com/" + handle
	}
	if f.Bool() {
		fields.YouTube = "https://youtube.com/@" + handle
	}
	if f.Bool() {
		fields.LinkedIn = "https://linkedin.com/in/" + handle
	}
	fields.GitHub = "https://github.com/" + handle

	var links []models.LinkInput
	if s.opts.MaxLinks > 0 {
		n := f.Number(0, s.opts.MaxLinks)
		links = make([]models.LinkInput, 0, n)
		for j := 0; j < n; j++ {
			links = append(links, models.LinkInput{
				Label: truncateRunes(f.BuzzWord()+" "+f.Noun(), 100),
				URL:   f.URL(),
			})
		}
	}

	return s.profiles.Transaction(ctx, func(repo repository.ProfileRepository) error {
		if err := repo.SaveProfile(ctx, user.ID, fields); err != nil {
			return fmt.Errorf("save profile for %s: %w", user.Username, err)
		}
		if err := repo.ReplaceCustomLinks(ctx, user.ID, links); err != nil {
			return fmt.Errorf("save links for %s: %w", user.Username, err)
		}
		return nil
	})
}

// username is unique per index and matches the registration rules.
func (s *Seeder) username(i int) string {
	base := strings.ToLower(s.faker.FirstName())
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, base)
	if base == "" {
		base = "user"
	}
	if len(base) > 20 {
		base = base[:20]
	}
	return fmt.Sprintf("%s_%d", base, i+1)
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
