package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"biolink/internal/cache"
	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/observability"
	"biolink/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

var errUnknownProfile = errors.New("unknown profile")

type ProfileService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
	avatars  *AvatarService
	cache    *cache.Store
	cacheTTL time.Duration
}

// ProfileView is what the owner edits on the dashboard.
type ProfileView struct {
	HasProfile bool
	Fields     models.ProfileFields
	Links      []models.CustomLink
	UpdatedAt  time.Time
}

// PublicProfileView is the read-only page served at /u/:username.
type PublicProfileView struct {
	Username  string               `json:"username"`
	Found     bool                 `json:"found"`
	Profile   models.ProfileFields `json:"profile"`
	Socials   []models.SocialLink  `json:"socials"`
	Links     []models.CustomLink  `json:"links"`
	UpdatedAt time.Time            `json:"updated_at,omitempty"`
}

type SaveProfileInput struct {
	UserID uint
	// Username scopes public cache invalidation; looked up when empty.
	Username string
	Fields   models.ProfileFields
	Links    []models.LinkInput
	Avatar   *AvatarUpload
}

func NewProfileService(
	users repository.UserRepository,
	profiles repository.ProfileRepository,
	avatars *AvatarService,
	store *cache.Store,
	cacheTTL time.Duration,
) *ProfileService {
	return &ProfileService{
		users:    users,
		profiles: profiles,
		avatars:  avatars,
		cache:    store,
		cacheTTL: cacheTTL,
	}
}

// Dashboard returns the stored profile, or an empty one, plus the user's links.
func (s *ProfileService) Dashboard(ctx context.Context, userID uint) (*ProfileView, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	links, err := s.profiles.GetCustomLinks(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{Links: links}
	if profile != nil {
		view.HasProfile = true
		view.Fields = profile.ProfileFields
		view.UpdatedAt = profile.UpdatedAt
	}
	return view, nil
}

// Save overwrites the profile and replaces all custom links in one transaction.
// The previous avatar is kept unless a new upload is accepted.
func (s *ProfileService) Save(ctx context.Context, in SaveProfileInput) error {
	span, ctx := observability.StartSpan(ctx, "profile.Save", attribute.Int64("user.id", int64(in.UserID)))
	defer span.End()

	err := s.save(ctx, in)
	if err != nil {
		span.SetError(err)
		result := "failed"
		if models.IsCode(err, models.CodeValidation) {
			result = "invalid"
		}
		observability.ProfileSaves.WithLabelValues(result).Inc()
		return err
	}

	observability.ProfileSaves.WithLabelValues("ok").Inc()
	return nil
}

func (s *ProfileService) save(ctx context.Context, in SaveProfileInput) error {
	fields := trimFields(in.Fields)
	links := trimLinks(in.Links)

	existing, err := s.profiles.GetProfile(ctx, in.UserID)
	if err != nil {
		return err
	}
	fields.Avatar = ""
	if existing != nil {
		fields.Avatar = existing.Avatar
	}

	newAvatar, accepted, err := s.avatars.Accept(ctx, in.UserID, in.Avatar)
	if err != nil {
		return err
	}
	if accepted {
		fields.Avatar = newAvatar
	}

	err = s.profiles.Transaction(ctx, func(repo repository.ProfileRepository) error {
		if err := repo.SaveProfile(ctx, in.UserID, fields); err != nil {
			return err
		}
		return repo.ReplaceCustomLinks(ctx, in.UserID, links)
	})
	if err != nil {
		if accepted {
			s.avatars.Discard(newAvatar)
		}
		if models.IsCode(err, models.CodeStore) {
			return err
		}
		return models.NewStoreError("save profile", err)
	}

	s.invalidatePublic(ctx, in.UserID, in.Username)
	return nil
}

// PublicProfile never fails for unknown usernames; it returns a view with Found=false.
func (s *ProfileService) PublicProfile(ctx context.Context, username string) (*PublicProfileView, error) {
	span, ctx := observability.StartSpan(ctx, "profile.PublicProfile", attribute.String("profile.username", username))
	defer span.End()

	var view PublicProfileView
	hit, err := s.cache.PublicProfile(ctx, username, &view, s.cacheTTL, func() error {
		loaded, err := s.loadPublicProfile(ctx, username)
		if err != nil {
			return err
		}
		view = *loaded
		if !loaded.Found {
			return errUnknownProfile
		}
		return nil
	})
	if errors.Is(err, errUnknownProfile) {
		return &view, nil
	}
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if s.cache.Enabled() {
		result := "miss"
		if hit {
			result = "hit"
		}
		observability.PublicProfileCache.WithLabelValues(result).Inc()
	}
	return &view, nil
}

func (s *ProfileService) loadPublicProfile(ctx context.Context, username string) (*PublicProfileView, error) {
	view := &PublicProfileView{Username: username, Socials: []models.SocialLink{}, Links: []models.CustomLink{}}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return view, nil
	}
	view.Found = true
	view.Username = user.Username

	profile, err := s.profiles.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		view.Profile = profile.ProfileFields
		view.Socials = profile.SocialLinks()
		view.UpdatedAt = profile.UpdatedAt
	}

	links, err := s.profiles.GetCustomLinks(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	view.Links = links
	return view, nil
}

func (s *ProfileService) invalidatePublic(ctx context.Context, userID uint, username string) {
	if !s.cache.Enabled() {
		return
	}
	if username == "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil || user == nil {
			middleware.Logger.WarnContext(ctx, "Could not resolve username for cache invalidation",
				slog.Uint64("user_id", uint64(userID)))
			return
		}
		username = user.Username
	}
	s.cache.InvalidatePublicProfile(ctx, username)
}

func trimFields(f models.ProfileFields) models.ProfileFields {
	return models.ProfileFields{
		Name:      strings.TrimSpace(f.Name),
		Bio:       strings.TrimSpace(f.Bio),
		Avatar:    strings.TrimSpace(f.Avatar),
		Instagram: strings.TrimSpace(f.Instagram),
		Twitter:   strings.TrimSpace(f.Twitter),
		YouTube:   strings.TrimSpace(f.YouTube),
		LinkedIn:  strings.TrimSpace(f.LinkedIn),
		GitHub:    strings.TrimSpace(f.GitHub),
	}
}

// trimLinks drops entries without a url so they do not count against limits.
func trimLinks(in []models.LinkInput) []models.LinkInput {
	out := make([]models.LinkInput, 0, len(in))
	for _, l := range in {
		url := strings.TrimSpace(l.URL)
		if url == "" {
			continue
		}
		out = append(out, models.LinkInput{Label: strings.TrimSpace(l.Label), URL: url})
	}
	return out
}
