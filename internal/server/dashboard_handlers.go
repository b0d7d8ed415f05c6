package server

import (
	"errors"
	"log/slog"

	"biolink/internal/featureflags"
	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	msgProfileSaved = "Profile saved"
	msgSaveFailed   = "Something went wrong while saving your profile."
)

// Dashboard renders the profile editor for the signed-in user.
func (s *Server) Dashboard(c *fiber.Ctx) error {
	user := currentUser(c)

	view, err := s.profileService.Dashboard(c.UserContext(), user.ID)
	if err != nil {
		middleware.Logger.ErrorContext(c.UserContext(), "Failed to load dashboard", slog.String("error", err.Error()))
		return fiber.NewError(fiber.StatusInternalServerError, "could not load your profile")
	}

	rows := make([]models.LinkInput, 0, len(view.Links)+1)
	for _, l := range view.Links {
		rows = append(rows, models.LinkInput{Label: l.Label, URL: l.URL})
	}
	return s.renderDashboard(c, fiber.StatusOK, view.Fields, rows, nil)
}

// SaveProfile stores the submitted profile, links and optional avatar. Failures
// re-render the editor with the submitted values and never abort the request.
func (s *Server) SaveProfile(c *fiber.Ctx) error {
	user := currentUser(c)
	ctx := c.UserContext()

	fields := parseProfileFields(c)
	links := parseLinkInputs(c)

	avatar, err := readAvatarUpload(c)
	if err == nil {
		err = s.profileService.Save(ctx, service.SaveProfileInput{
			UserID:   user.ID,
			Username: user.Username,
			Fields:   fields,
			Links:    links,
			Avatar:   avatar,
		})
	}
	if err == nil {
		setFlash(c, flashSuccess, msgProfileSaved)
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	status := fiber.StatusInternalServerError
	message := msgSaveFailed
	var appErr *models.AppError
	if models.IsCode(err, models.CodeValidation) && errors.As(err, &appErr) {
		status = fiber.StatusBadRequest
		message = appErr.Message
	} else {
		middleware.Logger.ErrorContext(ctx, "Failed to save profile",
			slog.Uint64("user_id", uint64(user.ID)),
			slog.String("error", err.Error()))
	}

	// Keep showing the stored avatar; the submitted one was not persisted.
	if view, derr := s.profileService.Dashboard(ctx, user.ID); derr == nil {
		fields.Avatar = view.Fields.Avatar
	}
	return s.renderDashboard(c, status, fields, links, &Flash{Kind: flashError, Message: message})
}

func (s *Server) renderDashboard(c *fiber.Ctx, status int, fields models.ProfileFields, rows []models.LinkInput, flash *Flash) error {
	user := currentUser(c)

	// Always offer one empty row for a new link.
	rows = append(rows, models.LinkInput{})

	data := fiber.Map{
		"Title":       "Your profile",
		"Profile":     fields,
		"Socials":     fields.SocialLinks(),
		"LinkRows":    rows,
		"PublicPath":  publicPath(user.Username),
		"LivePreview": s.featureFlags.Enabled(featureflags.LivePreview, user.ID),
	}
	if flash != nil {
		data["Flash"] = flash
	}
	return s.render(c, status, "index", data)
}
