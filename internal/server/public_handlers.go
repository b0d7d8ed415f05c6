package server

import (
	"biolink/internal/featureflags"
	"biolink/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PublicProfile renders the read-only page for a username. Unknown usernames
// get the not-found view with a 404 status.
func (s *Server) PublicProfile(c *fiber.Ctx) error {
	username := usernameParam(c)

	view, err := s.profileService.PublicProfile(c.UserContext(), username)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	title := "@" + view.Username
	if !view.Found {
		status = fiber.StatusNotFound
		title = "Profile not found"
	}
	return s.render(c, status, "public_profile", fiber.Map{
		"Title": title,
		"View":  view,
	})
}

// PublicProfileJSON serves the same view as JSON while the public_api flag is
// rolled out to the requested username.
func (s *Server) PublicProfileJSON(c *fiber.Ctx) error {
	username := usernameParam(c)

	if !s.featureFlags.EnabledFor(featureflags.PublicAPI, username) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile", username))
	}

	view, err := s.profileService.PublicProfile(c.UserContext(), username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !view.Found {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Profile", username))
	}
	return c.JSON(view)
}

// GetFeatureFlags returns the flags as evaluated for the signed-in user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	user := currentUser(c)
	return c.JSON(fiber.Map{
		"flags": s.featureFlags.Snapshot(user.ID),
	})
}
