package server

import (
	"log/slog"
	"time"

	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/service"

	"github.com/gofiber/fiber/v2"
)

const sessionCookieName = "biolink_session"

// SessionMiddleware resolves the session cookie to a user. Invalid, expired or
// revoked cookies are cleared and the request continues anonymously.
func (s *Server) SessionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(sessionCookieName)
		if token == "" {
			return c.Next()
		}

		user, err := s.authService.CurrentUser(c.UserContext(), token)
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "Failed to resolve session",
				slog.String("error", err.Error()))
			return c.Next()
		}
		if user == nil {
			s.clearSessionCookie(c)
			return c.Next()
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		c.SetUserContext(middleware.WithUserID(c.UserContext(), user.ID))
		return c.Next()
	}
}

// AuthRequired sends anonymous visitors to the login page.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func (s *Server) setSessionCookie(c *fiber.Ctx, session *service.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
