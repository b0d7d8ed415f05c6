package server

import (
	"errors"
	"log/slog"

	"biolink/internal/middleware"
	"biolink/internal/models"
	"biolink/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	msgAccountCreated   = "Account created! You can sign in now."
	msgSignedIn         = "Signed in successfully."
	msgSignedOut        = "You have been signed out."
	msgUsernameTaken    = "Username already taken. Try another one."
	msgRegisterFailed   = "Something went wrong while creating your account."
	msgInvalidLoginPair = "Invalid username or password"
	msgLoginFailed      = "Something went wrong while signing you in."
)

// RegisterPage renders the sign-up form.
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, fiber.StatusOK, "register", fiber.Map{"Title": "Create account", "Username": ""})
}

// Register creates an account and sends the user to the login page.
func (s *Server) Register(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	in := service.RegisterInput{
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm"),
	}

	_, err := s.authService.Register(c.UserContext(), in)
	if err == nil {
		setFlash(c, flashSuccess, msgAccountCreated)
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	status := fiber.StatusOK
	message := msgRegisterFailed
	var appErr *models.AppError
	switch {
	case models.IsCode(err, models.CodeValidation) && errors.As(err, &appErr):
		message = appErr.Message
	case models.IsCode(err, models.CodeDuplicateUsername):
		status = fiber.StatusConflict
		message = msgUsernameTaken
	default:
		status = fiber.StatusInternalServerError
		middleware.Logger.ErrorContext(c.UserContext(), "Registration failed", slog.String("error", err.Error()))
	}

	return s.render(c, status, "register", fiber.Map{
		"Title":    "Create account",
		"Flash":    &Flash{Kind: flashError, Message: message},
		"Username": in.Username,
	})
}

// LoginPage renders the sign-in form.
func (s *Server) LoginPage(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return s.render(c, fiber.StatusOK, "login", fiber.Map{"Title": "Sign in", "Username": ""})
}

// Login verifies credentials and sets the session cookie.
func (s *Server) Login(c *fiber.Ctx) error {
	if currentUser(c) != nil {
		return c.Redirect("/", fiber.StatusSeeOther)
	}

	username := c.FormValue("username")
	session, err := s.authService.Login(c.UserContext(), username, c.FormValue("password"))
	if err != nil {
		status := fiber.StatusUnauthorized
		message := msgInvalidLoginPair
		if !models.IsCode(err, models.CodeInvalidCredentials) {
			status = fiber.StatusInternalServerError
			message = msgLoginFailed
			middleware.Logger.ErrorContext(c.UserContext(), "Login failed", slog.String("error", err.Error()))
		}
		return s.render(c, status, "login", fiber.Map{
			"Title":    "Sign in",
			"Flash":    &Flash{Kind: flashError, Message: message},
			"Username": username,
		})
	}

	s.setSessionCookie(c, session)
	setFlash(c, flashSuccess, msgSignedIn)
	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout revokes the current session and clears the cookie.
func (s *Server) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(sessionCookieName); token != "" {
		_ = s.authService.Logout(c.UserContext(), token)
	}
	s.clearSessionCookie(c)
	setFlash(c, flashSuccess, msgSignedOut)
	return c.Redirect("/login", fiber.StatusSeeOther)
}
