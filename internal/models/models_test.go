package models

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocialLinks_OrderAndFiltering(t *testing.T) {
	f := ProfileFields{
		GitHub:    "https://github.com/ada",
		Instagram: "https://instagram.com/ada",
	}

	links := f.SocialLinks()
	require.Len(t, links, 2)
	assert.Equal(t, "instagram", links[0].Network)
	assert.Equal(t, "github", links[1].Network)
	assert.Empty(t, ProfileFields{}.SocialLinks())
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("register: %w", NewDuplicateUsernameError("ada"))

	assert.True(t, IsCode(err, CodeDuplicateUsername))
	assert.False(t, IsCode(err, CodeValidation))
	assert.False(t, IsCode(errors.New("plain"), CodeValidation))
	assert.False(t, IsCode(nil, CodeValidation))
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStoreError("save profile", cause)

	assert.Equal(t, "failed to save profile: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Username \"ada\" is already taken", NewDuplicateUsernameError("ada").Error())
}

func TestRespondWithError(t *testing.T) {
	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusBadRequest, NewValidationError("Name is too long"))
	})
	app.Get("/store", func(c *fiber.Ctx) error {
		return RespondWithError(c, fiber.StatusInternalServerError, NewStoreError("load", errors.New("secret dsn")))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/store", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), CodeStore)
	assert.NotContains(t, string(body), "secret dsn")
}
