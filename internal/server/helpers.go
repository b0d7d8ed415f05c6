package server

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"biolink/internal/models"
	"biolink/internal/service"

	"github.com/gofiber/fiber/v2"
)

func isAPIRequest(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// formValues returns every submitted value for key, for both multipart and
// urlencoded bodies.
func formValues(c *fiber.Ctx, key string) []string {
	if form, err := c.MultipartForm(); err == nil && form != nil {
		return form.Value[key]
	}

	raw := c.Context().PostArgs().PeekMulti(key)
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		values = append(values, string(v))
	}
	return values
}

// parseLinkInputs pairs link_label/link_url rows and appends the legacy
// customLabel/customUrl pair when present.
func parseLinkInputs(c *fiber.Ctx) []models.LinkInput {
	labels := formValues(c, "link_label")
	urls := formValues(c, "link_url")

	links := make([]models.LinkInput, 0, len(urls)+1)
	for i, u := range urls {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		links = append(links, models.LinkInput{Label: label, URL: u})
	}

	if legacyURL := c.FormValue("customUrl"); strings.TrimSpace(legacyURL) != "" {
		links = append(links, models.LinkInput{Label: c.FormValue("customLabel"), URL: legacyURL})
	}
	return links
}

func parseProfileFields(c *fiber.Ctx) models.ProfileFields {
	return models.ProfileFields{
		Name:      c.FormValue("name"),
		Bio:       c.FormValue("bio"),
		Instagram: c.FormValue("instagram"),
		Twitter:   c.FormValue("twitter"),
		YouTube:   c.FormValue("youtube"),
		LinkedIn:  c.FormValue("linkedin"),
		GitHub:    c.FormValue("github"),
	}
}

// readAvatarUpload returns nil when no file was attached.
func readAvatarUpload(c *fiber.Ctx) (*service.AvatarUpload, error) {
	fh, err := c.FormFile("avatar")
	if err != nil || fh == nil || fh.Filename == "" {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open avatar upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read avatar upload: %w", err)
	}
	return &service.AvatarUpload{Filename: fh.Filename, Content: content}, nil
}

// publicPath is the shareable path of a user's profile page. Usernames are
// free-form, so the segment is escaped.
func publicPath(username string) string {
	return "/u/" + url.PathEscape(username)
}

// usernameParam decodes the :username route segment.
func usernameParam(c *fiber.Ctx) string {
	raw := c.Params("username")
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}
