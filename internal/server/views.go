package server

import (
	"strings"

	"biolink/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
)

const layoutName = "layouts/main"

func newViewEngine() *html.Engine {
	engine := html.NewFileSystem(web.Templates(), ".html")
	engine.AddFunc("avatarURL", avatarURL)
	engine.AddFunc("initial", initial)
	engine.AddFunc("profilePath", publicPath)
	return engine
}

// avatarURL maps a stored avatar path to the URL it is served at.
func avatarURL(stored string) string {
	if stored == "" {
		return ""
	}
	return "/static/" + strings.TrimPrefix(stored, "/")
}

// initial is the placeholder letter shown when no avatar is set.
func initial(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "?"
	}
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// render fills the values every page needs and renders name inside the main layout.
func (s *Server) render(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	// A pending notice is always consumed, even when the page brings its own.
	if pending := consumeFlash(c); pending != nil {
		if _, ok := data["Flash"]; !ok {
			data["Flash"] = pending
		}
	}
	if _, ok := data["Title"]; !ok {
		data["Title"] = "biolink"
	}
	data["CurrentUser"] = currentUser(c)

	return c.Status(status).Render(name, data, layoutName)
}
