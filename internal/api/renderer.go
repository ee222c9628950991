package api

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists every renderable page. Each page file defines a "content"
// block that the shared layout wraps.
var pageNames = []string{
	"login", "home", "submit", "history", "review", "records",
	"users", "detail", "error",
}

// Renderer implements echo.Renderer over the embedded HTML templates. Every
// page is parsed together with the layout and the shared table partial at
// startup, so template errors surface on boot rather than per request.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() *Renderer {
	shared := []string{"templates/layout.html", "templates/table.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		files := append(append([]string{}, shared...), "templates/"+name+".html")
		pages[name] = template.Must(template.ParseFS(templateFS, files...))
	}
	return &Renderer{pages: pages}
}

// Render satisfies echo.Renderer. Output is always escaped by html/template;
// backend-supplied text never reaches the page unescaped.
func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
