package report

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"time"

	"github.com/arguide/backoffice/internal/resources"
)

//go:embed templates/grid.html
var templatesFS embed.FS

var gridTemplate = template.Must(template.ParseFS(templatesFS, "templates/grid.html"))

// Renderer turns a rendered grid into a PDF document.
type Renderer struct {
	client *Client
	now    func() time.Time
}

// NewRenderer returns a Renderer backed by client.
func NewRenderer(client *Client) *Renderer {
	return &Renderer{client: client, now: time.Now}
}

type gridDocument struct {
	Grid        resources.Grid
	PageNumber  int
	TotalPages  int
	ColumnSpan  int
	GeneratedAt string
}

// GridHTML renders grid as a standalone HTML document.
func (r *Renderer) GridHTML(grid resources.Grid) ([]byte, error) {
	pages := grid.TotalPages
	if pages == 0 {
		pages = 1
	}
	doc := gridDocument{
		Grid:        grid,
		PageNumber:  grid.Query.Page + 1,
		TotalPages:  pages,
		ColumnSpan:  len(grid.Columns) + 1,
		GeneratedAt: r.now().UTC().Format("02 Jan 2006 15:04 MST"),
	}
	var buf bytes.Buffer
	if err := gridTemplate.Execute(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Grid renders grid to PDF.
func (r *Renderer) Grid(ctx context.Context, grid resources.Grid) ([]byte, error) {
	html, err := r.GridHTML(grid)
	if err != nil {
		return nil, err
	}
	return r.client.RenderHTML(ctx, html, PageOptions{Landscape: len(grid.Columns) > 4})
}
