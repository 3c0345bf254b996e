package html

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the page shell with the stylesheet and the viewer
// script.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!doctype html><html lang="ru"><head><meta charset="utf-8">` +
			`<meta name="viewport" content="width=device-width, initial-scale=1">` +
			`<title>` + templ.EscapeString(title) + `</title>` +
			`<link rel="stylesheet" href="/assets/app.css"></head><body>`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, ViewerScript()+`</body></html>`)
		return err
	})
}
