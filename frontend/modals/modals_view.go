package modals

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func imagePlaceholder() templ.Component {
	return templ.Raw(`<p style="margin: 0; color: #666; font-style: italic;">` + NoStructuredData + `</p>`)
}

func detailPlaceholder() templ.Component {
	return templ.Raw(`<p>` + NoStructuredData + `</p>`)
}

func display(open bool) string {
	if open {
		return "block"
	}
	return "none"
}

// ImageModalView renders the preview modal container.
func ImageModalView(m ImageModal) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="` + ImageModalID + `" class="modal" style="display: ` + display(m.Open) + `">`)
		b.WriteString(`<div class="modal-content">`)
		b.WriteString(`<span class="close" onclick="closeImageModal()">&times;</span>`)
		b.WriteString(`<h3 id="modalTitle">` + templ.EscapeString(m.Title) + `</h3>`)
		b.WriteString(`<img id="modalImage" alt="screenshot" src="` + templ.EscapeString(m.ImageSrc) + `">`)
		b.WriteString(`<pre id="modalInfo">` + templ.EscapeString(m.Info) + `</pre>`)
		b.WriteString(`<div id="modalStructuredData" style="display: block">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if m.Structured != nil {
			if err := m.Structured.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</div></div></div>`)
		return err
	})
}

// DetailModalView renders the detail modal container.
func DetailModalView(m DetailModal) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div id="` + DetailModalID + `" class="modal" style="display: ` + display(m.Open) + `">`)
		b.WriteString(`<div class="modal-content detail-content">`)
		b.WriteString(`<span class="close" onclick="closeDetailModal()">&times;</span>`)
		b.WriteString(`<h3 id="detailModalTitle">` + templ.EscapeString(m.Title) + `</h3>`)
		b.WriteString(`<img id="detailModalImage" alt="screenshot" src="` + templ.EscapeString(m.ImageSrc) + `" style="display: ` + display(m.ImageVisible) + `">`)
		b.WriteString(`<h4>Debug</h4><pre id="detailModalDebugInfo">` + templ.EscapeString(m.DebugInfo) + `</pre>`)
		b.WriteString(`<h4>Структурированные данные</h4><div id="detailModalStructuredData">`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if m.Structured != nil {
			if err := m.Structured.Render(ctx, w); err != nil {
				return err
			}
		}
		b.Reset()
		b.WriteString(`</div>`)
		b.WriteString(`<h4>Сырой текст</h4><pre id="detailModalRawText">` + templ.EscapeString(m.RawText) + `</pre>`)
		b.WriteString(`<h4>Путь к изображению</h4><p id="detailModalImagePath">` + templ.EscapeString(m.ImagePath) + `</p>`)
		b.WriteString(`</div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// PageModals renders both containers in their current state.
func PageModals(p Page) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ImageModalView(p.Image).Render(ctx, w); err != nil {
			return err
		}
		return DetailModalView(p.Detail).Render(ctx, w)
	})
}
