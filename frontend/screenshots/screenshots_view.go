package screenshots

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"viewer/frontend/actions"
	"viewer/frontend/items"
	"viewer/frontend/modals"
	sharedhtml "viewer/frontend/shared/html"
	"viewer/models"
)

const pageTitle = "Screenshot Viewer"

// ListPage renders the full list page. Tables are left unmarked; the
// handler runs the highlight pass over the result.
func ListPage(data PageData) templ.Component {
	return sharedhtml.Layout(pageTitle, listBody(data))
}

func listBody(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<main class="viewer">`)
		writeStatusPanel(&b, data.Status, data.RecentActions, data.PendingAction)
		writeTabs(&b, data.Tab)

		switch data.Tab {
		case TabItemSearch:
			writeItemSearch(&b, data.ItemSearch, data.ItemResults)
		case TabItemsList:
			writeItemsList(&b, data.ItemsList)
		default:
			writeSearchForm(&b, data.Filter)
			fmt.Fprintf(&b, `<p class="summary">Всего: %d</p>`, data.Result.TotalCount)
			if _, err := io.WriteString(w, b.String()); err != nil {
				return err
			}
			for _, s := range data.Result.Screenshots {
				if err := screenshotRow(s).Render(ctx, w); err != nil {
					return err
				}
			}
			b.Reset()
			writePagination(&b, data.Filter, data.Result)
		}

		b.WriteString(`</main>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return modals.PageModals(modals.Page{}).Render(ctx, w)
	})
}

func writeStatusPanel(b *strings.Builder, status models.Status, recent []models.Action, pending *models.Action) {
	b.WriteString(`<section class="status-panel">`)
	b.WriteString(`<span id="statusBadge" class="status-badge" data-status="` + templ.EscapeString(status.CurrentStatus) + `">`)
	b.WriteString(templ.EscapeString(items.FormatStatus(status.CurrentStatus)))
	b.WriteString(`</span>`)
	updated := ""
	if !status.UpdatedAt.IsZero() {
		updated = items.FormatTime(status.UpdatedAt)
	}
	b.WriteString(` <span id="statusUpdatedAt">` + templ.EscapeString(updated) + `</span>`)
	if pending != nil {
		b.WriteString(` <span id="pendingAction" class="pending-action" title="` + templ.EscapeString(items.FormatTime(pending.CreatedAt)) + `">⏳ ` + templ.EscapeString(pending.Action) + `</span>`)
	}
	b.WriteString(`<div class="actions">`)
	for _, a := range []string{actions.ActionStart, actions.ActionStop, actions.ActionRestart} {
		b.WriteString(`<button type="button" onclick="sendAction('` + a + `')">` + a + `</button>`)
	}
	b.WriteString(`</div>`)
	if len(recent) > 0 {
		b.WriteString(`<ul class="recent-actions">`)
		for _, a := range recent {
			state := "⏳"
			if a.Executed {
				state = "✅"
			}
			b.WriteString(`<li>` + state + ` ` + templ.EscapeString(a.Action) + ` <time>` + templ.EscapeString(items.FormatTime(a.CreatedAt)) + `</time></li>`)
		}
		b.WriteString(`</ul>`)
	}
	b.WriteString(`</section>`)
}

func writeSearchForm(b *strings.Builder, f ListFilter) {
	b.WriteString(`<form class="search" method="get" action="/">`)
	b.WriteString(`<input type="search" name="search" placeholder="Поиск" value="` + templ.EscapeString(f.Search) + `">`)
	b.WriteString(`<input type="number" step="any" name="min_price" placeholder="Мин. цена" value="` + templ.EscapeString(f.MinPrice) + `">`)
	b.WriteString(`<input type="number" step="any" name="max_price" placeholder="Макс. цена" value="` + templ.EscapeString(f.MaxPrice) + `">`)
	b.WriteString(`<button type="submit">Найти</button>`)
	b.WriteString(`</form>`)
}

func screenshotRow(s models.Screenshot) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		list := ToItems(s.Items)
		id := strconv.FormatInt(s.ID, 10)

		// The detail modal loads its data attributes from the server by id.
		var b strings.Builder
		b.WriteString(`<article class="screenshot" id="screenshot-` + id + `" data-id="` + id + `">`)
		b.WriteString(`<header><strong>#` + id + `</strong> <time>` + templ.EscapeString(items.FormatTime(s.CreatedAt)) + `</time>`)
		b.WriteString(` <span class="path">` + templ.EscapeString(s.ImagePath) + `</span></header>`)
		b.WriteString(`<div class="row-actions">`)
		b.WriteString(`<button type="button" onclick="openImageModalFor(` + id + `)">🖼️</button>`)
		b.WriteString(`<button type="button" onclick="openDetailModalFromData(this.closest('article'))">🔍</button>`)
		b.WriteString(`<a href="/screenshots/` + id + `/items.csv">CSV</a> <a href="/screenshots/` + id + `/report.pdf">PDF</a>`)
		b.WriteString(`</div>`)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if len(list) > 0 {
			if err := items.StaticTable(list).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</article>`)
		return err
	})
}

func pageURL(f ListFilter, page int) string {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.MinPrice != "" {
		q.Set("min_price", f.MinPrice)
	}
	if f.MaxPrice != "" {
		q.Set("max_price", f.MaxPrice)
	}
	q.Set("page", strconv.Itoa(page))
	return "/?" + q.Encode()
}

func writePagination(b *strings.Builder, f ListFilter, r ListResult) {
	if r.TotalPages <= 1 {
		return
	}
	b.WriteString(`<nav class="pagination">`)
	if r.HasPrev() {
		b.WriteString(`<a href="` + templ.EscapeString(pageURL(f, r.Page-1)) + `">&laquo;</a>`)
	}
	fmt.Fprintf(b, ` <span>%d / %d</span> `, r.Page, r.TotalPages)
	if r.HasNext() {
		b.WriteString(`<a href="` + templ.EscapeString(pageURL(f, r.Page+1)) + `">&raquo;</a>`)
	}
	b.WriteString(`</nav>`)
}
