package screenshots

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"viewer/frontend/items"
	"viewer/models"
)

var tabs = []struct{ id, label string }{
	{TabMain, "📸 Скриншоты"},
	{TabItemSearch, "🔎 Поиск по предмету"},
	{TabItemsList, "📋 Список предметов"},
}

func writeTabs(b *strings.Builder, active string) {
	b.WriteString(`<nav class="tabs">`)
	for _, t := range tabs {
		class := "tab"
		if t.id == active {
			class += " active"
		}
		href := "/?tab=" + url.QueryEscape(t.id)
		b.WriteString(`<a class="` + class + `" href="` + templ.EscapeString(href) + `">` + templ.EscapeString(t.label) + `</a>`)
	}
	b.WriteString(`</nav>`)
}

func writeItemSearch(b *strings.Builder, f ItemSearchFilter, results []models.StructuredItem) {
	b.WriteString(`<form class="item-search" method="get" action="/">`)
	b.WriteString(`<input type="hidden" name="tab" value="` + TabItemSearch + `">`)
	b.WriteString(`<input type="search" name="item_search" placeholder="Название предмета" value="` + templ.EscapeString(f.Query) + `">`)
	for _, c := range ItemCategories {
		checked := ""
		if f.Has(c) {
			checked = " checked"
		}
		b.WriteString(`<label><input type="checkbox" name="category_` + c + `" value="1"` + checked + `> `)
		b.WriteString(templ.EscapeString(items.FormatCategory(c)) + `</label>`)
	}
	b.WriteString(`<button type="submit">Найти</button>`)
	b.WriteString(`</form>`)

	if f.Query == "" {
		return
	}
	fmt.Fprintf(b, `<p class="summary">Найдено: %d</p>`, len(results))
	if len(results) == 0 {
		return
	}
	b.WriteString(`<table class="item-results"><tr><th>Скриншот</th><th>Предмет</th><th>Заточка</th><th>Цена</th><th>Пак</th><th>Владелец</th><th>Кол-во</th><th>Категория</th><th>Дата</th></tr>`)
	for _, it := range results {
		sid := strconv.FormatInt(it.ScreenshotID, 10)
		pkg := items.NoPackageGlyph
		if it.Package {
			pkg = items.PackageGlyph
		}
		b.WriteString(`<tr data-id="` + strconv.FormatInt(it.ID, 10) + `">`)
		b.WriteString(`<td><button type="button" onclick="openImageModalFor(` + sid + `)">#` + sid + `</button></td>`)
		b.WriteString(`<td>` + templ.EscapeString(it.Title) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(it.Enhancement) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(items.FormatPrice(it.Price)) + `</td>`)
		b.WriteString(`<td>` + pkg + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(it.Owner) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(it.Count) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(items.FormatCategory(it.Category)) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(items.FormatTime(it.CreatedAt)) + `</td>`)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
}

func writeItemsList(b *strings.Builder, list []models.TrackedItem) {
	fmt.Fprintf(b, `<p class="summary">Предметов: %d</p>`, len(list))
	if len(list) == 0 {
		return
	}
	b.WriteString(`<table class="items-list"><tr><th>ID</th><th>Название</th><th>Категория</th><th>Мин. цена</th><th>Добавлен</th></tr>`)
	for _, it := range list {
		minPrice := "-"
		if it.MinPrice != nil {
			minPrice = strconv.FormatFloat(*it.MinPrice, 'f', -1, 64)
		}
		b.WriteString(`<tr>`)
		b.WriteString(`<td>` + strconv.FormatInt(it.ID, 10) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(it.Name) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(items.FormatCategory(it.Category)) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(minPrice) + `</td>`)
		b.WriteString(`<td>` + templ.EscapeString(items.FormatTime(it.CreatedAt)) + `</td>`)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
}
