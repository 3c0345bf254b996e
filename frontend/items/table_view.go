package items

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

var (
	imageHeaders  = []string{"Title", "Title Short", "Enhancement", "Price", "Count", "Package", "Owner", "Category"}
	detailHeaders = []string{"Название", "Краткое название", "Улучшение", "Цена", "Количество", "Пакет", "Владелец", "Категория"}
)

// ImageTable renders items for the image modal. Group minimums carry the
// cheapest-item class.
func ImageTable(list []Item) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		cheapest := CheapestForImage(list)
		var b strings.Builder
		b.WriteString(`<h4 style="margin: 0 0 10px 0; color: #333; font-size: 1.1em;">📋 Структурированные данные:</h4>`)
		b.WriteString(`<table class="modal-structured-table">`)
		writeHeaderRow(&b, imageHeaders)
		for i, it := range list {
			class := ""
			if cheapest[i] {
				class = ClassCheapestItem
			}
			writeItemRow(&b, it, class, "")
		}
		b.WriteString(`</table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// DetailTable renders items for the detail modal. Group minimums carry
// cheapest or cheapest-package.
func DetailTable(list []Item) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		cheapest := CheapestForDetail(list)
		var b strings.Builder
		b.WriteString(`<table class="structured-table"><thead>`)
		writeHeaderRow(&b, detailHeaders)
		b.WriteString(`</thead><tbody>`)
		for i, it := range list {
			writeItemRow(&b, it, DetailRowClass(cheapest[i], it.Package), NoPackageGlyph)
		}
		b.WriteString(`</tbody></table>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// StaticTable renders an unmarked table inside a structured-table block.
// HighlightCheapestItems marks it after the page is rendered.
func StaticTable(list []Item) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<div class="structured-table"><table>`)
		writeHeaderRow(&b, detailHeaders)
		for _, it := range list {
			writeItemRow(&b, it, "", NoPackageGlyph)
		}
		b.WriteString(`</table></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeHeaderRow(b *strings.Builder, headers []string) {
	b.WriteString(`<tr>`)
	for _, h := range headers {
		b.WriteString(`<th>`)
		b.WriteString(templ.EscapeString(h))
		b.WriteString(`</th>`)
	}
	b.WriteString(`</tr>`)
}

func writeItemRow(b *strings.Builder, it Item, class, noPackage string) {
	b.WriteString(`<tr class="`)
	b.WriteString(templ.EscapeString(class))
	b.WriteString(`">`)
	pkg := noPackage
	if it.Package {
		pkg = PackageGlyph
	}
	for _, cell := range []string{
		it.Title,
		it.TitleShort,
		it.Enhancement,
		FormatPrice(it.Price),
		it.Count,
		pkg,
		it.Owner,
		FormatCategory(it.Category),
	} {
		b.WriteString(`<td>`)
		b.WriteString(templ.EscapeString(cell))
		b.WriteString(`</td>`)
	}
	b.WriteString(`</tr>`)
}
