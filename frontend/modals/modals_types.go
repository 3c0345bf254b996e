package modals

import "github.com/a-h/templ"

// Element ids shared with the browser script.
const (
	ImageModalID  = "imageModal"
	DetailModalID = "detailModal"
)

// Placeholder texts for empty regions.
const (
	NoData           = "Нет данных"
	NoDebugInfo      = "Нет debug информации"
	NoStructuredData = "Нет структурированных данных"
)

// TitlePrefix precedes the screenshot id in modal titles.
const TitlePrefix = "ШНЫРЬ НАМУТИЛ СКРИНШОТ #"

// ImageModal is the quick preview: picture, OCR info and item table.
type ImageModal struct {
	Open       bool
	Title      string
	ImageSrc   string
	Info       string
	Structured templ.Component
}

// DetailModal shows everything stored for one screenshot.
type DetailModal struct {
	Open         bool
	Title        string
	ImageSrc     string
	ImageVisible bool
	DebugInfo    string
	Structured   templ.Component
	RawText      string
	ImagePath    string
}

// Page holds the modal state of one viewer page. Both modals start closed.
type Page struct {
	Image        ImageModal
	Detail       DetailModal
	ScrollLocked bool
}
