package screenshots

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"viewer/frontend/items"
	"viewer/models"
)

const (
	ResultsPerPage     = 10
	RecentActionsLimit = 5
	maxIngestBytes     = 32 << 20
)

// ErrInvalidImage is returned when an ingest carries a payload that is not
// valid base64.
var ErrInvalidImage = errors.New("image_base64 is not valid base64")

// ListFilter narrows the list page. Search matches item title, short
// title, owner and price; the price bounds compare the numeric item price.
type ListFilter struct {
	Search   string
	MinPrice string
	MaxPrice string
	Page     int
}

func (f ListFilter) active() bool {
	return f.Search != "" || f.MinPrice != "" || f.MaxPrice != ""
}

type ListResult struct {
	Screenshots []models.Screenshot
	Page        int
	TotalPages  int
	TotalCount  int
}

func (r ListResult) HasPrev() bool { return r.Page > 1 }
func (r ListResult) HasNext() bool { return r.Page < r.TotalPages }

// PageData is everything the list page renders.
type PageData struct {
	Tab           string
	Filter        ListFilter
	Result        ListResult
	ItemSearch    ItemSearchFilter
	ItemResults   []models.StructuredItem
	ItemsList     []models.TrackedItem
	Status        models.Status
	RecentActions []models.Action
	PendingAction *models.Action
}

// ItemList decodes either a JSON array of items or a single item object.
type ItemList []items.Item

func (l *ItemList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		*l = nil
		return nil
	case trimmed[0] == '{':
		var one items.Item
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*l = ItemList{one}
		return nil
	default:
		var many []items.Item
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
}

// IngestRequest is the body of POST /api/screenshots.
type IngestRequest struct {
	ImagePath   string   `json:"image_path"`
	ImageBase64 string   `json:"image_base64"`
	OCRText     string   `json:"ocr_text"`
	DebugInfo   string   `json:"debug_info"`
	RawText     string   `json:"raw_text"`
	Items       ItemList `json:"items"`
}

type IngestResponse struct {
	ID        int64  `json:"id"`
	ItemCount int    `json:"itemCount"`
	CreatedAt string `json:"createdAt"`
}

// ToItems converts stored rows to the view model.
func ToItems(rows []models.StructuredItem) []items.Item {
	out := make([]items.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, items.Item{
			Title:       row.Title,
			TitleShort:  row.TitleShort,
			Enhancement: row.Enhancement,
			Price:       row.Price,
			Count:       row.Count,
			Package:     row.Package,
			Owner:       row.Owner,
			Category:    row.Category,
		})
	}
	return out
}

func toStructuredItems(screenshotID int64, list []items.Item) []models.StructuredItem {
	out := make([]models.StructuredItem, 0, len(list))
	for _, it := range list {
		category := strings.TrimSpace(it.Category)
		if category == "" {
			category = items.CategoryUnknown
		}
		out = append(out, models.StructuredItem{
			ScreenshotID: screenshotID,
			Title:        it.Title,
			TitleShort:   it.TitleShort,
			Enhancement:  it.Enhancement,
			Price:        it.Price,
			Count:        it.Count,
			Package:      it.Package,
			Owner:        it.Owner,
			Category:     category,
		})
	}
	return out
}

// modalInfo is the caption under the image preview.
func modalInfo(s models.Screenshot) string {
	created := items.FormatTime(s.CreatedAt)
	if s.ImagePath == "" {
		return created
	}
	return created + " | " + s.ImagePath
}

func formatRFC3339(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
