package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Screenshot is one captured screen with its OCR output.
type Screenshot struct {
	bun.BaseModel `bun:"table:screenshots,alias:sc"`

	ID        int64     `bun:"id,pk,autoincrement"`
	ImagePath string    `bun:"image_path,notnull"`
	ImageData []byte    `bun:"image_data"`
	OCRText   string    `bun:"ocr_text,notnull,default:''"`
	DebugInfo string    `bun:"debug_info,notnull,default:''"`
	JSONData  string    `bun:"json_data,notnull,default:''"`
	RawText   string    `bun:"raw_text,notnull,default:''"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`

	Items []StructuredItem `bun:"rel:has-many,join:id=screenshot_id"`
}

// StructuredItem is a parsed row recognised on a screenshot.
type StructuredItem struct {
	bun.BaseModel `bun:"table:structured_items,alias:si"`

	ID           int64     `bun:"id,pk,autoincrement"`
	ScreenshotID int64     `bun:"screenshot_id,notnull"`
	Title        string    `bun:"title,notnull,default:''"`
	TitleShort   string    `bun:"title_short,notnull,default:''"`
	Enhancement  string    `bun:"enhancement,notnull,default:''"`
	Price        string    `bun:"price,notnull,default:''"`
	Package      bool      `bun:"package,notnull,default:false"`
	Owner        string    `bun:"owner,notnull,default:''"`
	Count        string    `bun:"count,notnull,default:''"`
	Category     string    `bun:"category,notnull,default:'unknown'"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Action is a control command queued for the capture bot.
type Action struct {
	bun.BaseModel `bun:"table:actions,alias:a"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Ref       string    `bun:"ref,notnull,unique"`
	Action    string    `bun:"action,notnull"`
	Executed  bool      `bun:"executed,notnull,default:false"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Status is an entry in the bot status history; the newest row wins.
type Status struct {
	bun.BaseModel `bun:"table:status,alias:st"`

	ID            int64     `bun:"id,pk,autoincrement"`
	CurrentStatus string    `bun:"current_status,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// AuditLog captures change history for control actions and ingests.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// TrackedItem is an entry of the watch list the bot cycles through.
type TrackedItem struct {
	bun.BaseModel `bun:"table:items_list,alias:il"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Name      string    `bun:"name,notnull"`
	Category  string    `bun:"category,notnull,default:'buy_consumables'"`
	MinPrice  *float64  `bun:"min_price"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
