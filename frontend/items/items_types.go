package items

// Category codes produced by the OCR classifier.
const (
	CategoryBuyConsumables  = "buy_consumables"
	CategoryBuyEquipment    = "buy_equipment"
	CategorySellConsumables = "sell_consumables"
	CategorySellEquipment   = "sell_equipment"
	CategoryUnknown         = "unknown"
)

// Item is one structured row recognised on a screenshot.
type Item struct {
	Title       string `json:"title"`
	TitleShort  string `json:"titleShort"`
	Enhancement string `json:"enhancement"`
	Price       string `json:"price"`
	Count       string `json:"count"`
	Package     bool   `json:"package"`
	Owner       string `json:"owner"`
	Category    string `json:"category"`
}

// GroupKey identifies items that are comparable for the cheapest flag.
type GroupKey struct {
	Enhancement string
	Package     bool
}

func (it Item) Key() GroupKey {
	return GroupKey{Enhancement: it.Enhancement, Package: it.Package}
}

// Row classes written on table rows that hold a group minimum.
const (
	ClassCheapest        = "cheapest"
	ClassCheapestPackage = "cheapest-package"
	ClassCheapestItem    = "cheapest-item"
)

// PackageGlyph marks packaged items in rendered tables.
const (
	PackageGlyph   = "✔️"
	NoPackageGlyph = "❌"
)
