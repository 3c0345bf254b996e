package screenshots

import (
	"net/url"
	"slices"
	"strings"

	"viewer/frontend/items"
)

// Page tabs selected by the tab query parameter.
const (
	TabMain       = "main"
	TabItemSearch = "item_search"
	TabItemsList  = "items_list"
)

// ItemSearchLimit caps one item search result set.
const ItemSearchLimit = 200

// ItemCategories are the searchable categories in display order.
var ItemCategories = []string{
	items.CategoryBuyConsumables,
	items.CategoryBuyEquipment,
	items.CategorySellConsumables,
	items.CategorySellEquipment,
}

// IsKnownCategory reports whether c is one of ItemCategories.
func IsKnownCategory(c string) bool {
	return slices.Contains(ItemCategories, c)
}

// ItemSearchFilter selects structured items by title within categories.
type ItemSearchFilter struct {
	Query      string
	Categories []string
}

// Has reports whether category c is selected.
func (f ItemSearchFilter) Has(c string) bool {
	return slices.Contains(f.Categories, c)
}

// ParseItemSearchFilter reads item_search and the category_<name>=1
// checkboxes. With no checkbox set every category is searched.
func ParseItemSearchFilter(q url.Values) ItemSearchFilter {
	f := ItemSearchFilter{Query: strings.TrimSpace(q.Get("item_search"))}
	for _, c := range ItemCategories {
		if q.Get("category_"+c) == "1" {
			f.Categories = append(f.Categories, c)
		}
	}
	if len(f.Categories) == 0 {
		f.Categories = append([]string(nil), ItemCategories...)
	}
	return f
}

// TrackedItemInput is one entry of an items list import.
type TrackedItemInput struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	MinPrice *float64 `json:"min_price"`
}

type ItemsListImportResponse struct {
	Imported int `json:"imported"`
}
