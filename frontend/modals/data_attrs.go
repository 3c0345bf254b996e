package modals

import (
	"encoding/json"

	"viewer/frontend/items"
)

// DataAttributes is the data-* contract the detail modal is filled from.
// List rows only carry data-id; the detail-modal fragment builds the full
// set server side.
type DataAttributes map[string]string

func (d DataAttributes) GetAttribute(name string) string {
	return d[name]
}

// NewDataAttributes encodes a screenshot into the detail modal contract.
func NewDataAttributes(rawText, id, imageBase64, imagePath, debugInfo string, list []items.Item) (DataAttributes, error) {
	attrs := DataAttributes{
		AttrRawText:   rawText,
		AttrID:        id,
		AttrImage:     imageBase64,
		AttrImagePath: imagePath,
		AttrDebug:     debugInfo,
		AttrItems:     "false",
	}
	if len(list) > 0 {
		encoded, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		attrs[AttrItems] = "true"
		attrs[AttrStructuredItems] = string(encoded)
	}
	return attrs, nil
}
