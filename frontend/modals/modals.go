package modals

import (
	"encoding/json"
	"log/slog"

	"viewer/frontend/items"
)

// AttributeSource is anything that exposes string attributes by name, such
// as a rendered row. Missing attributes read as "".
type AttributeSource interface {
	GetAttribute(name string) string
}

// Data attributes read by OpenDetailModalFromData.
const (
	AttrRawText         = "data-raw-text"
	AttrID              = "data-id"
	AttrImage           = "data-image"
	AttrImagePath       = "data-image-path"
	AttrDebug           = "data-debug"
	AttrItems           = "data-items"
	AttrStructuredItems = "data-structured-items"
)

func imageDataURI(payload string) string {
	return "data:image/png;base64," + payload
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// OpenImageModal fills the preview modal and shows it.
func (p *Page) OpenImageModal(imageBase64, id, info string, list []items.Item) {
	p.Image.ImageSrc = imageDataURI(imageBase64)
	p.Image.Title = TitlePrefix + id
	p.Image.Info = info
	if len(list) > 0 {
		p.Image.Structured = items.ImageTable(list)
	} else {
		p.Image.Structured = imagePlaceholder()
	}
	p.Image.Open = true
	p.ScrollLocked = true
}

// CloseImageModal hides the preview modal and releases the scroll lock.
// Closing a closed modal is harmless.
func (p *Page) CloseImageModal() {
	p.Image.Open = false
	p.ScrollLocked = false
}

// OpenDetailModalFromData reads the data-* contract off src and opens the
// detail modal. Malformed item JSON is logged and treated as no items.
func (p *Page) OpenDetailModalFromData(src AttributeSource) {
	var list []items.Item
	hasItems := src.GetAttribute(AttrItems) == "true"
	if raw := src.GetAttribute(AttrStructuredItems); hasItems && raw != "" {
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			slog.Warn("parse structured items", slog.String("id", src.GetAttribute(AttrID)), slog.Any("err", err))
			list = nil
		}
	}
	p.OpenDetailModal(
		src.GetAttribute(AttrRawText),
		src.GetAttribute(AttrID),
		src.GetAttribute(AttrImage),
		src.GetAttribute(AttrImagePath),
		src.GetAttribute(AttrDebug),
		list,
	)
}

// OpenDetailModal fills every region of the detail modal and shows it. The
// image is hidden when there is no payload.
func (p *Page) OpenDetailModal(text, id, imageBase64, imagePath, debugInfo string, list []items.Item) {
	d := &p.Detail
	d.Title = TitlePrefix + id
	if imageBase64 != "" {
		d.ImageSrc = imageDataURI(imageBase64)
		d.ImageVisible = true
	} else {
		d.ImageSrc = ""
		d.ImageVisible = false
	}
	d.DebugInfo = orDefault(debugInfo, NoDebugInfo)
	d.RawText = orDefault(text, NoData)
	d.ImagePath = orDefault(imagePath, NoData)
	if len(list) > 0 {
		d.Structured = items.DetailTable(list)
	} else {
		d.Structured = detailPlaceholder()
	}
	d.Open = true
	p.ScrollLocked = true
}

// CloseDetailModal mirrors CloseImageModal.
func (p *Page) CloseDetailModal() {
	p.Detail.Open = false
	p.ScrollLocked = false
}

// HandleKey applies a keydown; Escape closes both modals.
func (p *Page) HandleKey(key string) {
	if key != "Escape" {
		return
	}
	p.CloseImageModal()
	p.CloseDetailModal()
}

// HandleClick applies a click on a modal. Only clicks whose target is the
// modal backdrop itself close it.
func (p *Page) HandleClick(modalID, targetID string) {
	if modalID != targetID {
		return
	}
	switch modalID {
	case ImageModalID:
		p.CloseImageModal()
	case DetailModalID:
		p.CloseDetailModal()
	}
}
