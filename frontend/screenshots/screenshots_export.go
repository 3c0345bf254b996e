package screenshots

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"viewer/frontend/items"
	"viewer/models"
)

var csvHeader = []string{"title", "title_short", "enhancement", "price", "count", "package", "owner", "category", "cheapest"}

// writeItemsCSV writes one line per item. The cheapest column follows the
// detail table, so exported flags match what the modal shows.
func writeItemsCSV(w io.Writer, list []items.Item) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	cheapest := items.CheapestForDetail(list)
	for i, it := range list {
		record := []string{
			it.Title,
			it.TitleShort,
			it.Enhancement,
			it.Price,
			it.Count,
			strconv.FormatBool(it.Package),
			it.Owner,
			it.Category,
			strconv.FormatBool(cheapest[i]),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func reportBarcodeValue(id int64) string {
	return "S" + strconv.FormatInt(id, 10)
}

var pdfColumns = []struct {
	header string
	width  float64
}{
	{"Title", 70},
	{"Short", 40},
	{"Enh.", 20},
	{"Price", 30},
	{"Count", 18},
	{"Pkg", 14},
	{"Owner", 40},
	{"Category", 35},
}

// renderScreenshotReportPDF lays out the screenshot, its items and a code128
// barcode of the screenshot reference. Cheapest rows are shaded.
func renderScreenshotReportPDF(s models.Screenshot, printedAt time.Time) ([]byte, error) {
	barcodeValue := reportBarcodeValue(s.ID)
	barcodePNG, err := renderCode128PNG(barcodeValue, 900, 180)
	if err != nil {
		return nil, fmt.Errorf("render barcode: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Screenshot %d", s.ID), false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, fmt.Sprintf("SCREENSHOT #%d", s.ID), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, "Captured: "+items.FormatTime(s.CreatedAt), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Printed: "+printedAt.Format("02.01.2006 15:04"), "", 1, "L", false, 0, "")
	if s.ImagePath != "" {
		pdf.CellFormat(0, 6, "Path: "+tr(s.ImagePath), "", 1, "L", false, 0, "")
	}

	opt := gofpdf.ImageOptions{ReadDpi: false, ImageType: "PNG"}
	barcodeName := "screenshot-barcode-" + strconv.FormatInt(s.ID, 10)
	pdf.RegisterImageOptionsReader(barcodeName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	pdf.ImageOptions(barcodeName, pageW-10-80, 10, 80, 16, false, opt, 0, "")
	pdf.SetXY(pageW-10-80, 27)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 5, barcodeValue, "", 1, "C", false, 0, "")

	pdf.SetY(40)
	if imageType := pdfImageType(s.ImageData); imageType != "" {
		shotOpt := gofpdf.ImageOptions{ReadDpi: false, ImageType: imageType}
		shotName := "screenshot-" + strconv.FormatInt(s.ID, 10)
		info := pdf.RegisterImageOptionsReader(shotName, shotOpt, bytes.NewReader(s.ImageData))
		if pdf.Ok() && info != nil {
			w, h := 120.0, 120.0*info.Height()/info.Width()
			if h > 70 {
				w, h = 70*info.Width()/info.Height(), 70
			}
			pdf.ImageOptions(shotName, 10, 40, w, h, false, shotOpt, 0, "")
			pdf.SetY(40 + h + 4)
		} else {
			pdf.ClearError()
		}
	}

	list := ToItems(s.Items)
	if len(list) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.CellFormat(0, 8, "No structured items", "", 1, "L", false, 0, "")
	} else {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(220, 220, 220)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 7, col.header, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetFillColor(255, 243, 176)
		cheapest := items.CheapestForDetail(list)
		for i, it := range list {
			pkg := "-"
			if it.Package {
				pkg = "yes"
			}
			cells := []string{it.Title, it.TitleShort, it.Enhancement, items.FormatPrice(it.Price), it.Count, pkg, it.Owner, it.Category}
			for j, col := range pdfColumns {
				pdf.CellFormat(col.width, 6, tr(truncate(cells[j], 40)), "1", 0, "L", cheapest[i], 0, "")
			}
			pdf.Ln(-1)
		}
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func pdfImageType(blob []byte) string {
	if len(blob) == 0 {
		return ""
	}
	switch http.DetectContentType(blob) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	bounds := scaled.Bounds()
	normalized := image.NewNRGBA(bounds)
	draw.Draw(normalized, bounds, scaled, bounds.Min, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, normalized); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
