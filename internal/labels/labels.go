// Package labels renders printable QR slot labels for storage units.
package labels

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/erazemk/klet/internal/grid"
	"github.com/erazemk/klet/internal/model"
)

// qrScheme prefixes the content of every slot QR code.
const qrScheme = "klet://unit/"

// Sheet describes an A4 label sheet in millimetres.
type Sheet struct {
	Cols       int
	Rows       int
	MarginTop  float64
	MarginLeft float64
	GapX       float64
	GapY       float64
}

// DefaultSheet fits 3 x 8 labels of 70 x 37 mm on A4.
var DefaultSheet = Sheet{Cols: 3, Rows: 8, MarginTop: 0.5, MarginLeft: 0, GapX: 0, GapY: 0}

// QRContent is what a slot's QR code encodes.
func QRContent(unitID string, s grid.Slot) string {
	return qrScheme + unitID + "/slot/" + s.String()
}

// ParseQRContent reverses QRContent.
func ParseQRContent(content string) (unitID string, s grid.Slot, err error) {
	rest, ok := strings.CutPrefix(content, qrScheme)
	if !ok {
		return "", grid.Slot{}, fmt.Errorf("label %q: unknown scheme", content)
	}
	unitID, slot, ok := strings.Cut(rest, "/slot/")
	if !ok || unitID == "" {
		return "", grid.Slot{}, fmt.Errorf("label %q: missing slot", content)
	}
	parts := strings.Split(slot, "-")
	if len(parts) != 3 {
		return "", grid.Slot{}, fmt.Errorf("label %q: slot must be x-y-depth", content)
	}
	var xyz [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return "", grid.Slot{}, fmt.Errorf("label %q: invalid coordinate %q", content, p)
		}
		xyz[i] = n
	}
	return unitID, grid.Slot{X: xyz[0], Y: xyz[1], Depth: xyz[2]}, nil
}

// Caption is the human-readable slot name printed under the code. Rows,
// columns and depth are numbered from one on paper.
func Caption(s grid.Slot) string {
	return fmt.Sprintf("R%d C%d D%d", s.Y+1, s.X+1, s.Depth+1)
}

// UnitPDF renders one label per slot of u in allocation order. Occupied
// slots carry the name of the wine stored there.
func UnitPDF(u model.StorageUnit, bottles []model.Bottle, sheet Sheet) ([]byte, error) {
	if sheet.Cols <= 0 || sheet.Rows <= 0 {
		return nil, fmt.Errorf("label sheet needs at least one row and column")
	}
	slots := grid.AllSlots(u)
	if len(slots) == 0 {
		return nil, fmt.Errorf("unit %s has no slots", u.ID)
	}

	wineAt := make(map[grid.Slot]string)
	for _, b := range bottles {
		if b.UnitID == u.ID && b.Status == model.BottleStored {
			wineAt[grid.SlotOf(b)] = b.WineName
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := pdf.GetPageSize()
	labelW := (pageWidth - sheet.MarginLeft*2 - float64(sheet.Cols-1)*sheet.GapX) / float64(sheet.Cols)
	labelH := (pageHeight - sheet.MarginTop*2 - float64(sheet.Rows-1)*sheet.GapY) / float64(sheet.Rows)
	perPage := sheet.Cols * sheet.Rows

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	for i, s := range slots {
		if i%perPage == 0 {
			pdf.AddPage()
		}
		onPage := i % perPage
		x := sheet.MarginLeft + float64(onPage%sheet.Cols)*(labelW+sheet.GapX)
		y := sheet.MarginTop + float64(onPage/sheet.Cols)*(labelH+sheet.GapY)

		png, err := qrcode.Encode(QRContent(u.ID, s), qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("encoding qr for slot %s: %w", s, err)
		}
		name := "qr_" + s.String()
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))

		qrSize := labelH * 0.7
		if qrSize > labelW/2 {
			qrSize = labelW / 2
		}
		pdf.ImageOptions(name, x+2, y+(labelH-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

		textX := x + qrSize + 4
		textW := labelW - qrSize - 6
		pdf.SetXY(textX, y+labelH/2-7)
		pdf.SetFontSize(9)
		pdf.CellFormat(textW, 5, tr(u.Name), "", 2, "L", false, 0, "")
		pdf.SetFontSize(12)
		pdf.CellFormat(textW, 6, Caption(s), "", 2, "L", false, 0, "")
		if wine := wineAt[s]; wine != "" {
			pdf.SetFontSize(7)
			pdf.CellFormat(textW, 4, tr(wine), "", 2, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering labels: %w", err)
	}
	return buf.Bytes(), nil
}
