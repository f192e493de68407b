package cells

import (
	"bytes"
	"image/png"
	"testing"
	"time"
)

func TestRenderQRCodePNG(t *testing.T) {
	data, err := renderQRCodePNG("001", 300)
	if err != nil {
		t.Fatalf("render qr: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("output must be valid png: %v", err)
	}
	if img.Bounds().Dx() != 300 || img.Bounds().Dy() != 300 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
}

func TestRenderCellLabelsPDF(t *testing.T) {
	data, err := renderCellLabelsPDF([]CellLabelData{
		{QRCode: "001", CellName: "CELL_ASSEMBLY"},
		{QRCode: "002", CellName: ""},
	}, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("render labels: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output must be a pdf")
	}

	if _, err := renderCellLabelsPDF(nil, time.Now()); err == nil {
		t.Fatalf("empty label list must error")
	}
}
