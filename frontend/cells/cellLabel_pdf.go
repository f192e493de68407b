package cells

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/jung-kurt/gofpdf"
)

// CellLabelData is one printable cell label.
type CellLabelData struct {
	QRCode   string
	CellName string
}

func renderQRCodePNG(value string, size int) ([]byte, error) {
	code, err := qr.Encode(value, qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}
	normalized := toNRGBA(scaled)
	var out bytes.Buffer
	if err := png.Encode(&out, normalized); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func renderCellLabelsPDF(labels []CellLabelData, printedAt time.Time) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Cell Labels", false)

	for _, label := range labels {
		qrPNG, err := renderQRCodePNG(label.QRCode, 900)
		if err != nil {
			return nil, err
		}

		pdf.AddPage()
		cellName := strings.TrimSpace(label.CellName)
		if cellName == "" {
			cellName = "Unnamed Cell"
		}

		pdf.SetFont("Helvetica", "B", 40)
		pdf.CellFormat(0, 24, cellName, "", 1, "C", false, 0, "")

		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
		imageName := "cell-qr-" + label.QRCode
		pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(qrPNG))
		pageW, _ := pdf.GetPageSize()
		imgSize := 120.0
		x := (pageW - imgSize) / 2
		y := 50.0
		pdf.ImageOptions(imageName, x, y, imgSize, imgSize, false, opt, 0, "")

		pdf.SetY(y + imgSize + 8)
		pdf.SetFont("Helvetica", "B", 28)
		pdf.CellFormat(0, 14, label.QRCode, "", 1, "C", false, 0, "")

		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 8, "Printed: "+printedAt.Format("02/01/2006"), "", 1, "C", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
