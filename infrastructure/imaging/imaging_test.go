package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessDownscalesToFit(t *testing.T) {
	out, err := Process(encodePNG(t, 2400, 1200))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Fatalf("expected jpeg output, got %s", format)
	}
	b := img.Bounds()
	if b.Dx() != MaxDimension || b.Dy() != MaxDimension/2 {
		t.Fatalf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, b.Dx(), b.Dy())
	}
}

func TestProcessKeepsSmallImagesUnscaled(t *testing.T) {
	out, err := Process(encodePNG(t, 320, 200))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	img, _, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Fatalf("expected 320x200, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestProcessRejectsGarbage(t *testing.T) {
	if _, err := Process([]byte("not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFromDataURLStripsHeader(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03}
	encoded := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(raw)

	out, err := FromDataURL(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("expected %v, got %v", raw, out)
	}
}

func TestFromDataURLBarePayload(t *testing.T) {
	raw := []byte("photo-bytes")
	out, err := FromDataURL(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(out, raw) {
		t.Fatalf("expected %q, got %q", raw, out)
	}
}
