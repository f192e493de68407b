package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/jpeg"
	"strings"

	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"
)

// MaxDimension bounds both sides of a stored photo.
const MaxDimension = 1200

const jpegQuality = 85

// Process decodes photo bytes in any registered format, flattens them to
// 24-bit color and re-encodes as JPEG fitting within
// MaxDimension x MaxDimension, preserving aspect ratio. Images already
// within bounds are re-encoded without scaling.
func Process(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, fit(src), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxDimension && h <= MaxDimension {
		return flatten(src)
	}

	tw, th := w, h
	if w >= h {
		tw = MaxDimension
		th = h * MaxDimension / w
	} else {
		th = MaxDimension
		tw = w * MaxDimension / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func flatten(src image.Image) image.Image {
	if _, ok := src.(*image.NRGBA); ok {
		return src
	}
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// FromDataURL decodes a base64 photo payload as submitted by the camera
// capture form. A "data:image/...;base64," prefix is stripped when present.
func FromDataURL(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty photo payload")
	}
	if idx := strings.Index(s, ","); idx >= 0 && strings.Contains(s[:idx], "base64") {
		s = s[idx+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}
