// Package imaging normalises wine label photos before they are stored.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	// LabelMaxDimension bounds the longer edge of a stored label photo.
	LabelMaxDimension = 1200
	// ThumbnailDimension bounds the longer edge of list thumbnails.
	ThumbnailDimension = 240
	// MaxUploadBytes caps how much of an upload is read.
	MaxUploadBytes = 10 << 20

	jpegQuality = 85
)

// ErrUnsupportedFormat is returned for anything but JPEG, PNG or WebP.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var accepted = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Photo is a normalised JPEG.
type Photo struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// NormalizeLabel reads a label photo, checks its format by content rather
// than by client headers, fits it within LabelMaxDimension and re-encodes
// it as JPEG. Transparent areas become white.
func NormalizeLabel(r io.Reader) (*Photo, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadBytes)
	}
	return encode(data, LabelMaxDimension)
}

// Thumbnail re-encodes a stored photo to fit within ThumbnailDimension.
func Thumbnail(data []byte) (*Photo, error) {
	return encode(data, ThumbnailDimension)
}

func encode(data []byte, maxDim int) (*Photo, error) {
	if detected := http.DetectContentType(data); !accepted[detected] {
		return nil, fmt.Errorf("%w: %s (JPEG, PNG or WebP accepted)", ErrUnsupportedFormat, detected)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img := fit(src, maxDim)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	b := img.Bounds()
	return &Photo{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// fit scales src so its longer edge is at most maxDim, never upscaling,
// and flattens it onto a white background.
func fit(src image.Image, maxDim int) image.Image {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()
	if w > maxDim || h > maxDim {
		if w >= h {
			w, h = maxDim, max(1, h*maxDim/w)
		} else {
			w, h = max(1, w*maxDim/h), maxDim
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
	} else {
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	}
	return dst
}
