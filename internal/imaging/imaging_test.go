package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{128, 0, 32, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(img image.Image) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestNormalizeLabelJPEG(t *testing.T) {
	photo, err := NormalizeLabel(bytes.NewReader(createTestJPEG(300, 400)))
	if err != nil {
		t.Fatalf("NormalizeLabel: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if photo.Width != 300 || photo.Height != 400 {
		t.Errorf("small photo must keep its size, got %dx%d", photo.Width, photo.Height)
	}
}

func TestNormalizeLabelDownscalesPortrait(t *testing.T) {
	photo, err := NormalizeLabel(bytes.NewReader(createTestJPEG(1500, 3000)))
	if err != nil {
		t.Fatalf("NormalizeLabel: %v", err)
	}
	if photo.Height != LabelMaxDimension || photo.Width != LabelMaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", LabelMaxDimension/2, LabelMaxDimension, photo.Width, photo.Height)
	}

	decoded, err := jpeg.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("output is not a JPEG: %v", err)
	}
	if decoded.Bounds().Dy() != LabelMaxDimension {
		t.Errorf("encoded height %d", decoded.Bounds().Dy())
	}
}

func TestNormalizeLabelFlattensTransparency(t *testing.T) {
	data := createTestPNG(solid(20, 20, color.RGBA{}))

	photo, err := NormalizeLabel(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("NormalizeLabel: %v", err)
	}
	decoded, _ := jpeg.Decode(bytes.NewReader(photo.Data))
	r, g, b, _ := decoded.At(10, 10).RGBA()
	if r>>8 < 240 || g>>8 < 240 || b>>8 < 240 {
		t.Errorf("expected white background, got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestThumbnail(t *testing.T) {
	photo, err := Thumbnail(createTestJPEG(800, 600))
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if photo.Width != ThumbnailDimension || photo.Height != ThumbnailDimension*3/4 {
		t.Errorf("unexpected thumbnail size %dx%d", photo.Width, photo.Height)
	}
}

func TestNormalizeLabelRejectsUnsupported(t *testing.T) {
	for _, data := range [][]byte{[]byte("not an image"), []byte("GIF89a...")} {
		_, err := NormalizeLabel(bytes.NewReader(data))
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat for %q, got %v", data, err)
		}
	}
}

func TestNormalizeLabelRejectsOversized(t *testing.T) {
	data := make([]byte, MaxUploadBytes+10)
	copy(data, createTestJPEG(10, 10))
	if _, err := NormalizeLabel(bytes.NewReader(data)); err == nil {
		t.Error("expected error for oversized upload")
	}
}
