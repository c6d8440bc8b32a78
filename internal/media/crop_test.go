package media

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/your-org/momentmaker/internal/models"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	return img
}

func TestCropFace(t *testing.T) {
	img := testImage(200, 100)

	crop, err := CropFace(img, models.BoundingBox{Left: 0.25, Top: 0.2, Width: 0.5, Height: 0.6})
	if err != nil {
		t.Fatalf("CropFace: %v", err)
	}

	b := crop.Bounds()
	if b.Dx() != 100 || b.Dy() != 60 {
		t.Errorf("crop size = %dx%d; want 100x60", b.Dx(), b.Dy())
	}
}

func TestCropFaceRounding(t *testing.T) {
	img := testImage(3, 3)

	// 0.5 * 3 = 1.5 rounds to 2
	crop, err := CropFace(img, models.BoundingBox{Left: 0, Top: 0, Width: 0.5, Height: 0.5})
	if err != nil {
		t.Fatalf("CropFace: %v", err)
	}
	if crop.Bounds().Dx() != 2 || crop.Bounds().Dy() != 2 {
		t.Errorf("crop size = %dx%d; want 2x2", crop.Bounds().Dx(), crop.Bounds().Dy())
	}
}

func TestCropFaceBadGeometry(t *testing.T) {
	img := testImage(100, 100)

	tests := []struct {
		name string
		box  models.BoundingBox
	}{
		{"zero width", models.BoundingBox{Left: 0.1, Top: 0.1, Width: 0, Height: 0.5}},
		{"negative height", models.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.5, Height: -0.2}},
		{"out of bounds right", models.BoundingBox{Left: 0.8, Top: 0.1, Width: 0.5, Height: 0.5}},
		{"negative origin", models.BoundingBox{Left: -0.2, Top: 0.1, Width: 0.5, Height: 0.5}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CropFace(img, tc.box)
			if !errors.Is(err, ErrBadGeometry) {
				t.Errorf("err = %v; want ErrBadGeometry", err)
			}
		})
	}
}

func TestClampBox(t *testing.T) {
	tests := []struct {
		name     string
		in       models.BoundingBox
		expected models.BoundingBox
	}{
		{
			name:     "inside untouched",
			in:       models.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.5, Height: 0.5},
			expected: models.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.5, Height: 0.5},
		},
		{
			name:     "overflow right shrinks width",
			in:       models.BoundingBox{Left: 0.8, Top: 0, Width: 0.5, Height: 0.5},
			expected: models.BoundingBox{Left: 0.8, Top: 0, Width: 0.2, Height: 0.5},
		},
		{
			name:     "negative left shifts and shrinks",
			in:       models.BoundingBox{Left: -0.1, Top: 0, Width: 0.5, Height: 0.5},
			expected: models.BoundingBox{Left: 0, Top: 0, Width: 0.4, Height: 0.5},
		},
		{
			name:     "negative top shifts and shrinks",
			in:       models.BoundingBox{Left: 0, Top: -0.2, Width: 0.5, Height: 0.5},
			expected: models.BoundingBox{Left: 0, Top: 0, Width: 0.5, Height: 0.3},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ClampBox(tc.in)
			if !boxEqual(got, tc.expected) {
				t.Errorf("ClampBox(%+v) = %+v; want %+v", tc.in, got, tc.expected)
			}
		})
	}
}

func boxEqual(a, b models.BoundingBox) bool {
	const eps = 1e-9
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	return abs(a.Left-b.Left) < eps && abs(a.Top-b.Top) < eps &&
		abs(a.Width-b.Width) < eps && abs(a.Height-b.Height) < eps
}

func TestClampThenCropNeverFailsOnOverflow(t *testing.T) {
	img := testImage(100, 100)

	box := models.BoundingBox{Left: 0.9, Top: 0.9, Width: 0.5, Height: 0.5}
	crop, err := CropFace(img, ClampBox(box))
	if err != nil {
		t.Fatalf("CropFace after ClampBox: %v", err)
	}
	if crop.Bounds().Dx() != 10 || crop.Bounds().Dy() != 10 {
		t.Errorf("crop size = %dx%d; want 10x10", crop.Bounds().Dx(), crop.Bounds().Dy())
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	img := testImage(50, 50)

	data, err := EncodeJPEG(img, 90)
	if err != nil {
		t.Fatalf("EncodeJPEG: %v", err)
	}

	decoded, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if decoded.Bounds().Dx() != 50 || decoded.Bounds().Dy() != 50 {
		t.Errorf("decoded size = %v; want 50x50", decoded.Bounds())
	}
}
