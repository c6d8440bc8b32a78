package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"

	_ "image/gif"
	_ "image/png"

	"github.com/your-org/momentmaker/internal/models"
)

// ErrBadGeometry is returned when a crop rectangle is empty or falls outside
// the image bounds. Callers must clamp boxes before cropping.
var ErrBadGeometry = errors.New("invalid crop rectangle")

// DecodeImage decodes JPEG, PNG or GIF bytes.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG at the given quality.
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// ClampBox shrinks a normalized bounding box so the crop rectangle stays
// inside [0,1] on both axes.
func ClampBox(box models.BoundingBox) models.BoundingBox {
	if box.Left < 0 {
		box.Width += box.Left
		box.Left = 0
	}
	if box.Top < 0 {
		box.Height += box.Top
		box.Top = 0
	}
	if box.Left+box.Width > 1 {
		box.Width = 1 - box.Left
	}
	if box.Top+box.Height > 1 {
		box.Height = 1 - box.Top
	}
	return box
}

// CropFace extracts the pixel rectangle described by a normalized bounding
// box: [round(left*W), round(top*H), round(width*W), round(height*H)].
// The crop owns its own pixels; the source image is untouched.
func CropFace(img image.Image, box models.BoundingBox) (image.Image, error) {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	x := int(math.Round(box.Left * float64(w)))
	y := int(math.Round(box.Top * float64(h)))
	cw := int(math.Round(box.Width * float64(w)))
	ch := int(math.Round(box.Height * float64(h)))

	if cw <= 0 || ch <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadGeometry, cw, ch)
	}
	if x < 0 || y < 0 || x+cw > w || y+ch > h {
		return nil, fmt.Errorf("%w: rect (%d,%d,%d,%d) outside %dx%d", ErrBadGeometry, x, y, cw, ch, w, h)
	}

	rect := image.Rect(0, 0, cw, ch)
	dst := image.NewRGBA(rect)
	src := image.Pt(bounds.Min.X+x, bounds.Min.Y+y)
	draw.Draw(dst, rect, img, src, draw.Src)
	return dst, nil
}
