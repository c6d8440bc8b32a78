package vision

import (
	"image"
	"image/color"
	"testing"
)

func flatImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func checkerboard(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func TestBrightness(t *testing.T) {
	if got := Brightness(flatImage(10, 10, color.Black)); got != 0 {
		t.Errorf("black brightness = %v; want 0", got)
	}
	if got := Brightness(flatImage(10, 10, color.White)); got < 99 {
		t.Errorf("white brightness = %v; want ~100", got)
	}

	grey := flatImage(10, 10, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	got := Brightness(grey)
	if got < 45 || got > 55 {
		t.Errorf("mid-grey brightness = %v; want ~50", got)
	}
}

func TestSharpnessOrdering(t *testing.T) {
	flat := Sharpness(flatImage(20, 20, color.White))
	sharp := Sharpness(checkerboard(20, 20))

	if flat != 0 {
		t.Errorf("flat image sharpness = %v; want 0", flat)
	}
	if sharp <= flat {
		t.Errorf("checkerboard sharpness %v must exceed flat %v", sharp, flat)
	}
	if sharp > 100 {
		t.Errorf("sharpness %v exceeds scale", sharp)
	}
}

func TestSharpnessTinyImage(t *testing.T) {
	if got := Sharpness(flatImage(2, 2, color.White)); got != 0 {
		t.Errorf("sub-3x3 image sharpness = %v; want 0", got)
	}
}
