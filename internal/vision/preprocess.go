package vision

import "image"

// imageToCHW converts an image to CHW float32 format at the target size,
// normalized as (pixel - mean) / std per channel. Resizing is plain
// nearest-neighbour.
func imageToCHW(img image.Image, targetW, targetH int, mean, std float32) []float32 {
	bounds := img.Bounds()
	srcW := bounds.Dx()
	srcH := bounds.Dy()

	data := make([]float32, 3*targetH*targetW)
	plane := targetH * targetW

	for y := 0; y < targetH; y++ {
		srcY := y * srcH / targetH
		for x := 0; x < targetW; x++ {
			srcX := x * srcW / targetW

			r, g, b, _ := img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY).RGBA()

			pos := y*targetW + x
			data[pos] = (float32(r>>8) - mean) / std
			data[plane+pos] = (float32(g>>8) - mean) / std
			data[2*plane+pos] = (float32(b>>8) - mean) / std
		}
	}

	return data
}

// detectorInput preprocesses an image for RetinaFace (mean 127.5, std 128).
func detectorInput(img image.Image, w, h int) []float32 {
	return imageToCHW(img, w, h, 127.5, 128.0)
}

// embedderInput preprocesses a face crop for ArcFace (mean 127.5, std 127.5).
func embedderInput(img image.Image, w, h int) []float32 {
	return imageToCHW(img, w, h, 127.5, 127.5)
}
