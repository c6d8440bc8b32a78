package vision

import (
	"image"
	"math"
)

// Brightness scores an image's mean luma on a 0-100 scale.
func Brightness(img image.Image) float64 {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += luma(img, x, y)
		}
	}
	mean := sum / float64(w*h)

	return clamp01(mean/255) * 100
}

// Sharpness scores an image on a 0-100 scale using the variance of a 3x3
// Laplacian over the luma channel. Blurry frames score near zero.
func Sharpness(img image.Image) float64 {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w < 3 || h < 3 {
		return 0
	}

	grid := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			grid[y*w+x] = luma(img, bounds.Min.X+x, bounds.Min.Y+y)
		}
	}

	var sum, sumSq float64
	n := 0
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			lap := 4*grid[y*w+x] - grid[y*w+x-1] - grid[y*w+x+1] - grid[(y-1)*w+x] - grid[(y+1)*w+x]
			sum += lap
			sumSq += lap * lap
			n++
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	// Laplacian variance grows unbounded with edge content; map it onto
	// 0-100 with a knee around variance 1000.
	score := 100 * (1 - math.Exp(-variance/1000))
	return clamp01(score/100) * 100
}

func luma(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
