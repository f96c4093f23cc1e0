package crop

import (
	"image"
	"strings"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

const blurRadius = 3.0

// applyFilters 按参数顺序应用 filters(...) 中的滤镜，未知名称忽略。
func applyFilters(img image.Image, names []string) image.Image {
	for _, name := range names {
		switch strings.ToLower(name) {
		case "gray", "grey":
			img = effect.Grayscale(img)
		case "negative":
			img = effect.Invert(img)
		case "sepia":
			img = effect.Sepia(img)
		case "blur":
			img = blur.Gaussian(img, blurRadius)
		}
	}
	return img
}
