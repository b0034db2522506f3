package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the thumbnail edge BlurHash is computed on. The hash is a
// low-resolution placeholder, so a 64px thumbnail gives the same result as
// the full image in a fraction of the time.
const blurHashSize = 64

// BlurHash encodes img with 4x3 components.
func BlurHash(img image.Image) (string, error) {
	thumb := img
	if b := img.Bounds(); b.Dx() > blurHashSize || b.Dy() > blurHashSize {
		small := image.NewRGBA(fitRect(b, blurHashSize))
		draw.ApproxBiLinear.Scale(small, small.Bounds(), img, b, draw.Src, nil)
		thumb = small
	}

	hash, err := blurhash.Encode(4, 3, thumb)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

func fitRect(b image.Rectangle, edge int) image.Rectangle {
	w, h := b.Dx(), b.Dy()
	if w > h {
		return image.Rect(0, 0, edge, max(1, h*edge/w))
	}
	return image.Rect(0, 0, max(1, w*edge/h), edge)
}
