package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// ErrUnsupportedImage is returned for data no registered decoder accepts.
var ErrUnsupportedImage = errors.New("unsupported image format")

// Defaults for Processor.
const (
	DefaultMaxEdge = 1024
	jpegQuality    = 85
)

// Prepared is an upload normalized for storage and analysis.
type Prepared struct {
	JPEG     []byte
	Width    int
	Height   int
	Format   string
	BlurHash string
}

// Processor decodes uploads, bounds their size, and re-encodes them as JPEG.
type Processor struct {
	maxEdge int
}

// NewProcessor creates a Processor. maxEdge <= 0 selects DefaultMaxEdge.
func NewProcessor(maxEdge int) *Processor {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	return &Processor{maxEdge: maxEdge}
}

// Prepare decodes data, shrinks it so its longest edge is at most maxEdge,
// and returns the JPEG encoding with a BlurHash placeholder.
func (p *Processor) Prepare(data []byte) (*Prepared, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = fit(img, p.maxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	hash, err := BlurHash(img)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	return &Prepared{
		JPEG:     buf.Bytes(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		BlurHash: hash,
	}, nil
}

// fit scales img down, preserving aspect ratio, so neither side exceeds edge.
// Smaller images are returned unchanged.
func fit(img image.Image, edge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= edge && h <= edge {
		return img
	}

	dstW, dstH := edge, edge
	if w > h {
		dstH = max(1, h*edge/w)
	} else {
		dstW = max(1, w*edge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
