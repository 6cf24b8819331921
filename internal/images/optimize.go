package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Default optimizer settings.
const (
	DefaultMaxWidth  = 1280
	DefaultMaxHeight = 1280
	DefaultQuality   = 0.7
)

// ErrEmptyImage reports an empty upload.
var ErrEmptyImage = errors.New("empty image data")

// Optimizer scales images to fit a bounding box and re-encodes them as JPEG.
type Optimizer struct {
	MaxWidth  int
	MaxHeight int
	// Quality is the JPEG quality in (0, 1].
	Quality float64
}

// Result is an optimized image.
type Result struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// Outcome is delivered by OptimizeAsync.
type Outcome struct {
	Result Result
	Err    error
}

// NewOptimizer returns an optimizer, filling unset limits with defaults.
func NewOptimizer(maxWidth, maxHeight int, quality float64) Optimizer {
	if maxWidth <= 0 {
		maxWidth = DefaultMaxWidth
	}
	if maxHeight <= 0 {
		maxHeight = DefaultMaxHeight
	}
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}
	return Optimizer{MaxWidth: maxWidth, MaxHeight: maxHeight, Quality: quality}
}

// Optimize decodes data, scales it down to fit and encodes it as JPEG.
func (o Optimizer) Optimize(ctx context.Context, data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, ErrEmptyImage
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("decode image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	o = NewOptimizer(o.MaxWidth, o.MaxHeight, o.Quality)
	bounds := src.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), o.MaxWidth, o.MaxHeight)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var buf bytes.Buffer
	quality := int(math.Round(o.Quality * 100))
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: max(1, min(quality, 100))}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	return Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       width,
		Height:      height,
	}, nil
}

// OptimizeAsync runs Optimize on its own goroutine. The channel receives
// exactly one outcome and is then closed.
func (o Optimizer) OptimizeAsync(ctx context.Context, data []byte) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := o.Optimize(ctx, data)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

// FitWithin scales width and height down, preserving aspect ratio, until
// the width fits maxWidth and then the height fits maxHeight.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	w, h := float64(width), float64(height)
	if maxWidth > 0 && w > float64(maxWidth) {
		h = h * float64(maxWidth) / w
		w = float64(maxWidth)
	}
	if maxHeight > 0 && h > float64(maxHeight) {
		w = w * float64(maxHeight) / h
		h = float64(maxHeight)
	}
	return max(1, int(math.Round(w))), max(1, int(math.Round(h)))
}
