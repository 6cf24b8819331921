package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"slices"
	"testing"
	"time"
)

func TestPlaceholderAndTokens(t *testing.T) {
	if got := Placeholder("a1"); got != "![image](IMG:a1)" {
		t.Fatalf("Placeholder() = %q", got)
	}
	text := "see " + Placeholder("abc-1") + " and img:XY_2 and IMG:abc-1"
	if got := TokenIDs(text); !slices.Equal(got, []string{"abc-1", "XY_2"}) {
		t.Fatalf("TokenIDs() = %v", got)
	}
}

func TestReplaceTokens(t *testing.T) {
	known := map[string]string{"abc": "data:image/jpeg;base64,AAA"}
	resolve := func(id string) (string, bool) {
		v, ok := known[id]
		return v, ok
	}
	got := ReplaceTokens("![i](IMG:abc) ![j](IMG:nope)", resolve)
	want := "![i](data:image/jpeg;base64,AAA) ![j](missing-image)"
	if got != want {
		t.Fatalf("ReplaceTokens() = %q, want %q", got, want)
	}
	if got := ReplaceTokens("plain text", resolve); got != "plain text" {
		t.Fatalf("ReplaceTokens() changed plain text: %q", got)
	}
	if got := ReplaceTokens("IMG:zz", nil); got != MissingImage {
		t.Fatalf("ReplaceTokens(nil) = %q", got)
	}
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, maxW, maxH int
		wantW, wantH     int
	}{
		{w: 800, h: 600, maxW: 1280, maxH: 1280, wantW: 800, wantH: 600},
		{w: 2560, h: 1440, maxW: 1280, maxH: 1280, wantW: 1280, wantH: 720},
		{w: 1000, h: 4000, maxW: 1280, maxH: 1000, wantW: 250, wantH: 1000},
		{w: 3000, h: 3000, maxW: 1500, maxH: 1000, wantW: 1000, wantH: 1000},
	}
	for _, tc := range cases {
		w, h := FitWithin(tc.w, tc.h, tc.maxW, tc.maxH)
		if w != tc.wantW || h != tc.wantH {
			t.Fatalf("FitWithin(%d,%d,%d,%d) = %d,%d want %d,%d", tc.w, tc.h, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func TestOptimizeScalesAndEncodesJPEG(t *testing.T) {
	opt := NewOptimizer(40, 40, 0)
	if opt.Quality != DefaultQuality {
		t.Fatalf("expected default quality, got %v", opt.Quality)
	}
	res, err := opt.Optimize(context.Background(), testPNG(t, 80, 20))
	if err != nil {
		t.Fatalf("Optimize() error = %v", err)
	}
	if res.Width != 40 || res.Height != 10 || res.ContentType != "image/jpeg" {
		t.Fatalf("unexpected result %dx%d %s", res.Width, res.Height, res.ContentType)
	}
	decoded, err := jpeg.Decode(bytes.NewReader(res.Data))
	if err != nil {
		t.Fatalf("jpeg.Decode() error = %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 40 || b.Dy() != 10 {
		t.Fatalf("decoded bounds = %v", b)
	}
}

func TestOptimizeErrors(t *testing.T) {
	opt := NewOptimizer(0, 0, 0)
	if _, err := opt.Optimize(context.Background(), nil); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := opt.Optimize(context.Background(), []byte("not an image")); err == nil {
		t.Fatal("expected decode error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := opt.Optimize(ctx, testPNG(t, 4, 4)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestOptimizeAsyncDeliversOnce(t *testing.T) {
	ch := NewOptimizer(0, 0, 0.9).OptimizeAsync(context.Background(), testPNG(t, 8, 8))
	select {
	case out, ok := <-ch:
		if !ok || out.Err != nil {
			t.Fatalf("OptimizeAsync() outcome = %#v, ok=%v", out, ok)
		}
		if out.Result.Width != 8 {
			t.Fatalf("unexpected width %d", out.Result.Width)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for optimizer")
	}
	if _, ok := <-ch; ok {
		t.Fatal("channel must be closed after the outcome")
	}
}
