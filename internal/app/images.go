package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/evanschultz/cereboard/internal/images"
)

// AttachImage optimizes raw image bytes and stores the result under a new id.
func (s *Service) AttachImage(ctx context.Context, data []byte) (images.Image, error) {
	var outcome images.Outcome
	select {
	case outcome = <-s.optimizer.OptimizeAsync(ctx, data):
	case <-ctx.Done():
		return images.Image{}, ctx.Err()
	}
	if outcome.Err != nil {
		return images.Image{}, fmt.Errorf("optimize image: %w", outcome.Err)
	}
	id := strings.TrimSpace(s.idGen())
	if id == "" {
		return images.Image{}, fmt.Errorf("image id: empty identifier")
	}
	img := images.Image{
		ID:          id,
		ContentType: outcome.Result.ContentType,
		Width:       outcome.Result.Width,
		Height:      outcome.Result.Height,
		Data:        outcome.Result.Data,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.repo.SaveImage(ctx, img); err != nil {
		return images.Image{}, err
	}
	return img, nil
}

// GetImage returns a stored image.
func (s *Service) GetImage(ctx context.Context, id string) (images.Image, error) {
	return s.repo.GetImage(ctx, strings.TrimSpace(id))
}

// ResolveImageTokens replaces image references in text with format applied
// to each stored image. Unknown references become images.MissingImage.
func (s *Service) ResolveImageTokens(ctx context.Context, text string, format func(images.Image) string) (string, error) {
	found := map[string]images.Image{}
	for _, id := range images.TokenIDs(text) {
		img, err := s.repo.GetImage(ctx, id)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return "", err
		}
		found[id] = img
	}
	return images.ReplaceTokens(text, func(id string) (string, bool) {
		img, ok := found[id]
		if !ok {
			return "", false
		}
		return format(img), true
	}), nil
}

// DataURL formats an image as a base64 data URL.
func DataURL(img images.Image) string {
	return "data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// ImageLabel formats an image as a short terminal label.
func ImageLabel(img images.Image) string {
	return fmt.Sprintf("image:%dx%d", img.Width, img.Height)
}
