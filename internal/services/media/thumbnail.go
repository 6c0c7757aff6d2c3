package media

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"

	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/storage"
)

// ThumbnailSize bounds both sides of a thumbnail
const ThumbnailSize = 150

const thumbSuffix = "_thumb"

// ThumbnailKey derives the thumbnail key, e.g. a/b/logo-x.png -> a/b/logo-x_thumb.png
func ThumbnailKey(key string) string {
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + thumbSuffix + ext
}

// Thumbnailer writes a thumbnail next to every uploaded image
type Thumbnailer struct {
	storage storage.Driver
	logger  zerolog.Logger
}

func NewThumbnailer(driver storage.Driver, logger zerolog.Logger) *Thumbnailer {
	return &Thumbnailer{
		storage: driver,
		logger:  logging.Component(logger, "thumbnailer"),
	}
}

// HandleMessage processes one image:uploaded payload
func (t *Thumbnailer) HandleMessage(ctx context.Context, payload string) error {
	var event ImageUploadedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return fmt.Errorf("failed to decode image event: %w", err)
	}
	if event.Key == "" {
		return fmt.Errorf("image event without key")
	}

	_, err := t.Generate(ctx, event.Key)
	return err
}

// Generate creates the thumbnail of key and returns its key. Thumbnails are
// never thumbnailed again.
func (t *Thumbnailer) Generate(ctx context.Context, key string) (string, error) {
	ext := path.Ext(key)
	if strings.HasSuffix(strings.TrimSuffix(key, ext), thumbSuffix) {
		return "", nil
	}

	thumbKey := ThumbnailKey(key)
	// every worker subscribed to the channel sees the event
	if done, err := t.storage.Exists(ctx, thumbKey); err == nil && done {
		t.logger.Debug().Str("thumbnail", thumbKey).Msg("thumbnail already exists")
		return thumbKey, nil
	}

	reader, err := t.storage.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer reader.Close()

	src, _, err := image.Decode(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fit(src, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	buf, err := encode(thumb, strings.ToLower(ext))
	if err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if _, err := t.storage.Upload(ctx, buf, thumbKey); err != nil {
		return "", fmt.Errorf("failed to upload thumbnail: %w", err)
	}

	t.logger.Debug().Str("key", key).Str("thumbnail", thumbKey).Msg("thumbnail created")
	return thumbKey, nil
}
