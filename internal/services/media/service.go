// Package media validates, resizes and stores uploaded images and announces
// them to the image worker.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "golang.org/x/image/webp"

	"github.com/Andessonreis/corre-aqui-dash/internal/apperr"
	"github.com/Andessonreis/corre-aqui-dash/internal/cache"
	"github.com/Andessonreis/corre-aqui-dash/internal/logging"
	"github.com/Andessonreis/corre-aqui-dash/internal/storage"
	"github.com/Andessonreis/corre-aqui-dash/internal/utils"
)

// MaxUploadSize is the largest accepted image
const MaxUploadSize = 5 << 20

// Kind is the purpose of an uploaded image
type Kind string

const (
	KindLogo   Kind = "logo"
	KindBanner Kind = "banner"
	KindOffer  Kind = "offer"
	KindAvatar Kind = "avatar"
)

type resizeMode int

const (
	modeFit resizeMode = iota
	modeFill
)

type sizing struct {
	width, height int
	mode          resizeMode
	dir           string
}

var sizes = map[Kind]sizing{
	KindLogo:   {200, 200, modeFit, "stores"},
	KindBanner: {1200, 400, modeFill, "stores"},
	KindOffer:  {800, 600, modeFit, "offers"},
	KindAvatar: {200, 200, modeFit, "profiles"},
}

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

// ParseKind validates an upload kind
func ParseKind(name string) (Kind, error) {
	k := Kind(strings.ToLower(name))
	if _, ok := sizes[k]; !ok {
		return "", apperr.Validation("unknown upload kind", map[string]string{
			"kind": "must be one of logo, banner, offer, avatar",
		})
	}
	return k, nil
}

// ImageUploadedEvent is published on cache.ChannelImageUploaded
type ImageUploadedEvent struct {
	Kind      Kind      `json:"kind"`
	Key       string    `json:"key"`
	UserID    uuid.UUID `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Upload is one stored image
type Upload struct {
	Kind      Kind
	Key       string
	PublicURL string
}

type Service struct {
	storage   storage.Driver
	publisher Publisher
	logger    zerolog.Logger
}

func NewService(driver storage.Driver, publisher Publisher, logger zerolog.Logger) *Service {
	return &Service{
		storage:   driver,
		publisher: publisher,
		logger:    logging.Component(logger, "media"),
	}
}

// Upload validates, resizes and stores an image for userID. size is the
// declared size of the upload; the reader is also capped at MaxUploadSize.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, kind Kind, filename string, size int64, src io.Reader) (*Upload, error) {
	sz, ok := sizes[kind]
	if !ok {
		return nil, apperr.Validation("unknown upload kind", nil)
	}

	ext := strings.ToLower(path.Ext(filename))
	if !allowedExtensions[ext] {
		return nil, apperr.Validation("unsupported image type", map[string]string{
			"file": "allowed types: jpg, jpeg, png, gif, webp",
		})
	}
	if size > MaxUploadSize {
		return nil, apperr.Validation("image too large", map[string]string{"file": "maximum size is 5MB"})
	}

	data, err := io.ReadAll(io.LimitReader(src, MaxUploadSize+1))
	if err != nil {
		return nil, apperr.Internal(err, "failed to read upload")
	}
	if len(data) > MaxUploadSize {
		return nil, apperr.Validation("image too large", map[string]string{"file": "maximum size is 5MB"})
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.Validation("invalid image", map[string]string{"file": "could not decode image"})
	}

	var resized image.Image
	switch sz.mode {
	case modeFill:
		resized = imaging.Fill(img, sz.width, sz.height, imaging.Center, imaging.Lanczos)
	default:
		resized = imaging.Fit(img, sz.width, sz.height, imaging.Lanczos)
	}

	// webp has no encoder here, store it as jpeg
	if ext == ".webp" || ext == ".jpeg" {
		ext = ".jpg"
	}
	buf, err := encode(resized, ext)
	if err != nil {
		return nil, apperr.Internal(err, "failed to encode image")
	}

	key := fmt.Sprintf("%s/%s/%s-%s%s", sz.dir, userID, kind, utils.NewULID(), ext)
	publicURL, err := s.storage.Upload(ctx, buf, key)
	if err != nil {
		return nil, apperr.Internal(err, "failed to store image")
	}

	s.publish(ctx, ImageUploadedEvent{Kind: kind, Key: key, UserID: userID, Timestamp: time.Now()})

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("kind", string(kind)).
		Str("key", key).
		Str("driver", s.storage.Name()).
		Msg("image uploaded")

	return &Upload{Kind: kind, Key: key, PublicURL: publicURL}, nil
}

// Remove deletes an image previously uploaded by userID together with its
// thumbnail. URLs that do not point at one of the user's own uploads, such as
// the default avatar, are left alone.
func (s *Service) Remove(ctx context.Context, userID uuid.UUID, publicURL string) error {
	key, ok := s.keyOf(publicURL)
	if !ok || !s.ownedBy(key, userID) {
		return nil
	}

	for _, k := range []string{key, ThumbnailKey(key)} {
		if err := s.storage.Delete(ctx, k); err != nil {
			return fmt.Errorf("failed to remove %s: %w", k, err)
		}
	}

	s.logger.Info().Str("user_id", userID.String()).Str("key", key).Msg("image removed")
	return nil
}

// keyOf maps a public URL back to its storage key
func (s *Service) keyOf(publicURL string) (string, bool) {
	prefix := strings.TrimSuffix(s.storage.PublicURL("k"), "k")
	if publicURL == "" || !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	return strings.TrimPrefix(publicURL, prefix), true
}

func (s *Service) ownedBy(key string, userID uuid.UUID) bool {
	for _, sz := range sizes {
		if strings.HasPrefix(key, sz.dir+"/"+userID.String()+"/") {
			return true
		}
	}
	return false
}

// publish failures only cost the thumbnail, the upload itself succeeded
func (s *Service) publish(ctx context.Context, event ImageUploadedEvent) {
	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to encode image event")
		return
	}
	if err := s.publisher.Publish(ctx, cache.ChannelImageUploaded, payload); err != nil {
		s.logger.Warn().Err(err).Str("key", event.Key).Msg("failed to publish image event")
	}
}

func encode(img image.Image, ext string) (*bytes.Buffer, error) {
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return nil, err
	}
	buf := &bytes.Buffer{}
	if err := imaging.Encode(buf, img, format, imaging.JPEGQuality(90)); err != nil {
		return nil, err
	}
	return buf, nil
}
