// internal/services/image_service.go
package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hearthline/commerce-api/internal/config"
)

// Breakpoints are the widths every product image is published at.
var Breakpoints = []int{140, 300, 450, 600, 960, 1024}

const (
	webpFormat      = "webp"
	webpExtension   = ".webp"
	webpContentType = "image/webp"

	maxConcurrentImages = 4
)

// ImageUpload is one raw image supplied with a create or update request.
type ImageUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ImageMeta is what the pipeline needs to know about a source image.
type ImageMeta struct {
	Width  int
	Height int
	Format string
}

// ImagePipeline turns raw uploads into published breakpoint variants.
type ImagePipeline interface {
	Process(ctx context.Context, upload ImageUpload) (string, error)
	Delete(ctx context.Context, url string) error
}

type ImageService struct {
	storage ObjectStorage
	config  config.ImageConfig
	log     *logrus.Entry

	newName func() string
}

func NewImageService(storage ObjectStorage, cfg config.ImageConfig, log *logrus.Entry) *ImageService {
	return &ImageService{
		storage: storage,
		config:  cfg,
		log:     log,
		newName: func() string { return uuid.New().String() },
	}
}

// ProbeImage reads dimensions and format without decoding pixel data.
func ProbeImage(data []byte) (ImageMeta, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageMeta{}, fmt.Errorf("%w: unreadable image: %v", ErrAsset, err)
	}
	return ImageMeta{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// ResizeImage scales src to width, preserving aspect ratio.
func ResizeImage(src image.Image, width int) image.Image {
	return imaging.Resize(src, width, 0, imaging.Lanczos)
}

// EncodeWebP encodes img as lossy WebP at quality.
func EncodeWebP(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, fmt.Errorf("%w: webp encode: %v", ErrAsset, err)
	}
	return buf.Bytes(), nil
}

// Process publishes one variant per breakpoint and returns the base URL
// shared by all of them.
func (s *ImageService) Process(ctx context.Context, upload ImageUpload) (string, error) {
	meta, err := ProbeImage(upload.Data)
	if err != nil {
		return "", err
	}

	var decoded image.Image
	fileName := s.newName()

	for _, width := range Breakpoints {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		var variant []byte
		if meta.Format == webpFormat && meta.Width == width {
			variant = upload.Data
		} else {
			if decoded == nil {
				decoded, err = imaging.Decode(bytes.NewReader(upload.Data), imaging.AutoOrientation(true))
				if err != nil {
					return "", fmt.Errorf("%w: decode %s: %v", ErrAsset, upload.FileName, err)
				}
			}
			variant, err = EncodeWebP(ResizeImage(decoded, width), s.config.Quality)
			if err != nil {
				return "", err
			}
		}

		if err := s.storage.Upload(ctx, variantKey(fileName, width), variant, webpContentType); err != nil {
			return "", fmt.Errorf("%w: %v", ErrAsset, err)
		}
	}

	return s.baseURL(fileName), nil
}

// Delete removes every breakpoint variant behind a stored base URL.
func (s *ImageService) Delete(ctx context.Context, url string) error {
	fileName := s.fileNameFromURL(url)
	if fileName == "" {
		return fmt.Errorf("%w: cannot derive file name from %q", ErrAsset, url)
	}

	var errs []error
	for _, width := range Breakpoints {
		if err := s.storage.Delete(ctx, variantKey(fileName, width)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *ImageService) baseURL(fileName string) string {
	return strings.TrimSuffix(s.config.Domain, "/") + "/" + fileName
}

func (s *ImageService) fileNameFromURL(url string) string {
	prefix := strings.TrimSuffix(s.config.Domain, "/") + "/"
	if strings.HasPrefix(url, prefix) {
		return strings.TrimPrefix(url, prefix)
	}
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

func variantKey(fileName string, width int) string {
	return fmt.Sprintf("%s_%d%s", fileName, width, webpExtension)
}

// processImages runs each upload concurrently and keeps input order. A
// failed image is logged and left out of the result.
func processImages(ctx context.Context, pipeline ImagePipeline, uploads []ImageUpload, log *logrus.Entry) []string {
	if len(uploads) == 0 {
		return nil
	}

	urls := make([]string, len(uploads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentImages)

	for i, upload := range uploads {
		i, upload := i, upload
		g.Go(func() error {
			url, err := pipeline.Process(gctx, upload)
			if err != nil {
				log.WithError(err).WithField("file_name", upload.FileName).Warn("Image processing failed, image skipped")
				return nil
			}
			urls[i] = url
			return nil
		})
	}
	// workers log their own failures and always return nil
	g.Wait()

	result := make([]string, 0, len(urls))
	for _, url := range urls {
		if url != "" {
			result = append(result, url)
		}
	}
	return result
}

// deleteImages removes each URL and logs failures.
func deleteImages(ctx context.Context, pipeline ImagePipeline, urls []string, log *logrus.Entry) {
	for _, url := range urls {
		if err := pipeline.Delete(ctx, url); err != nil {
			log.WithError(err).WithField("url", url).Warn("Failed to delete product image")
		}
	}
}
