// internal/services/image_service_test.go
package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthline/commerce-api/internal/config"
)

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 255), G: 120, B: uint8(y % 255), A: 255})
		}
	}
	return img
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidImage(w, h)))
	return buf.Bytes()
}

func webpFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, solidImage(w, h), &webp.Options{Quality: 80}))
	return buf.Bytes()
}

func newTestImageService(t *testing.T) (*ImageService, *StorageService) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)

	storage, err := NewStorageService(config.AWSConfig{}, entry)
	require.NoError(t, err)

	svc := NewImageService(storage, config.ImageConfig{Domain: "https://img.example.com/", Quality: 75}, entry)
	svc.newName = func() string { return "fixed-name" }
	return svc, storage
}

func TestProbeImage(t *testing.T) {
	meta, err := ProbeImage(pngFixture(t, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, ImageMeta{Width: 40, Height: 20, Format: "png"}, meta)

	meta, err = ProbeImage(webpFixture(t, 30, 10))
	require.NoError(t, err)
	assert.Equal(t, "webp", meta.Format)

	_, err = ProbeImage([]byte("not an image"))
	assert.True(t, errors.Is(err, ErrAsset))
}

func TestProcessPublishesEveryBreakpoint(t *testing.T) {
	svc, storage := newTestImageService(t)

	url, err := svc.Process(context.Background(), ImageUpload{FileName: "lamp.png", Data: pngFixture(t, 200, 100)})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/fixed-name", url)

	for _, width := range Breakpoints {
		data, ok := storage.Object(variantKey("fixed-name", width))
		require.True(t, ok, "missing variant %d", width)

		meta, err := ProbeImage(data)
		require.NoError(t, err)
		assert.Equal(t, "webp", meta.Format)
		assert.Equal(t, width, meta.Width)
	}
}

func TestProcessKeepsWebPAtTargetWidth(t *testing.T) {
	svc, storage := newTestImageService(t)
	source := webpFixture(t, 300, 150)

	_, err := svc.Process(context.Background(), ImageUpload{FileName: "rug.webp", Data: source})
	require.NoError(t, err)

	same, ok := storage.Object("fixed-name_300.webp")
	require.True(t, ok)
	assert.Equal(t, source, same)

	other, ok := storage.Object("fixed-name_140.webp")
	require.True(t, ok)
	assert.NotEqual(t, source, other)
}

func TestProcessRejectsGarbage(t *testing.T) {
	svc, storage := newTestImageService(t)

	_, err := svc.Process(context.Background(), ImageUpload{FileName: "bad.png", Data: []byte{0x89, 0x50}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAsset))

	_, ok := storage.Object("fixed-name_140.webp")
	assert.False(t, ok)
}

func TestDeleteRemovesAllVariants(t *testing.T) {
	svc, storage := newTestImageService(t)

	url, err := svc.Process(context.Background(), ImageUpload{FileName: "lamp.png", Data: pngFixture(t, 64, 64)})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), url))
	for _, width := range Breakpoints {
		_, ok := storage.Object(variantKey("fixed-name", width))
		assert.False(t, ok)
	}
}

func TestProcessImagesKeepsOrderAndDropsFailures(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pipeline := &recordingPipeline{failImages: map[string]bool{"b.png": true}}

	urls := processImages(context.Background(), pipeline, []ImageUpload{
		{FileName: "a.png"}, {FileName: "b.png"}, {FileName: "c.png"},
	}, logrus.NewEntry(logger))

	assert.Equal(t, []string{"https://cdn.test/a", "https://cdn.test/c"}, urls)
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
