package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func dataURL(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}

func TestDecodePayload(t *testing.T) {
	p := NewImageProcessor()
	raw := pngBytes(t, 4, 4)

	t.Run("data url", func(t *testing.T) {
		got, err := p.DecodePayload(dataURL(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	t.Run("bare base64", func(t *testing.T) {
		got, err := p.DecodePayload(base64.StdEncoding.EncodeToString(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	})

	cases := map[string]string{
		"empty":          "",
		"not base64":     "data:image/png;base64,@@@@",
		"no base64 flag": "data:image/png,abcd",
		"not an image":   "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hi")),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := p.DecodePayload(payload)
			assert.ErrorIs(t, err, ErrInvalidImage)
		})
	}
}

func TestDecodePayload_SizeLimit(t *testing.T) {
	p := &ImageProcessor{MaxSize: 10}
	_, err := p.DecodePayload(base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{1}, 11)))
	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Contains(t, err.Error(), "10 B")
}

func TestProcessImage(t *testing.T) {
	p := NewImageProcessor()

	t.Run("large image is bounded", func(t *testing.T) {
		out, err := p.ProcessImage(pngBytes(t, 2400, 600))
		require.NoError(t, err)

		img, format, err := image.Decode(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, 1200, img.Bounds().Dx())
		assert.Equal(t, 300, img.Bounds().Dy())
	})

	t.Run("small image keeps size", func(t *testing.T) {
		out, err := p.ProcessImage(pngBytes(t, 10, 20))
		require.NoError(t, err)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
		require.NoError(t, err)
		assert.Equal(t, 10, cfg.Width)
		assert.Equal(t, 20, cfg.Height)
	})

	t.Run("garbage is rejected", func(t *testing.T) {
		_, err := p.ProcessImage([]byte("definitely not an image"))
		assert.ErrorIs(t, err, ErrInvalidImage)
	})
}

type memObjects struct {
	objects map[string][]byte
}

func (m *memObjects) Upload(_ context.Context, key string, data []byte, _ string) error {
	m.objects[key] = data
	return nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjects) URL(key string) string { return ObjectURL("http://cdn", "media", key) }

func TestImageStore(t *testing.T) {
	objects := &memObjects{objects: map[string][]byte{}}
	store := NewImageStore(NewImageProcessor(), objects)
	ctx := context.Background()

	data, err := store.Decode(dataURL(pngBytes(t, 3, 3)))
	require.NoError(t, err)

	key, err := store.Put(ctx, "recipes/images", data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "recipes/images/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.Contains(t, objects.objects, key)
	assert.Equal(t, "http://cdn/media/"+key, store.URL(key))

	require.NoError(t, store.Remove(ctx, key))
	assert.NotContains(t, objects.objects, key)
	assert.NoError(t, store.Remove(ctx, ""))
	assert.Equal(t, "", ObjectURL("http://cdn", "media", ""))
}
