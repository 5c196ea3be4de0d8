package storage

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	_ "golang.org/x/image/webp"
)

// ErrInvalidImage wraps every reason an uploaded image payload is rejected.
var ErrInvalidImage = errors.New("invalid image")

const (
	defaultMaxSize = 5 * 1024 * 1024
	maxDimension   = 1200
	jpegQuality    = 90
)

// ImageProcessor decodes base64 image payloads and normalizes them to JPEG.
type ImageProcessor struct {
	MaxSize int64 // decoded bytes
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: defaultMaxSize}
}

// DecodePayload accepts "data:image/png;base64,<...>" or bare base64.
func (p *ImageProcessor) DecodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: expected a base64 data URL", ErrInvalidImage)
		}
		if !strings.HasPrefix(header, "data:image/") {
			return nil, fmt.Errorf("%w: not an image media type", ErrInvalidImage)
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: bad base64: %v", ErrInvalidImage, err)
	}

	if int64(len(data)) > p.MaxSize {
		return nil, fmt.Errorf("%w: %s exceeds the %s limit",
			ErrInvalidImage, humanize.IBytes(uint64(len(data))), humanize.IBytes(uint64(p.MaxSize)))
	}

	return data, nil
}

// ProcessImage decodes data (jpeg/png/gif/webp), bounds it to 1200px and
// re-encodes as JPEG q90.
func (p *ImageProcessor) ProcessImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode: %v", ErrInvalidImage, err)
	}

	b := img.Bounds()
	if b.Dx() > maxDimension || b.Dy() > maxDimension {
		img = imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	}

	// Flatten transparency onto white so PNG/GIF alpha does not turn black.
	canvas := imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), image.White)
	canvas = imaging.Overlay(canvas, img, image.Point{}, 1.0)

	out := new(bytes.Buffer)
	if err := jpeg.Encode(out, canvas, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("cannot encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}

// Normalize is DecodePayload followed by ProcessImage.
func (p *ImageProcessor) Normalize(payload string) ([]byte, error) {
	data, err := p.DecodePayload(payload)
	if err != nil {
		return nil, err
	}
	return p.ProcessImage(data)
}
