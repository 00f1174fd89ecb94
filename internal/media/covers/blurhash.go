// Package covers computes placeholder hashes for catalog cover images.
package covers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// maxCoverSize limits download size to prevent memory exhaustion.
	maxCoverSize = 5 * 1024 * 1024

	defaultTimeout = 5 * time.Second

	// BlurHash only needs a thumbnail; 32px keeps encoding under a millisecond.
	hashSize = 32

	// 4x3 components suit portrait covers and give ~28 character hashes.
	xComponents = 4
	yComponents = 3
)

// ErrNoCover is returned for an empty cover URL.
var ErrNoCover = errors.New("covers: no cover url")

// Hasher downloads covers and encodes them as BlurHash strings.
type Hasher struct {
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// NewHasher creates a hasher whose downloads are bounded by timeout.
func NewHasher(timeout time.Duration, logger *slog.Logger) *Hasher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Hasher{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
		logger:     logger,
	}
}

// BlurHash fetches the image at url and returns its BlurHash.
func (h *Hasher) BlurHash(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", ErrNoCover
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download cover: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download cover: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverSize))
	if err != nil {
		return "", fmt.Errorf("read cover: %w", err)
	}

	hash, err := Encode(data)
	if err != nil {
		return "", err
	}

	h.logger.Debug("hashed cover", "url", url, "bytes", len(data), "blurhash", hash)
	return hash, nil
}

// Encode decodes image bytes (JPEG, PNG, GIF or WebP) and returns their BlurHash.
func Encode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	hash, err := blurhash.Encode(xComponents, yComponents, shrink(img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// shrink nearest-neighbor scales img so its longer side is at most hashSize.
func shrink(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= hashSize && h <= hashSize {
		return img
	}

	dw, dh := hashSize, hashSize
	if w > h {
		dh = max(1, h*hashSize/w)
	} else {
		dw = max(1, w*hashSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range dh {
		for x := range dw {
			dst.Set(x, y, img.At(b.Min.X+x*w/dw, b.Min.Y+y*h/dh))
		}
	}
	return dst
}
