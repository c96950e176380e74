package images

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
)

// Cache caches loaded images by source. It is safe for concurrent use.
type Cache struct {
	images map[string]*Image
	mu     sync.RWMutex
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{images: make(map[string]*Image)}
}

// Load returns the image at src, a file path or a data: URI, decoding it on
// first use.
func (c *Cache) Load(src string) (*Image, error) {
	// Check cache first
	c.mu.RLock()
	if img, ok := c.images[src]; ok {
		c.mu.RUnlock()
		return img, nil
	}
	c.mu.RUnlock()

	var (
		img *Image
		err error
	)
	if IsDataURI(src) {
		img, err = LoadFromDataURI(src)
	} else {
		img, err = LoadFile(src)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.images[src] = img
	c.mu.Unlock()
	return img, nil
}

// Len is the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Dimensions returns the width and height of the image at src.
func (c *Cache) Dimensions(src string) (width, height int, err error) {
	img, err := c.Load(src)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

// LoadFile decodes the image at path.
func LoadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	img, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// IsDataURI reports whether src is a data: URI.
func IsDataURI(src string) bool {
	return strings.HasPrefix(src, "data:")
}

// LoadFromDataURI decodes an image embedded in a data: URI, base64 or
// percent-encoded.
func LoadFromDataURI(uri string) (*Image, error) {
	if !IsDataURI(uri) {
		return nil, errors.New("not a data URI")
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("data URI has no payload")
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decoding data URI: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unescaping data URI: %w", err)
		}
		data = []byte(unescaped)
	}
	return Decode(bytes.NewReader(data))
}
