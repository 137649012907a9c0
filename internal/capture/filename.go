package capture

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/user/capture-service/internal/domain"
)

// ShotNamer builds the screenshot filename for an item/URL pair.
// Filenames are deterministic and unique per item so no write races can
// occur even if the batch is ever sharded.
type ShotNamer func(item domain.WorkItem, rawURL string) string

var unsafeChars = regexp.MustCompile(`[^\w-]+`)

// ClaimNamer names screenshots after the video and zero-padded chunk
// index: {video}_chunk_{NN}.png.
func ClaimNamer(videoName string) ShotNamer {
	safe := sanitizeName(videoName)
	return func(item domain.WorkItem, _ string) string {
		return fmt.Sprintf("%s_chunk_%02d.png", safe, item.ChunkIndex)
	}
}

// SimpleNamer names screenshots after the URL's domain and a short hash:
// {domain}_{8-char-hash}.png.
func SimpleNamer() ShotNamer {
	return func(_ domain.WorkItem, rawURL string) string {
		return fmt.Sprintf("%s_%s.png", domainOf(rawURL), HashURL(rawURL)[:8])
	}
}

// HashURL creates a SHA256 hash of a URL string.
func HashURL(rawURL string) string {
	h := sha256.New()
	h.Write([]byte(rawURL))
	return hex.EncodeToString(h.Sum(nil))
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "page"
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return sanitizeName(host)
}

func sanitizeName(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), ".", "_")
	s = unsafeChars.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "page"
	}
	return s
}
