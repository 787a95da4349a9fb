package storage

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// buildObjectKey: <prefix>/<dir>/<slug>_<ts>_<rand><ext>
func buildObjectKey(prefix, dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	ts := time.Now().Format("20060102_150405")

	return joinParts(prefix, dir) + "/" + fmt.Sprintf("%s_%s_%s%s", slugify(base), ts, randHex(3), ext)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "-", "_", "-").Replace(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return "file"
	}
	return s
}

func joinParts(parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
			if strings.TrimSpace(seg) == "" {
				continue
			}
			clean = append(clean, slugify(seg))
		}
	}
	return strings.Join(clean, "/")
}

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// readAllWithType reads the upload fully and determines its content type from
// the extension, falling back to sniffing the first 512 bytes.
func readAllWithType(r io.Reader, filename string) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))
	ct := mime.TypeByExtension(ext)
	if ct == "" || ct == "application/octet-stream" {
		head := data
		if len(head) > 512 {
			head = head[:512]
		}
		ct = http.DetectContentType(head)
	}
	switch ext {
	case ".webp":
		ct = "image/webp"
	case ".py":
		ct = "text/x-python"
	}
	return data, ct, nil
}

func newReader(b []byte) io.Reader { return bytes.NewReader(b) }
