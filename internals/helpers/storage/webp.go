package storage

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

/* =======================================================================
   WebP config (ENV-driven)
======================================================================= */

type WebPOptions struct {
	MaxW        int     // resize bound, keeps aspect
	MaxH        int
	TargetKB    int     // 0 = single pass at Quality
	Quality     float32 // quality when TargetKB=0
	MinQ        float32 // binary search bounds
	MaxQ        float32
	ToleranceKB int
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envFloat(key string, def float32) float32 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil && f >= 0 {
			return float32(f)
		}
	}
	return def
}

func defaultWebPOptionsFromEnv() WebPOptions {
	return WebPOptions{
		MaxW:        envInt("IMAGE_WEBP_MAX_W", 800),
		MaxH:        envInt("IMAGE_WEBP_MAX_H", 800),
		TargetKB:    envInt("IMAGE_WEBP_TARGET_KB", 0),
		Quality:     envFloat("IMAGE_WEBP_QUALITY", 80),
		MinQ:        envFloat("IMAGE_WEBP_MIN_Q", 45),
		MaxQ:        envFloat("IMAGE_WEBP_MAX_Q", 85),
		ToleranceKB: envInt("IMAGE_WEBP_TOLERANCE_KB", 8),
	}
}

// ConvertToWebP decodes jpg/png/webp (honouring EXIF orientation), fits the
// image inside MaxW x MaxH and re-encodes it as lossy WebP.
func ConvertToWebP(data []byte, opt WebPOptions) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unsupported image: %w", err)
	}

	b := img.Bounds()
	if (opt.MaxW > 0 && b.Dx() > opt.MaxW) || (opt.MaxH > 0 && b.Dy() > opt.MaxH) {
		img = imaging.Fit(img, nonZero(opt.MaxW, b.Dx()), nonZero(opt.MaxH, b.Dy()), imaging.Lanczos)
	}
	return encodeToWebP(img, opt)
}

func nonZero(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func encodeQ(img image.Image, q float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeToWebP: single pass when TargetKB is 0, otherwise binary-search the
// quality until the output fits TargetKB+ToleranceKB.
func encodeToWebP(img image.Image, opt WebPOptions) ([]byte, error) {
	if opt.TargetKB <= 0 {
		q := opt.Quality
		if q <= 0 {
			q = 80
		}
		return encodeQ(img, q)
	}

	limit := (opt.TargetKB + opt.ToleranceKB) * 1024
	low, high := opt.MinQ, opt.MaxQ
	if low <= 0 {
		low = 45
	}
	if high <= 0 {
		high = 85
	}
	if low > high {
		low, high = high, low
	}

	var best []byte
	for i := 0; i < 7; i++ {
		q := (low + high) / 2
		data, err := encodeQ(img, q)
		if err != nil {
			return nil, err
		}
		if len(data) <= limit {
			best = data
			low = q
		} else {
			high = q
		}
	}
	if best == nil {
		return encodeQ(img, low)
	}
	return best, nil
}
