package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

// MaxSize is the largest accepted upload.
const MaxSize = 10 << 20 // 10 MB

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
	"application/pdf": ".pdf",
}

// Result describes a stored upload.
type Result struct {
	URL        string `json:"url"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Compressed bool   `json:"compressed"`
}

// Backend stores a named blob and returns its public URL.
type Backend interface {
	Name() string
	Store(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// Service validates uploads, recompresses images, and walks an ordered chain
// of storage backends. The final data-URL fallback cannot fail, so Process
// never returns a storage error for a valid file.
type Service struct {
	backends []Backend
	logger   *slog.Logger
}

func NewService(logger *slog.Logger, backends ...Backend) *Service {
	return &Service{backends: backends, logger: logger}
}

// Validate checks content type and size before any processing.
func (s *Service) Validate(contentType string, size int64) error {
	if _, ok := allowedTypes[contentType]; !ok {
		return fmt.Errorf("unsupported file type %q", contentType)
	}
	if size > MaxSize {
		return fmt.Errorf("file too large: %s exceeds the %s limit",
			humanize.Bytes(uint64(size)), humanize.Bytes(MaxSize))
	}
	return nil
}

// Process stores the file and returns the first backend's successful result.
// Image payloads are recompressed first; recompression failure is logged and
// the original bytes are stored instead.
func (s *Service) Process(ctx context.Context, originalName, contentType string, data []byte) (*Result, error) {
	if err := s.Validate(contentType, int64(len(data))); err != nil {
		return nil, err
	}

	compressed := false
	if strings.HasPrefix(contentType, "image/") && contentType != "image/heic" {
		if out, err := processImage(data); err != nil {
			s.logger.Warn("image recompression skipped", "file", originalName, "error", err)
		} else if len(out) < len(data) {
			data = out
			contentType = "image/jpeg"
			compressed = true
		}
	}

	ext := allowedTypes[contentType]
	if compressed {
		ext = ".jpg"
	}
	filename := uuid.New().String() + ext

	for _, b := range s.backends {
		url, err := b.Store(ctx, filename, contentType, data)
		if err != nil {
			s.logger.Warn("upload backend failed", "backend", b.Name(), "file", filename, "error", err)
			continue
		}
		return &Result{URL: url, Filename: filename, Size: int64(len(data)), Compressed: compressed}, nil
	}

	// Last resort: inline the bytes. Always succeeds.
	url := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	return &Result{URL: url, Filename: filename, Size: int64(len(data)), Compressed: compressed}, nil
}

// DiskBackend writes uploads to a local directory served at urlBase.
type DiskBackend struct {
	Dir     string
	URLBase string
}

func (d *DiskBackend) Name() string { return "disk" }

func (d *DiskBackend) Store(_ context.Context, filename, _ string, data []byte) (string, error) {
	if d.Dir == "" {
		return "", fmt.Errorf("upload directory not configured")
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(d.Dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return strings.TrimSuffix(d.URLBase, "/") + "/" + filename, nil
}
