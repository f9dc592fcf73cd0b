package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// pngBytes renders a small gradient PNG for upload tests.
func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	svc := NewService(slog.Default())
	if err := svc.Validate("application/zip", 100); err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestValidateRejectsOversize(t *testing.T) {
	svc := NewService(slog.Default())
	err := svc.Validate("image/jpeg", MaxSize+1)
	if err == nil {
		t.Fatal("expected error for oversize file")
	}
	if !strings.Contains(err.Error(), "10 MB") {
		t.Errorf("error should name the limit, got %q", err)
	}
}

func TestProcessFallsBackToDataURL(t *testing.T) {
	svc := NewService(slog.Default()) // no backends configured

	data := pngBytes(t, 50, 50)
	res, err := svc.Process(context.Background(), "photo.png", "image/png", data)
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if !strings.HasPrefix(res.URL, "data:") {
		t.Errorf("expected data URL fallback, got %q", res.URL[:min(40, len(res.URL))])
	}
	if res.Size <= 0 {
		t.Errorf("expected positive size, got %d", res.Size)
	}
}

type failingBackend struct{}

func (failingBackend) Name() string { return "failing" }
func (failingBackend) Store(context.Context, string, string, []byte) (string, error) {
	return "", fmt.Errorf("storage unavailable")
}

func TestProcessSkipsFailedBackend(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(slog.Default(), failingBackend{}, &DiskBackend{Dir: dir, URLBase: "/uploads"})

	res, err := svc.Process(context.Background(), "photo.png", "image/png", pngBytes(t, 20, 20))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if !strings.HasPrefix(res.URL, "/uploads/") {
		t.Errorf("expected disk URL, got %q", res.URL)
	}
	if _, err := os.Stat(filepath.Join(dir, res.Filename)); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}

func TestProcessRecompressesLargeImage(t *testing.T) {
	svc := NewService(slog.Default())

	res, err := svc.Process(context.Background(), "big.png", "image/png", pngBytes(t, 2400, 1200))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	if !res.Compressed {
		t.Error("expected large PNG to be recompressed")
	}
	if !strings.HasSuffix(res.Filename, ".jpg") {
		t.Errorf("recompressed file should be jpg, got %q", res.Filename)
	}
}

func TestProcessKeepsCorruptImageUncompressed(t *testing.T) {
	svc := NewService(slog.Default())

	// Valid content type, garbage bytes: compression is skipped, upload still succeeds.
	res, err := svc.Process(context.Background(), "bad.jpg", "image/jpeg", []byte("not an image"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if res.Compressed {
		t.Error("corrupt image must not be marked compressed")
	}
}

func TestProcessRejectsOversizePayload(t *testing.T) {
	svc := NewService(slog.Default())
	if _, err := svc.Process(context.Background(), "big.bin", "application/pdf", make([]byte, MaxSize+1)); err == nil {
		t.Fatal("expected oversize error")
	}
}
