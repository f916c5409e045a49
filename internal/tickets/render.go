package tickets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/skip2/go-qrcode"
)

// RenderTerminal draws one opaque ticket code as a scannable QR block
// using terminal half-block characters. The checker's camera reads it
// straight off the screen.
func RenderTerminal(code string) (string, error) {
	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR: %w", err)
	}
	return qr.ToSmallString(false), nil
}

// ExportPNG writes each code of a booking to its own PNG under dir,
// named ticket-1.png, ticket-2.png, ... for printing or sharing.
func ExportPNG(dir string, codes []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	files := make([]string, 0, len(codes))
	for i, code := range codes {
		name := filepath.Join(dir, fmt.Sprintf("ticket-%d.png", i+1))
		if err := qrcode.WriteFile(code, qrcode.Medium, 256, name); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		files = append(files, name)
	}
	return files, nil
}
