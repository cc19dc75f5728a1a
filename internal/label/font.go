// Package label loads and measures the font the date labels are drawn with.
package label

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Font is a parsed label font at a fixed point size
type Font struct {
	path string
	face font.Face
}

// Load parses a TrueType/OpenType font file the way drawtext will use it
func Load(path string, size int) (*Font, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font size must be positive, got %d", size)
	}

	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}

	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	// drawtext sizes are pixels, so 72 DPI keeps points and pixels equal
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return &Font{path: path, face: face}, nil
}

// Path returns the file the font was loaded from
func (f *Font) Path() string {
	return f.path
}

// Width is the rendered width of text in pixels
func (f *Font) Width(text string) int {
	return font.MeasureString(f.face, text).Ceil()
}

// Widest returns the widest of labels and its width
func (f *Font) Widest(labels []string) (string, int) {
	var widest string
	var width int
	for _, l := range labels {
		if w := f.Width(l); w > width {
			widest, width = l, w
		}
	}
	return widest, width
}

func (f *Font) Close() error {
	return f.face.Close()
}
