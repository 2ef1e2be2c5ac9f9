// Package ui provides the graphical user interface for VNC Viewer.
// This file contains icon generation utilities for the system tray.
package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/yllada/vncviewer/common"
)

// IconConfig defines the configuration for icon generation.
type IconConfig struct {
	Size        int
	ScreenColor color.RGBA
	FrameColor  color.RGBA
	StandColor  color.RGBA
	// DotColor, when set, draws an activity dot in the bottom right corner.
	DotColor color.RGBA
	ShowDot  bool
}

// DefaultActiveIconConfig returns the config used while a viewer is running.
func DefaultActiveIconConfig() IconConfig {
	return IconConfig{
		Size:        22,
		ScreenColor: color.RGBA{53, 132, 228, 255},  // Blue
		FrameColor:  color.RGBA{28, 113, 216, 255},  // Dark blue
		StandColor:  color.RGBA{158, 158, 158, 255}, // Gray
		DotColor:    color.RGBA{46, 194, 126, 255},  // Green
		ShowDot:     true,
	}
}

// DefaultIdleIconConfig returns the config used when no viewer is running.
func DefaultIdleIconConfig() IconConfig {
	return IconConfig{
		Size:        22,
		ScreenColor: color.RGBA{117, 117, 117, 255}, // Dark gray
		FrameColor:  color.RGBA{158, 158, 158, 255}, // Gray
		StandColor:  color.RGBA{158, 158, 158, 255}, // Gray
	}
}

// IconGenerator generates PNG icons for the system tray.
type IconGenerator struct {
	config IconConfig
}

// NewIconGenerator creates a new icon generator with the given config.
func NewIconGenerator(config IconConfig) *IconGenerator {
	return &IconGenerator{config: config}
}

// Generate creates a PNG icon and returns the bytes.
func (g *IconGenerator) Generate() []byte {
	size := g.config.Size
	img := image.NewRGBA(image.Rect(0, 0, size, size))

	g.drawMonitor(img)
	if g.config.ShowDot {
		g.drawDot(img)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		common.LogWarn("Could not encode tray icon: %v", err)
		return nil
	}
	return buf.Bytes()
}

// drawMonitor draws a screen with a frame on a small stand.
func (g *IconGenerator) drawMonitor(img *image.RGBA) {
	size := g.config.Size
	left, right := 1, size-2
	top, bottom := 2, size*2/3

	for y := top; y <= bottom; y++ {
		for x := left; x <= right; x++ {
			if y == top || y == bottom || x == left || x == right {
				img.Set(x, y, g.config.FrameColor)
			} else {
				img.Set(x, y, g.config.ScreenColor)
			}
		}
	}

	// Neck and foot
	mid := size / 2
	for y := bottom + 1; y < size-2; y++ {
		img.Set(mid-1, y, g.config.StandColor)
		img.Set(mid, y, g.config.StandColor)
	}
	for x := mid - 4; x <= mid+3; x++ {
		img.Set(x, size-2, g.config.StandColor)
	}
}

// drawDot draws a filled circle in the bottom right corner.
func (g *IconGenerator) drawDot(img *image.RGBA) {
	size := g.config.Size
	r := size / 5
	cx, cy := size-r-1, size-r-1
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, g.config.DotColor)
			}
		}
	}
}

// GenerateActiveIcon generates the icon shown while a viewer runs.
func GenerateActiveIcon() []byte {
	return NewIconGenerator(DefaultActiveIconConfig()).Generate()
}

// GenerateIdleIcon generates the icon shown when nothing runs.
func GenerateIdleIcon() []byte {
	return NewIconGenerator(DefaultIdleIconConfig()).Generate()
}
