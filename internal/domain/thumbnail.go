package domain

import (
	"strings"
	"time"
)

// Style enumerates the supported visual styles.
type Style string

const (
	StyleBoldGraphic    Style = "Bold & Graphic"
	StyleTechFuturistic Style = "Tech/Futuristic"
	StyleMinimalist     Style = "Minimalist"
	StylePhotorealistic Style = "Photorealistic"
	StyleIllustrated    Style = "Illustrated"
)

// AspectRatio enumerates the supported output shapes.
type AspectRatio string

const (
	AspectLandscape AspectRatio = "16:9"
	AspectSquare    AspectRatio = "1:1"
	AspectPortrait  AspectRatio = "9:16"

	DefaultAspectRatio = AspectLandscape
)

// ColorScheme enumerates the supported palettes.
type ColorScheme string

const (
	ColorVibrant    ColorScheme = "vibrant"
	ColorSunset     ColorScheme = "sunset"
	ColorForest     ColorScheme = "forest"
	ColorNeon       ColorScheme = "neon"
	ColorPurple     ColorScheme = "purple"
	ColorMonochrome ColorScheme = "monochrome"
	ColorOcean      ColorScheme = "ocean"
	ColorPastel     ColorScheme = "pastel"
)

// Thumbnail represents one generation attempt and its outcome. A record is
// inserted with IsGenerating=true before the provider is called; exactly one
// of {IsGenerating, ImageURL set} holds once the workflow terminates.
type Thumbnail struct {
	ID           string
	UserID       string
	Title        string
	Style        Style
	AspectRatio  AspectRatio
	ColorScheme  ColorScheme
	UserPrompt   string
	TextOverlay  bool
	PromptUsed   string
	ImageURL     string
	IsGenerating bool
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidAspectRatio reports whether the given ratio is one of the supported
// shapes. The empty string is valid and resolves to DefaultAspectRatio.
func ValidAspectRatio(r AspectRatio) bool {
	switch r {
	case "", AspectLandscape, AspectSquare, AspectPortrait:
		return true
	}
	return false
}

// NormalizeEmail lowercases and trims an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
