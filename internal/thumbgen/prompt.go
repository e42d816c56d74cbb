package thumbgen

import (
	"fmt"
	"strings"

	"server/internal/domain"
)

// stylePrompts maps each supported style to its visual-language fragment.
// Adding a style means adding an entry here and a constant in domain; the
// validation below rejects anything not present in this table.
var stylePrompts = map[domain.Style]string{
	domain.StyleBoldGraphic:    "eye-catching thumbnail, bold typography, vibrant colors, expressive facial reaction, dramatic lighting, high contrast, click-worthy composition, professional style",
	domain.StyleTechFuturistic: "futuristic thumbnail, sleek modern design, digital UI elements, glowing accents, holographic effects, cyber-tech aesthetic, sharp lighting, high-tech atmosphere",
	domain.StyleMinimalist:     "minimalist thumbnail, clean layout, simple shapes, limited color palette, plenty of negative space, modern flat design, clear focal point",
	domain.StylePhotorealistic: "photorealistic thumbnail, ultra-realistic lighting, natural skin tones, candid moment, DSLR-style photography, lifestyle realism, shallow depth of field",
	domain.StyleIllustrated:    "illustrated thumbnail, custom digital illustration, stylized characters, bold outlines, vibrant colors, creative cartoon or vector art style",
}

var colorSchemeDescriptions = map[domain.ColorScheme]string{
	domain.ColorVibrant:    "vibrant and energetic colors, high saturation, bold contrasts, eye-catching palette",
	domain.ColorSunset:     "warm sunset tones, orange pink and purple hues, soft gradients, cinematic glow",
	domain.ColorForest:     "natural green tones, earthy colors, calm and organic palette, fresh atmosphere",
	domain.ColorNeon:       "neon glow effects, electric blues and pinks, cyberpunk lighting, high contrast glow",
	domain.ColorPurple:     "purple-dominant color palette, magenta and violet tones, modern and stylish mood",
	domain.ColorMonochrome: "black and white color scheme, high contrast, dramatic lighting, timeless aesthetic",
	domain.ColorOcean:      "cool blue and teal tones, aquatic color palette, fresh and clean atmosphere",
	domain.ColorPastel:     "soft pastel colors, low saturation, gentle tones, calm and friendly aesthetic",
}

// ValidStyle reports whether the style has a fragment in the table.
func ValidStyle(s domain.Style) bool {
	_, ok := stylePrompts[s]
	return ok
}

// ValidColorScheme reports whether the scheme has a fragment in the table.
// The empty scheme is valid and contributes nothing to the prompt.
func ValidColorScheme(c domain.ColorScheme) bool {
	if c == "" {
		return true
	}
	_, ok := colorSchemeDescriptions[c]
	return ok
}

// BuildPrompt assembles the natural-language prompt sent to the provider.
// The construction is pure: the same inputs always yield the identical
// string, with fragments concatenated in fixed order (style, title,
// optional color scheme, optional user prompt, closing directive).
func BuildPrompt(title string, style domain.Style, aspect domain.AspectRatio, scheme domain.ColorScheme, userPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %s image for: %s", stylePrompts[style], title)
	if scheme != "" {
		fmt.Fprintf(&b, "Use a %s color scheme.", colorSchemeDescriptions[scheme])
	}
	if userPrompt != "" {
		fmt.Fprintf(&b, "Additional details:%s", userPrompt)
	}
	fmt.Fprintf(&b, "The thumbnail should be of %s aspect ratio, visually stunning, and designed to maximize click-through rate. Make it bold, professional, and impossible to ignore.", aspect)
	return b.String()
}
