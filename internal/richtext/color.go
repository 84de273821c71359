package richtext

import "strings"

// Color is a Notion color name, either a foreground color or its
// "_background" variant
type Color string

const (
	ColorDefault Color = "default"
	ColorGray    Color = "gray"
	ColorBrown   Color = "brown"
	ColorOrange  Color = "orange"
	ColorYellow  Color = "yellow"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
	ColorPink    Color = "pink"
	ColorRed     Color = "red"

	ColorGrayBackground   Color = "gray_background"
	ColorBrownBackground  Color = "brown_background"
	ColorOrangeBackground Color = "orange_background"
	ColorYellowBackground Color = "yellow_background"
	ColorGreenBackground  Color = "green_background"
	ColorBlueBackground   Color = "blue_background"
	ColorPurpleBackground Color = "purple_background"
	ColorPinkBackground   Color = "pink_background"
	ColorRedBackground    Color = "red_background"
)

var validColors = map[Color]bool{
	ColorDefault:          true,
	ColorGray:             true,
	ColorBrown:            true,
	ColorOrange:           true,
	ColorYellow:           true,
	ColorGreen:            true,
	ColorBlue:             true,
	ColorPurple:           true,
	ColorPink:             true,
	ColorRed:              true,
	ColorGrayBackground:   true,
	ColorBrownBackground:  true,
	ColorOrangeBackground: true,
	ColorYellowBackground: true,
	ColorGreenBackground:  true,
	ColorBlueBackground:   true,
	ColorPurpleBackground: true,
	ColorPinkBackground:   true,
	ColorRedBackground:    true,
}

// ParseColor lowercases name and reports whether it is a known color
func ParseColor(name string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(name)))
	return c, validColors[c]
}

// IsDefault reports whether c is empty or "default"
func (c Color) IsDefault() bool {
	return c == "" || c == ColorDefault
}

// Valid reports whether c is one of the known colors
func (c Color) Valid() bool {
	return validColors[c]
}
