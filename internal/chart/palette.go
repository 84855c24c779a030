package chart

// DefaultPalette is cycled by index for bars, bins and categories
var DefaultPalette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Palette assigns colours by position
type Palette []string

// At returns the colour for position i, wrapping around
func (p Palette) At(i int) string {
	if len(p) == 0 {
		p = DefaultPalette
	}
	return p[i%len(p)]
}

// Take returns the colours for the first n positions
func (p Palette) Take(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		colors[i] = p.At(i)
	}
	return colors
}
