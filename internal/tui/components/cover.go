package components

import (
	"image"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// CoverCells renders img as rows of upper half blocks: the foreground is
// the top pixel and the background the bottom one, so each terminal row
// shows two image rows.
func CoverCells(img image.Image) string {
	if img == nil {
		return ""
	}
	b := img.Bounds()
	rows := make([]string, 0, (b.Dy()+1)/2)

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var row strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			top := hex(img, x, y)
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(top))
			if y+1 < b.Max.Y {
				style = style.Background(lipgloss.Color(hex(img, x, y+1)))
			}
			row.WriteString(style.Render("▀"))
		}
		rows = append(rows, row.String())
	}
	return strings.Join(rows, "\n")
}

func hex(img image.Image, x, y int) string {
	c, ok := colorful.MakeColor(img.At(x, y))
	if !ok {
		// fully transparent
		return "#000000"
	}
	return c.Hex()
}
