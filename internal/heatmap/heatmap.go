// Package heatmap renders the device's per-character error probabilities.
package heatmap

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/morselive/internal/protocol"
)

// Channel extremes of the red/green interpolation.
const (
	maxRed   = 233
	maxGreen = 155
	blue     = 30
)

const cellWidth = 5

// Cell is one rendered table entry.
type Cell struct {
	Char  string
	Prob  float64
	Ratio float64
	R     uint8
	G     uint8
	B     uint8
}

// Hex returns the cell colour as #rrggbb.
func (c Cell) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Label formats the probability as received.
func (c Cell) Label() string {
	return strconv.FormatFloat(c.Prob, 'f', -1, 64)
}

// Cells scales every entry against the largest probability in the set. Red
// grows with the ratio and green with its complement.
func Cells(entries []protocol.HeatmapEntry) []Cell {
	if len(entries) == 0 {
		return nil
	}
	maxProb := 0.0
	for _, e := range entries {
		if e.Prob > maxProb {
			maxProb = e.Prob
		}
	}
	// The largest entry always renders at full intensity, so a table of
	// small fractions is not washed out. The floor of 1 only guards an
	// all-zero table.
	if maxProb <= 0 {
		maxProb = 1
	}
	cells := make([]Cell, len(entries))
	for i, e := range entries {
		ratio := e.Prob / maxProb
		cells[i] = Cell{
			Char:  e.Char,
			Prob:  e.Prob,
			Ratio: ratio,
			R:     uint8(math.Round(maxRed * ratio)),
			G:     uint8(math.Round(maxGreen * (1 - ratio))),
			B:     blue,
		}
	}
	return cells
}

var cellTextStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#F0F0F0")).
	Width(cellWidth).
	Align(lipgloss.Center)

// Render draws the cells as a wrapped grid no wider than width. An empty set
// renders as nothing.
func Render(cells []Cell, width int) string {
	if len(cells) == 0 {
		return ""
	}
	perRow := width / (cellWidth + 1)
	if perRow < 1 {
		perRow = 1
	}
	var rows []string
	for start := 0; start < len(cells); start += perRow {
		end := start + perRow
		if end > len(cells) {
			end = len(cells)
		}
		parts := make([]string, 0, 2*(end-start))
		for i, c := range cells[start:end] {
			if i > 0 {
				parts = append(parts, " ")
			}
			parts = append(parts, renderCell(c))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, parts...))
	}
	return strings.Join(rows, "\n")
}

func renderCell(c Cell) string {
	style := cellTextStyle.Background(lipgloss.Color(c.Hex()))
	return lipgloss.JoinVertical(lipgloss.Center,
		style.Bold(true).Render(c.Char),
		style.Render(c.Label()),
	)
}
