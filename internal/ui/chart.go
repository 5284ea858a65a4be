package ui

import (
	"strings"

	"github.com/Dicklesworthstone/sysgraph/internal/model"
)

// Block characters providing 8 vertical levels per cell (lowest to highest).
var chartBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

const noData = '·'

// renderChart draws series as a bar chart rows tall on a fixed 0-100 scale.
// Only the newest cols samples are drawn; shorter series are right-aligned
// so the newest sample is always in the last column. Unknown samples show
// as a dot on the baseline.
func renderChart(series []float64, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	if len(series) > cols {
		series = series[len(series)-cols:]
	}
	pad := cols - len(series)

	levels := rows * len(chartBlocks)
	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
	}

	for i, v := range series {
		col := pad + i
		if model.IsUnknown(v) {
			grid[rows-1][col] = noData
			continue
		}
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		filled := int(v / 100 * float64(levels))
		if filled == 0 && v > 0 {
			filled = 1
		}
		for r := 0; r < rows; r++ {
			// r counts from the bottom row
			n := filled - r*len(chartBlocks)
			if n <= 0 {
				break
			}
			if n > len(chartBlocks) {
				n = len(chartBlocks)
			}
			grid[rows-1-r][col] = chartBlocks[n-1]
		}
	}

	lines := make([]string, rows)
	for r := range grid {
		lines[r] = string(grid[r])
	}
	return strings.Join(lines, "\n")
}
