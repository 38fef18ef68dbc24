package formatter

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderShare renders part's share of whole as a bar like [████░░░░] 45%.
// Large shares are drawn red so the biggest cost centres stand out.
func RenderShare(part, whole decimal.Decimal, width int) string {
	pct := 0.0
	if whole.IsPositive() {
		pct = part.Div(whole).InexactFloat64()
	}
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct >= 0.5 {
		style = StyleRed
	} else if pct >= 0.25 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}
