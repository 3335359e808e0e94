package outwriter

import (
	"os"

	"github.com/huangsam/gitnapped/internal/contract"
	"golang.org/x/term"
)

// Bounds for the repository column.
const (
	minNameWidth = 15
	maxNameWidth = 50
)

// getMaxTableNameWidth calculates the maximum width for repository names in table output
// based on terminal width and table configuration.
func getMaxTableNameWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth <= 0 {
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Commits + Files + Lines + Gitnapped with borders/padding
	baseWidth := 60

	if cfg.Grouping.ByCategory() {
		baseWidth += 15
	}
	if cfg.Grouping.ByProject() {
		baseWidth += 15
	}
	if cfg.MostActiveDay {
		baseWidth += 20
	}

	available := termWidth - baseWidth
	if available < minNameWidth {
		return minNameWidth
	}
	if available > maxNameWidth {
		return maxNameWidth
	}
	return available
}
