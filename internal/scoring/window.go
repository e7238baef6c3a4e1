package scoring

import (
	"sort"

	"github.com/MrSnakeDoc/scoreboard/internal/domain"
)

// recentWindow returns at most n checks ordered newest first.
// Readers already return history in that order; sorting again keeps the
// contract when a reader hands back more or unordered rows.
func recentWindow(checks []domain.ServiceCheck, n int) []domain.ServiceCheck {
	if n <= 0 {
		n = DefaultHistoryWindow
	}
	out := make([]domain.ServiceCheck, len(checks))
	copy(out, checks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
