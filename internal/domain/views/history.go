package views

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/abdidvp/slopwatch/internal/domain"
)

// HistoryRow is one selectable history item.
type HistoryRow struct {
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Detail      string    `json:"detail"`
	Score       float64   `json:"score"`
	Timestamp   time.Time `json:"-"`
}

// HistoryView is the display-ready history. Empty is set when there is no
// history at all, distinct from a view with rows.
type HistoryView struct {
	Path  string       `json:"path,omitempty"`
	Rows  []HistoryRow `json:"rows"`
	Empty bool         `json:"empty"`
}

// timestamp layouts accepted from the analyzer, most specific first.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// History sorts entries newest first and formats them with the same
// precision as the summary diagnostic. The input slice is not modified.
func History(entries []domain.HistoryEntry) HistoryView {
	if len(entries) == 0 {
		return HistoryView{Rows: []HistoryRow{}, Empty: true}
	}

	type keyed struct {
		entry  domain.HistoryEntry
		at     time.Time
		parsed bool
	}
	items := make([]keyed, len(entries))
	for i, e := range entries {
		at, ok := parseTimestamp(e.Timestamp)
		items[i] = keyed{entry: e, at: at, parsed: ok}
	}

	// Parsed timestamps first (newest first), unparseable ones after in
	// reverse lexical order.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.parsed != b.parsed {
			return a.parsed
		}
		if a.parsed {
			return a.at.After(b.at)
		}
		return a.entry.Timestamp > b.entry.Timestamp
	})

	rows := make([]HistoryRow, len(items))
	for i, it := range items {
		metrics := it.entry.Metrics()
		parts := make([]string, len(metrics))
		for k, m := range metrics {
			parts[k] = domain.FormatMetric(m)
		}
		rows[i] = HistoryRow{
			Label:       it.entry.Timestamp,
			Description: fmt.Sprintf("Score: %s (%s)", domain.FormatScore(it.entry.DeficitScore), it.entry.Status),
			Detail:      strings.Join(parts, ", "),
			Score:       it.entry.DeficitScore,
			Timestamp:   it.at,
		}
	}
	return HistoryView{Rows: rows}
}
