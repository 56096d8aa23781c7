package memory

import (
	"context"
	"fmt"
	"strings"
)

// EmptySummary is returned verbatim when the part has no recorded history.
const EmptySummary = "No prior features recorded for this part."

// BuildSummary renders the part's history into a single text block for
// prompt injection.  With a query the most relevant events come first
// (relevance order); without one the full chronological history is used.
func (pm *PartMemory) BuildSummary(ctx context.Context, query string) (string, error) {
	var events []Payload
	var err error

	if query != "" {
		events, err = pm.Recall(ctx, query, summaryRecallLimit)
	} else {
		events, err = pm.FullHistory(ctx)
	}
	if err != nil {
		return "", err
	}

	if len(events) == 0 {
		return EmptySummary, nil
	}

	lines := []string{fmt.Sprintf("## Feature history for part '%s'\n", pm.name)}
	for i, ev := range events {
		lines = append(lines, fmt.Sprintf(
			"%d. [%s] \"%s\" – %s (params: %s, time: %s)",
			i+1, ev.FeatureType, ev.Label, ev.UserIntent,
			renderParams(ev.Parameters), ev.Timestamp,
		))
	}

	return strings.Join(lines, "\n"), nil
}
