package normalize

import (
	"strings"

	"github.com/insightdelivered/statement-ingest/internal/models"
)

// descPrefixLen bounds the description fragment used in the dedup key.
// The (date, description-prefix) key is a deliberate heuristic kept for
// behavioral parity: it can over-merge distinct rows and under-merge
// genuine duplicates, and existing fixtures depend on exactly that.
const descPrefixLen = 24

// Reconcile merges primary rows with text-fallback recoveries. A
// fallback row is admitted only when no primary row claimed its
// (date, description-prefix) key — fallback exists to recover missed
// rows, never to re-confirm found ones. Exact (date, description,
// amount) duplicates collapse to one; rows sharing a key but differing
// in amount stay distinct, since legitimate repeat transactions look
// exactly like that. Output keeps input encounter order.
func Reconcile(primary, fallback []models.CanonicalTransaction) []models.CanonicalTransaction {
	claimed := make(map[string]bool, len(primary))
	for _, t := range primary {
		claimed[dedupeKey(t)] = true
	}

	merged := make([]models.CanonicalTransaction, 0, len(primary)+len(fallback))
	merged = append(merged, primary...)
	for _, t := range fallback {
		if !claimed[dedupeKey(t)] {
			merged = append(merged, t)
		}
	}

	// Collapse true duplicates: full (date, description, amount) matches.
	seen := make(map[string]bool, len(merged))
	out := merged[:0]
	for _, t := range merged {
		k := exactKey(t)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}

func dedupeKey(t models.CanonicalTransaction) string {
	return t.Date + "|" + descriptionPrefix(t.Description)
}

func exactKey(t models.CanonicalTransaction) string {
	return t.Date + "|" + strings.ToLower(strings.TrimSpace(t.Description)) + "|" + t.Amount.StringFixed(2)
}

func descriptionPrefix(desc string) string {
	d := strings.Join(strings.Fields(strings.ToLower(desc)), " ")
	if len(d) > descPrefixLen {
		d = d[:descPrefixLen]
	}
	return d
}
