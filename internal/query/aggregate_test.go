package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

func TestDedupCalls_FirstOccurrenceWins(t *testing.T) {
	t.Parallel()
	calls := []gong.Call{
		{ID: "a", Title: "first a"},
		{ID: "b"},
		{ID: "a", Title: "second a"},
		{ID: "c"},
		{ID: "b"},
	}

	out := DedupCalls(calls)
	assert.Equal(t, []string{"a", "b", "c"}, callIDs(out))
	assert.Equal(t, "first a", out[0].Title)
}

func TestDedupCalls_Idempotent(t *testing.T) {
	t.Parallel()
	calls := []gong.Call{{ID: "a"}, {ID: "b"}, {ID: "a"}}

	once := DedupCalls(calls)
	twice := DedupCalls(once)
	assert.Equal(t, once, twice)
}

func TestSortCallsDesc(t *testing.T) {
	t.Parallel()
	calls := []gong.Call{
		{ID: "old", Started: "2024-01-01T10:00:00Z"},
		{ID: "missing"},
		{ID: "new", Started: "2024-03-01T10:00:00Z"},
		{ID: "bad", Started: "yesterday-ish"},
		{ID: "mid", Started: "2024-02-01T10:00:00Z"},
	}

	SortCallsDesc(calls)

	// Newest first; missing and unparseable start times sort as earliest,
	// keeping their relative order.
	assert.Equal(t, []string{"new", "mid", "old", "missing", "bad"}, callIDs(calls))
}

func callIDs(calls []gong.Call) []string {
	ids := make([]string, 0, len(calls))
	for _, c := range calls {
		ids = append(ids, c.ID)
	}
	return ids
}
