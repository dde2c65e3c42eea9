package query

import (
	"sort"
	"time"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

// DedupCalls removes duplicate calls by ID, keeping the first occurrence.
// Multiple deal fan-outs can return the same call.
func DedupCalls(calls []gong.Call) []gong.Call {
	seen := make(map[string]struct{}, len(calls))
	out := make([]gong.Call, 0, len(calls))
	for _, c := range calls {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// SortCallsDesc orders calls newest first, stably. Calls without a
// parseable start time sort as the earliest.
func SortCallsDesc(calls []gong.Call) {
	sort.SliceStable(calls, func(i, j int) bool {
		return callTime(calls[i]).After(callTime(calls[j]))
	})
}

func callTime(c gong.Call) time.Time {
	t, err := time.Parse(time.RFC3339, c.Started)
	if err != nil {
		return time.Time{}
	}
	return t
}
