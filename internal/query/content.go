package query

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

// transcriptWindow is the trailing window applied when a transcript query
// arrives with no filter at all.
const transcriptWindow = 7 * 24 * time.Hour

// CallInsight is the reshaped enriched-call record returned for the
// highlights, summary, and extensive topics. Content fields appear only
// when the upstream produced them.
type CallInsight struct {
	ID          string   `json:"id"`
	StartTime   string   `json:"startTime"`
	Topic       string   `json:"topic"`
	Salesperson string   `json:"salesperson,omitempty"`
	Company     string   `json:"company,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Outline     []string `json:"outline,omitempty"`
	NextSteps   []string `json:"nextSteps,omitempty"`
}

// runInsights fetches enriched call content. Narrowing priority: an
// explicit call ID; then the call IDs of the resolved deals' calls (rep
// filter applied during fan-out); then the resolved rep as a native
// server-side filter; with nothing to narrow on, the single most recent
// call rather than an unbounded enrichment.
func (e *Engine) runInsights(ctx context.Context, p Params, rs resolved) (any, error) {
	f := rs.dateFilter()

	switch {
	case p.CallID != "":
		f.CallIDs = []string{p.CallID}

	case len(rs.dealIDs) > 0:
		ids := e.fanOutCallIDs(ctx, rs, rs.repID)
		if len(ids) == 0 {
			return InsightsEnvelope{Calls: []CallInsight{}}, nil
		}
		f.CallIDs = ids

	case rs.repID != "":
		f.PrimaryUserIDs = []string{rs.repID}

	default:
		if !rs.hasDates() {
			id, err := e.mostRecentCallID(ctx)
			if err != nil {
				return nil, err
			}
			if id == "" {
				return InsightsEnvelope{Calls: []CallInsight{}}, nil
			}
			f.CallIDs = []string{id}
		}
	}

	sel := gong.ContentSelector{Brief: true, Outline: true, NextSteps: true}
	records, err := e.client.CallsExtensive(ctx, f, sel)
	if err != nil {
		return nil, eris.Wrap(err, "query: fetch call content")
	}

	insights := make([]CallInsight, 0, len(records))
	for _, r := range records {
		insights = append(insights, reshapeInsight(r))
	}
	return InsightsEnvelope{Calls: insights}, nil
}

// runTranscripts fetches transcripts. Call-ID narrowing mirrors the
// insights path, except the rep filter is applied by per-call ownership
// lookups: before the fetch when a deal fan-out produced call IDs, after
// the fetch otherwise. With no filter at all the query defaults to the
// trailing seven days instead of the unbounded transcript history.
func (e *Engine) runTranscripts(ctx context.Context, p Params, rs resolved) (any, error) {
	f := rs.dateFilter()
	repCheckAfter := false

	switch {
	case p.CallID != "":
		f.CallIDs = []string{p.CallID}

	case len(rs.dealIDs) > 0:
		ids := e.fanOutCallIDs(ctx, rs, "")
		if rs.repID != "" {
			ids = e.ownedCallIDs(ctx, ids, rs.repID)
		}
		if len(ids) == 0 {
			return TranscriptsEnvelope{CallTranscripts: []gong.Transcript{}}, nil
		}
		f.CallIDs = ids

	case rs.repID != "":
		repCheckAfter = true

	default:
		if !rs.hasDates() {
			now := e.now().UTC()
			f.FromDateTime = now.Add(-transcriptWindow).Format(time.RFC3339)
			f.ToDateTime = now.Format(time.RFC3339)
		}
	}

	transcripts, err := e.client.Transcripts(ctx, f)
	if err != nil {
		return nil, eris.Wrap(err, "query: fetch transcripts")
	}

	if repCheckAfter {
		kept := make([]gong.Transcript, 0, len(transcripts))
		for _, tr := range transcripts {
			call, err := e.client.GetCall(ctx, tr.CallID)
			if err != nil {
				zap.L().Warn("query: ownership lookup failed, dropping transcript",
					zap.String("call_id", tr.CallID),
					zap.Error(err),
				)
				continue
			}
			if call.PrimaryUserID == rs.repID {
				kept = append(kept, tr)
			}
		}
		transcripts = kept
	}

	if transcripts == nil {
		transcripts = []gong.Transcript{}
	}
	return TranscriptsEnvelope{CallTranscripts: transcripts}, nil
}

// fanOutCallIDs lists each resolved deal's calls and returns the deduped
// call-ID set, first occurrence first. A non-empty repID keeps only that
// rep's calls. Per-deal failures degrade completeness, not the request.
func (e *Engine) fanOutCallIDs(ctx context.Context, rs resolved, repID string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, dealID := range rs.dealIDs {
		calls, err := e.client.ListDealCalls(ctx, dealID, rs.dateFilter())
		if err != nil {
			zap.L().Warn("query: deal call listing failed during fan-out, skipping deal",
				zap.String("deal_id", dealID),
				zap.Error(err),
			)
			continue
		}
		for _, c := range calls {
			if repID != "" && c.PrimaryUserID != repID {
				continue
			}
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// ownedCallIDs narrows a call-ID set to the calls owned by repID, one
// upstream lookup per ID. Failed lookups drop the ID.
func (e *Engine) ownedCallIDs(ctx context.Context, ids []string, repID string) []string {
	owned := make([]string, 0, len(ids))
	for _, id := range ids {
		call, err := e.client.GetCall(ctx, id)
		if err != nil {
			zap.L().Warn("query: ownership lookup failed, dropping call",
				zap.String("call_id", id),
				zap.Error(err),
			)
			continue
		}
		if call.PrimaryUserID == repID {
			owned = append(owned, id)
		}
	}
	return owned
}

// mostRecentCallID returns the ID of the newest call, or "" when the
// account has none.
func (e *Engine) mostRecentCallID(ctx context.Context) (string, error) {
	calls, err := e.client.ListCalls(ctx, gong.Filter{}, DefaultLimit)
	if err != nil {
		return "", eris.Wrap(err, "query: list recent calls")
	}
	if len(calls) == 0 {
		return "", nil
	}
	SortCallsDesc(calls)
	return calls[0].ID, nil
}

// reshapeInsight projects an enriched upstream record into the gateway's
// insight shape. Topic falls back from title to description; the rep and
// company come from the nested relations when the upstream attached them.
func reshapeInsight(r gong.CallContent) CallInsight {
	topic := r.Title
	if topic == "" {
		topic = r.Description
	}
	insight := CallInsight{
		ID:        r.ID,
		StartTime: r.Started,
		Topic:     topic,
		Summary:   r.Summary,
		Outline:   r.Outline,
		NextSteps: r.NextSteps,
	}
	if r.Owner != nil {
		insight.Salesperson = r.Owner.Name
	}
	if r.Account != nil {
		insight.Company = r.Account.Name
	}
	return insight
}
