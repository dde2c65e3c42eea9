// Package query implements the insight query engine: it resolves
// human-friendly filters (rep and company names, calendar dates) against
// the cached reference data, plans and fans out the upstream Gong calls a
// topic requires, and aggregates the results into normalized envelopes.
package query

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/insights-gateway/internal/refdata"
	"github.com/sells-group/insights-gateway/internal/resolve"
	"github.com/sells-group/insights-gateway/pkg/gong"
)

// DefaultLimit caps unfiltered calls and deals listings so a bare query
// never pulls the full history.
const DefaultLimit = 10

// Params is one inbound query as parsed from the gateway surface.
type Params struct {
	Topic   string
	Rep     string
	Company string
	DealID  string
	CallID  string
	From    string
	To      string
}

// Response envelopes, one per topic family.
type (
	// UsersEnvelope wraps the users listing.
	UsersEnvelope struct {
		Users []gong.User `json:"users"`
	}
	// CallsEnvelope wraps a calls listing.
	CallsEnvelope struct {
		Calls []gong.Call `json:"calls"`
	}
	// DealsEnvelope wraps a deals listing.
	DealsEnvelope struct {
		Deals []gong.Deal `json:"deals"`
	}
	// InsightsEnvelope wraps reshaped enriched-call records.
	InsightsEnvelope struct {
		Calls []CallInsight `json:"calls"`
	}
	// TranscriptsEnvelope wraps a transcripts listing.
	TranscriptsEnvelope struct {
		CallTranscripts []gong.Transcript `json:"callTranscripts"`
	}
)

// Engine resolves and executes insight queries against the Gong API.
type Engine struct {
	client gong.Client
	cache  *refdata.Cache
	now    func() time.Time
}

// New creates an engine backed by the given client and reference cache.
func New(client gong.Client, cache *refdata.Cache) *Engine {
	return &Engine{client: client, cache: cache, now: time.Now}
}

// resolved is the request-scoped filter set derived from Params. Empty
// fields mean the corresponding filter was not requested or did not
// resolve and is ignored.
type resolved struct {
	from    string
	to      string
	repID   string
	dealIDs []string
}

func (r resolved) hasDates() bool {
	return r.from != "" || r.to != ""
}

func (r resolved) dateFilter() gong.Filter {
	return gong.Filter{FromDateTime: r.from, ToDateTime: r.to}
}

const (
	topicUsers       = "users"
	topicCalls       = "calls"
	topicDeals       = "deals"
	topicDeal        = "deal"
	topicDealCalls   = "deal_calls"
	topicInsights    = "insights"
	topicTranscripts = "transcripts"
)

// normalizeTopic maps the caller's topic to a dispatch family. Unknown
// topics fall back to the default calls listing.
func normalizeTopic(topic string) string {
	switch topic {
	case "users":
		return topicUsers
	case "deals":
		return topicDeals
	case "deal":
		return topicDeal
	case "deal_calls":
		return topicDealCalls
	case "highlights", "summary", "extensive":
		return topicInsights
	case "transcript", "transcripts":
		return topicTranscripts
	case "", "calls":
		return topicCalls
	default:
		zap.L().Debug("query: unknown topic, defaulting to calls", zap.String("topic", topic))
		return topicCalls
	}
}

// Run executes one query and returns the topic's JSON envelope.
func (e *Engine) Run(ctx context.Context, p Params) (any, error) {
	rs, err := e.resolve(ctx, p)
	if err != nil {
		return nil, err
	}

	switch normalizeTopic(p.Topic) {
	case topicUsers:
		return e.runUsers(ctx)
	case topicDeals:
		return e.runDeals(ctx, p, rs)
	case topicDeal:
		return e.runDeal(ctx, p, rs)
	case topicDealCalls:
		return e.runDealCalls(ctx, p, rs)
	case topicInsights:
		return e.runInsights(ctx, p, rs)
	case topicTranscripts:
		return e.runTranscripts(ctx, p, rs)
	default:
		return e.runCalls(ctx, rs)
	}
}

// resolve derives the request-scoped filter set. Unparseable dates and
// unresolved names degrade softly: the filter is dropped and logged, the
// request continues. Reference-cache load failures are hard errors.
func (e *Engine) resolve(ctx context.Context, p Params) (resolved, error) {
	var rs resolved

	if v, ok := NormalizeDate(p.From, false); ok {
		rs.from = v
	} else if p.From != "" {
		zap.L().Info("query: dropping unparseable from bound", zap.String("from", p.From))
	}
	if v, ok := NormalizeDate(p.To, true); ok {
		rs.to = v
	} else if p.To != "" {
		zap.L().Info("query: dropping unparseable to bound", zap.String("to", p.To))
	}

	if p.Rep != "" {
		users, err := e.cache.Users(ctx)
		if err != nil {
			return rs, eris.Wrap(err, "query: load user directory")
		}
		if id, ok := resolve.User(users, p.Rep); ok {
			rs.repID = id
		} else {
			zap.L().Info("query: rep name did not resolve, ignoring filter", zap.String("rep", p.Rep))
		}
	}

	if p.Company != "" {
		deals, err := e.cache.Deals(ctx)
		if err != nil {
			return rs, eris.Wrap(err, "query: load deal directory")
		}
		rs.dealIDs = resolve.Company(deals, p.Company)
		if len(rs.dealIDs) == 0 {
			zap.L().Info("query: company name did not resolve, ignoring filter", zap.String("company", p.Company))
		}
	}

	return rs, nil
}

func (e *Engine) runUsers(ctx context.Context) (any, error) {
	users, err := e.cache.Users(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "query: load user directory")
	}
	if users == nil {
		users = []gong.User{}
	}
	return UsersEnvelope{Users: users}, nil
}

func (e *Engine) runCalls(ctx context.Context, rs resolved) (any, error) {
	var calls []gong.Call

	if len(rs.dealIDs) > 0 {
		calls = e.fanOutDealCalls(ctx, rs.dealIDs, rs.dateFilter())
	} else {
		limit := 0
		if !rs.hasDates() {
			limit = DefaultLimit
		}
		var err error
		calls, err = e.client.ListCalls(ctx, rs.dateFilter(), limit)
		if err != nil {
			return nil, eris.Wrap(err, "query: list calls")
		}
	}

	calls = filterCalls(calls, rs.repID, rs.dealIDs)
	calls = DedupCalls(calls)
	SortCallsDesc(calls)
	// The implicit cap covers only the unfiltered global listing; a date
	// range or a company fan-out lifts it.
	if len(rs.dealIDs) == 0 && !rs.hasDates() && len(calls) > DefaultLimit {
		calls = calls[:DefaultLimit]
	}
	return CallsEnvelope{Calls: calls}, nil
}

func (e *Engine) runDeals(ctx context.Context, p Params, rs resolved) (any, error) {
	deals, err := e.cache.Deals(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "query: load deal directory")
	}

	term := ""
	if p.Company != "" {
		term = resolve.Fold(p.Company)
	}

	out := make([]gong.Deal, 0, DefaultLimit)
	for _, d := range deals {
		if rs.repID != "" && d.OwnerID != rs.repID {
			continue
		}
		if term != "" && !containsFold(d.AccountName, term) && !containsFold(d.Name, term) {
			continue
		}
		out = append(out, d)
		if len(out) == DefaultLimit {
			break
		}
	}
	return DealsEnvelope{Deals: out}, nil
}

func (e *Engine) runDeal(ctx context.Context, p Params, rs resolved) (any, error) {
	id := p.DealID
	if id == "" && len(rs.dealIDs) == 1 {
		id = rs.dealIDs[0]
	}
	if id == "" {
		return nil, ErrMissingDeal
	}

	raw, err := e.client.GetDeal(ctx, id)
	if err != nil {
		return nil, eris.Wrapf(err, "query: get deal %s", id)
	}
	return raw, nil
}

func (e *Engine) runDealCalls(ctx context.Context, p Params, rs resolved) (any, error) {
	id := p.DealID
	if id == "" && len(rs.dealIDs) == 1 {
		id = rs.dealIDs[0]
	}
	if id == "" {
		return nil, ErrMissingDeal
	}

	calls, err := e.client.ListDealCalls(ctx, id, rs.dateFilter())
	if err != nil {
		return nil, eris.Wrapf(err, "query: list calls for deal %s", id)
	}
	if calls == nil {
		calls = []gong.Call{}
	}
	return CallsEnvelope{Calls: calls}, nil
}

// fanOutDealCalls lists each deal's calls sequentially and concatenates.
// A single deal's failure degrades completeness instead of failing the
// request: the deal is skipped and logged.
func (e *Engine) fanOutDealCalls(ctx context.Context, dealIDs []string, f gong.Filter) []gong.Call {
	var calls []gong.Call
	for _, dealID := range dealIDs {
		part, err := e.client.ListDealCalls(ctx, dealID, f)
		if err != nil {
			zap.L().Warn("query: deal call listing failed, skipping deal",
				zap.String("deal_id", dealID),
				zap.Error(err),
			)
			continue
		}
		calls = append(calls, part...)
	}
	return calls
}

// filterCalls applies the narrowing the upstream listings cannot do
// natively: rep ownership and deal membership. An empty repID or deal set
// means the corresponding filter was not requested (or did not resolve)
// and is skipped.
func filterCalls(calls []gong.Call, repID string, dealIDs []string) []gong.Call {
	if repID == "" && len(dealIDs) == 0 {
		return calls
	}

	dealSet := make(map[string]struct{}, len(dealIDs))
	for _, id := range dealIDs {
		dealSet[id] = struct{}{}
	}

	out := make([]gong.Call, 0, len(calls))
	for _, c := range calls {
		if repID != "" && c.PrimaryUserID != repID {
			continue
		}
		if len(dealSet) > 0 {
			if _, ok := dealSet[c.DealID]; !ok {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func containsFold(s, foldedTerm string) bool {
	return strings.Contains(resolve.Fold(s), foldedTerm)
}
