// Package gong provides a client for the Gong conversation-analytics API.
//
// Listing endpoints paginate with either an opaque cursor or a page
// number, and wrap their records in one of several envelope shapes; the
// client walks pages exhaustively and hides both concerns from callers.
package gong

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the Gong API operations the gateway consumes.
type Client interface {
	// ListUsers exhaustively pages through the user directory.
	ListUsers(ctx context.Context) ([]User, error)
	// ListDeals exhaustively pages through the deal directory.
	ListDeals(ctx context.Context) ([]Deal, error)
	// ListCalls lists calls within the filter's date bounds. A positive
	// limit fetches a single page of at most that many records instead
	// of walking the full listing.
	ListCalls(ctx context.Context, f Filter, limit int) ([]Call, error)
	// ListDealCalls exhaustively pages through one deal's calls.
	ListDealCalls(ctx context.Context, dealID string, f Filter) ([]Call, error)
	// GetDeal fetches a single deal and returns the upstream object as-is.
	GetDeal(ctx context.Context, dealID string) (json.RawMessage, error)
	// GetCall fetches a single call.
	GetCall(ctx context.Context, callID string) (*Call, error)
	// CallsExtensive fetches enriched call content for the filtered calls.
	CallsExtensive(ctx context.Context, f Filter, sel ContentSelector) ([]CallContent, error)
	// Transcripts fetches transcripts for the filtered calls.
	Transcripts(ctx context.Context, f Filter) ([]Transcript, error)
}

// Option configures the Gong client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPageSize sets the page size requested from listing endpoints.
func WithPageSize(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithRateLimit caps the request rate against the upstream.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

type httpClient struct {
	accessKey string
	secret    string
	baseURL   string
	pageSize  int
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient creates a Gong API client authenticating with the given
// access-key/secret pair.
func NewClient(accessKey, secret string, opts ...Option) Client {
	c := &httpClient{
		accessKey: accessKey,
		secret:    secret,
		baseURL:   "https://api.gong.io",
		pageSize:  100,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(3, 3),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do issues one request and returns the response body. Non-2xx statuses
// become *APIError so callers can surface the upstream payload.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "gong: rate limiter wait")
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, eris.Wrap(err, "gong: marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, eris.Wrap(err, "gong: create request")
	}
	req.Header.Set("Authorization", "Basic "+c.basicCredentials())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "gong: %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "gong: read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: data}
	}

	return data, nil
}

func (c *httpClient) basicCredentials() string {
	return base64.StdEncoding.EncodeToString([]byte(c.accessKey + ":" + c.secret))
}

func (c *httpClient) ListUsers(ctx context.Context) ([]User, error) {
	raws, err := c.walk(ctx, "/v2/users", "users", nil)
	if err != nil {
		return nil, eris.Wrap(err, "gong: list users")
	}
	return decodeRecords[User](raws)
}

func (c *httpClient) ListDeals(ctx context.Context) ([]Deal, error) {
	raws, err := c.walk(ctx, "/v2/deals", "deals", nil)
	if err != nil {
		return nil, eris.Wrap(err, "gong: list deals")
	}
	return decodeRecords[Deal](raws)
}

func (c *httpClient) ListCalls(ctx context.Context, f Filter, limit int) ([]Call, error) {
	q := dateQuery(f)

	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
		body, err := c.do(ctx, http.MethodGet, "/v2/calls", q, nil)
		if err != nil {
			return nil, eris.Wrap(err, "gong: list calls")
		}
		page, err := decodeListPage(body, "calls")
		if err != nil {
			return nil, eris.Wrap(err, "gong: list calls")
		}
		return decodeRecords[Call](page.records)
	}

	raws, err := c.walk(ctx, "/v2/calls", "calls", q)
	if err != nil {
		return nil, eris.Wrap(err, "gong: list calls")
	}
	return decodeRecords[Call](raws)
}

func (c *httpClient) ListDealCalls(ctx context.Context, dealID string, f Filter) ([]Call, error) {
	raws, err := c.walk(ctx, "/v2/deals/"+url.PathEscape(dealID)+"/calls", "calls", dateQuery(f))
	if err != nil {
		return nil, eris.Wrapf(err, "gong: list calls for deal %s", dealID)
	}
	return decodeRecords[Call](raws)
}

func (c *httpClient) GetDeal(ctx context.Context, dealID string) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/deals/"+url.PathEscape(dealID), nil, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "gong: get deal %s", dealID)
	}
	return json.RawMessage(body), nil
}

func (c *httpClient) GetCall(ctx context.Context, callID string) (*Call, error) {
	body, err := c.do(ctx, http.MethodGet, "/v2/calls/"+url.PathEscape(callID), nil, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "gong: get call %s", callID)
	}
	call, err := decodeObject[Call](body, "call")
	if err != nil {
		return nil, eris.Wrapf(err, "gong: get call %s", callID)
	}
	return call, nil
}

type extensiveRequest struct {
	Filter          Filter          `json:"filter"`
	ContentSelector ContentSelector `json:"contentSelector"`
}

func (c *httpClient) CallsExtensive(ctx context.Context, f Filter, sel ContentSelector) ([]CallContent, error) {
	body, err := c.do(ctx, http.MethodPost, "/v2/calls/extensive", nil, extensiveRequest{Filter: f, ContentSelector: sel})
	if err != nil {
		return nil, eris.Wrap(err, "gong: fetch extensive calls")
	}
	page, err := decodeListPage(body, "calls")
	if err != nil {
		return nil, eris.Wrap(err, "gong: fetch extensive calls")
	}
	return decodeRecords[CallContent](page.records)
}

type transcriptRequest struct {
	Filter Filter `json:"filter"`
}

func (c *httpClient) Transcripts(ctx context.Context, f Filter) ([]Transcript, error) {
	body, err := c.do(ctx, http.MethodPost, "/v2/calls/transcript", nil, transcriptRequest{Filter: f})
	if err != nil {
		return nil, eris.Wrap(err, "gong: fetch transcripts")
	}
	page, err := decodeListPage(body, "callTranscripts")
	if err != nil {
		return nil, eris.Wrap(err, "gong: fetch transcripts")
	}
	return decodeRecords[Transcript](page.records)
}

// dateQuery converts the filter's date bounds into listing query params.
// Call and rep narrowing are not supported by the GET listings, so the
// remaining filter fields are intentionally ignored here.
func dateQuery(f Filter) url.Values {
	q := url.Values{}
	if f.FromDateTime != "" {
		q.Set("fromDateTime", f.FromDateTime)
	}
	if f.ToDateTime != "" {
		q.Set("toDateTime", f.ToDateTime)
	}
	return q
}

// decodeRecords unmarshals raw listing records into their concrete type.
func decodeRecords[T any](raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, eris.Wrap(err, "gong: decode record")
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeObject unmarshals a single-object response that may arrive either
// bare or keyed by the entity name.
func decodeObject[T any](body []byte, field string) (*T, error) {
	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(body, &keyed); err == nil {
		if raw, ok := keyed[field]; ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				return &v, nil
			}
		}
	}
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, eris.Wrap(err, "gong: decode object")
	}
	return &v, nil
}
