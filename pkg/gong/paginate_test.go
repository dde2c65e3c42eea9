package gong

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, pageSize int) Client {
	t.Helper()
	return NewClient("key", "secret",
		WithBaseURL(baseURL),
		WithPageSize(pageSize),
		WithRateLimit(1000, 1000),
	)
}

func TestDecodeListPage_NamedFieldWins(t *testing.T) {
	t.Parallel()
	body := []byte(`{"users":[{"id":"1"}],"items":[{"id":"x"},{"id":"y"}]}`)

	page, err := decodeListPage(body, "users")
	require.NoError(t, err)
	require.Len(t, page.records, 1)
	assert.JSONEq(t, `{"id":"1"}`, string(page.records[0]))
}

func TestDecodeListPage_ItemsFallback(t *testing.T) {
	t.Parallel()
	body := []byte(`{"users":[],"items":[{"id":"x"},{"id":"y"}]}`)

	page, err := decodeListPage(body, "users")
	require.NoError(t, err)
	assert.Len(t, page.records, 2)
}

func TestDecodeListPage_BareList(t *testing.T) {
	t.Parallel()
	body := []byte(`[{"id":"x"}]`)

	page, err := decodeListPage(body, "users")
	require.NoError(t, err)
	assert.Len(t, page.records, 1)
}

func TestDecodeListPage_EmptyObjectEnvelope(t *testing.T) {
	t.Parallel()
	page, err := decodeListPage([]byte(`{"requestId":"r1"}`), "users")
	require.NoError(t, err)
	assert.Empty(t, page.records)
}

func TestDecodeListPage_CursorLocations(t *testing.T) {
	t.Parallel()
	page, err := decodeListPage([]byte(`{"users":[{"id":"1"}],"records":{"cursor":"abc"}}`), "users")
	require.NoError(t, err)
	assert.Equal(t, "abc", page.cursor)

	page, err = decodeListPage([]byte(`{"users":[{"id":"1"}],"cursor":"xyz"}`), "users")
	require.NoError(t, err)
	assert.Equal(t, "xyz", page.cursor)
}

func TestDecodeListPage_Unrecognized(t *testing.T) {
	t.Parallel()
	_, err := decodeListPage([]byte(`"nope"`), "users")
	assert.Error(t, err)
}

func TestWalk_CursorContinuation(t *testing.T) {
	t.Parallel()
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.RawQuery)
		if r.URL.Query().Get("cursor") == "next-1" {
			// Cursor must arrive as the only parameter.
			assert.Empty(t, r.URL.Query().Get("limit"))
			assert.Empty(t, r.URL.Query().Get("page"))
			fmt.Fprint(w, `{"users":[{"id":"3","name":"C"}]}`)
			return
		}
		fmt.Fprint(w, `{"users":[{"id":"1","name":"A"},{"id":"2","name":"B"}],"records":{"cursor":"next-1"}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "1", users[0].ID)
	assert.Equal(t, "3", users[2].ID)
	assert.Len(t, requests, 2)
}

func TestWalk_PageNumberContinuation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			assert.Equal(t, "2", r.URL.Query().Get("limit"))
			fmt.Fprint(w, `{"users":[{"id":"1"},{"id":"2"}]}`) // exactly full: ambiguous "more"
		case "2":
			fmt.Fprint(w, `{"users":[{"id":"3"}]}`) // short page: stop
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestWalk_HasMoreFlag(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, `{"users":[{"id":"1"}],"hasMore":true}`) // short page, explicit flag
		case "2":
			fmt.Fprint(w, `{"users":[]}`) // zero records: stop immediately
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 5)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestWalk_BareListTerminates(t *testing.T) {
	t.Parallel()
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		fmt.Fprint(w, `[{"id":"1"}]`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	users, err := c.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, hits)
}

func TestWalk_UpstreamErrorAborts(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, `{"errors":["bad gateway"]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	_, err := c.ListUsers(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.JSONEq(t, `{"errors":["bad gateway"]}`, string(apiErr.Body))
}

func TestWalk_DateParamsCarried(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-01-05T00:00:00Z", r.URL.Query().Get("fromDateTime"))
		fmt.Fprint(w, `{"calls":[{"id":"c1"}]}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	calls, err := c.ListDealCalls(context.Background(), "d1", Filter{FromDateTime: "2024-01-05T00:00:00Z"})
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, "c1", calls[0].ID)
}

func TestWalk_RecordsDecode(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"deals": []map[string]string{
				{"id": "d1", "name": "Renewal", "accountName": "Acme", "ownerId": "u1"},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 10)
	deals, err := c.ListDeals(context.Background())
	require.NoError(t, err)
	require.Len(t, deals, 1)
	assert.Equal(t, "Acme", deals[0].AccountName)
	assert.Equal(t, "u1", deals[0].OwnerID)
}
