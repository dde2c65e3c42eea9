package gong

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"
)

// listPage is one decoded page of a listing response.
type listPage struct {
	records []json.RawMessage
	cursor  string
	hasMore bool
}

// pageMeta is the continuation metadata Gong nests under "records".
type pageMeta struct {
	Cursor          string `json:"cursor"`
	CurrentPageSize int    `json:"currentPageSize"`
	TotalRecords    int    `json:"totalRecords"`
}

// metaEnvelope covers the continuation signals a listing response may
// carry: a nested records block, or top-level cursor/hasMore fields.
type metaEnvelope struct {
	Records pageMeta `json:"records"`
	Cursor  string   `json:"cursor"`
	HasMore bool     `json:"hasMore"`
}

// decodeListPage decodes one listing response. The record list is
// extracted by trying the possible envelope shapes in a fixed priority
// order: an object keyed by the endpoint's entity name, an object with a
// generic "items" field, then the body itself as a bare array. The first
// shape yielding a non-empty list wins.
func decodeListPage(body []byte, field string) (listPage, error) {
	var page listPage

	var keyed map[string]json.RawMessage
	if err := json.Unmarshal(body, &keyed); err == nil {
		var meta metaEnvelope
		if err := json.Unmarshal(body, &meta); err == nil {
			page.cursor = meta.Records.Cursor
			if page.cursor == "" {
				page.cursor = meta.Cursor
			}
			page.hasMore = meta.HasMore
		}
		for _, key := range []string{field, "items"} {
			raw, ok := keyed[key]
			if !ok {
				continue
			}
			var records []json.RawMessage
			if err := json.Unmarshal(raw, &records); err != nil {
				continue
			}
			if len(records) > 0 {
				page.records = records
				return page, nil
			}
		}
		// Recognized object envelope with an empty or missing list.
		return page, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(body, &records); err == nil {
		page.records = records
		return page, nil
	}

	return page, eris.New("gong: unrecognized listing envelope")
}

// walk exhaustively pages through a GET listing endpoint. Continuation,
// per page and in priority order: a cursor token is followed verbatim as
// the next request's only parameter; an explicit hasMore flag or an
// exactly-full page advances the page number; anything else terminates.
// A zero-record page terminates immediately.
func (c *httpClient) walk(ctx context.Context, path, field string, params url.Values) ([]json.RawMessage, error) {
	q := url.Values{}
	for key, vals := range params {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	q.Set("limit", strconv.Itoa(c.pageSize))
	pageNum := 1
	q.Set("page", strconv.Itoa(pageNum))

	var out []json.RawMessage
	cursor := ""
	for {
		reqQuery := q
		if cursor != "" {
			reqQuery = url.Values{"cursor": {cursor}}
		}

		body, err := c.do(ctx, http.MethodGet, path, reqQuery, nil)
		if err != nil {
			return nil, err
		}
		page, err := decodeListPage(body, field)
		if err != nil {
			return nil, err
		}
		if len(page.records) == 0 {
			return out, nil
		}
		out = append(out, page.records...)

		switch {
		case page.cursor != "":
			cursor = page.cursor
		case page.hasMore || len(page.records) == c.pageSize:
			cursor = ""
			pageNum++
			q.Set("page", strconv.Itoa(pageNum))
		default:
			return out, nil
		}
	}
}
