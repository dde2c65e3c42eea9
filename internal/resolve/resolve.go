// Package resolve maps human-friendly rep and company names to Gong IDs
// using the cached reference data. Absence of a match is a soft
// condition, never an error: callers drop the corresponding filter.
package resolve

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

// Fold normalizes a string for case-insensitive comparison using Unicode
// case folding.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// User resolves a salesperson name to a user ID. A match is any user
// whose name contains the query case-insensitively; an exact full-name
// match is preferred over substring matches, otherwise the first
// substring match in cache order wins.
func User(users []gong.User, name string) (string, bool) {
	query := Fold(strings.TrimSpace(name))
	if query == "" {
		return "", false
	}

	first := ""
	for _, u := range users {
		folded := Fold(u.Name)
		if !strings.Contains(folded, query) {
			continue
		}
		if folded == query {
			return u.ID, true
		}
		if first == "" {
			first = u.ID
		}
	}
	if first == "" {
		return "", false
	}
	return first, true
}

// Company resolves a company name to the IDs of the deals it matches,
// comparing against both the account name and the deal name. Exact
// matches are preferred; substring matches are the fallback. An empty
// result means nothing matched.
func Company(deals []gong.Deal, name string) []string {
	query := Fold(strings.TrimSpace(name))
	if query == "" {
		return nil
	}

	var exact, partial []string
	for _, d := range deals {
		account := Fold(d.AccountName)
		deal := Fold(d.Name)
		switch {
		case account == query || deal == query:
			exact = append(exact, d.ID)
		case strings.Contains(account, query) || strings.Contains(deal, query):
			partial = append(partial, d.ID)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}
