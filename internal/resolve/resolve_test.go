package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/insights-gateway/pkg/gong"
)

func TestUser_ExactMatchPreferredOverSubstring(t *testing.T) {
	t.Parallel()
	users := []gong.User{
		{ID: "u1", Name: "Jane Dough"},
		{ID: "u2", Name: "Jane Doe"},
	}

	// Both names contain "jane doe" case-insensitively; the exact
	// full-name match must win even though it appears later.
	id, ok := User(users, "jane doe")
	assert.True(t, ok)
	assert.Equal(t, "u2", id)
}

func TestUser_FirstSubstringMatchWins(t *testing.T) {
	t.Parallel()
	users := []gong.User{
		{ID: "u1", Name: "Jane Dough"},
		{ID: "u2", Name: "Jane Doerr"},
	}

	id, ok := User(users, "jane")
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestUser_NoMatch(t *testing.T) {
	t.Parallel()
	users := []gong.User{{ID: "u1", Name: "Jane Doe"}}

	_, ok := User(users, "john smith")
	assert.False(t, ok)
}

func TestUser_EmptyCacheAndEmptyQuery(t *testing.T) {
	t.Parallel()
	_, ok := User(nil, "jane")
	assert.False(t, ok)

	_, ok = User([]gong.User{{ID: "u1", Name: "Jane Doe"}}, "   ")
	assert.False(t, ok)
}

func TestCompany_ExactPreferredOverSubstring(t *testing.T) {
	t.Parallel()
	deals := []gong.Deal{
		{ID: "d1", Name: "Acme Renewal", AccountName: "Acme Holdings"},
		{ID: "d2", Name: "Expansion", AccountName: "Acme"},
		{ID: "d3", Name: "acme", AccountName: "Other Co"},
	}

	// d2 and d3 match exactly (account name and deal name respectively);
	// the substring-only d1 is excluded.
	assert.Equal(t, []string{"d2", "d3"}, Company(deals, "Acme"))
}

func TestCompany_SubstringFallbackOnEitherField(t *testing.T) {
	t.Parallel()
	deals := []gong.Deal{
		{ID: "d1", Name: "Globex Renewal", AccountName: "Initech"},
		{ID: "d2", Name: "Pilot", AccountName: "Globex International"},
		{ID: "d3", Name: "Pilot", AccountName: "Initech"},
	}

	assert.Equal(t, []string{"d1", "d2"}, Company(deals, "globex"))
}

func TestCompany_NoMatchIsEmptyNotError(t *testing.T) {
	t.Parallel()
	deals := []gong.Deal{{ID: "d1", Name: "Pilot", AccountName: "Initech"}}

	assert.Empty(t, Company(deals, "Hooli"))
	assert.Empty(t, Company(nil, "Hooli"))
	assert.Empty(t, Company(deals, ""))
}
