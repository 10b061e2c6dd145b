package store

import (
	"context"
	"testing"
	"time"

	"github.com/flowline/contactql/internal/query"
	"github.com/flowline/contactql/internal/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.Migrate())
	return st
}

func stringPtr(s string) *string      { return &s }
func int64Ptr(i int64) *int64         { return &i }
func timePtr(tm time.Time) *time.Time { return &tm }

func seedTestData(t *testing.T, st *Store) {
	t.Helper()
	db := st.DB()

	orgs := []*Org{
		{ID: 1, Name: "Nyaruka", Timezone: "UTC"},
		{ID: 2, Name: "Shield", Timezone: "UTC", IsAnon: true},
	}
	require.NoError(t, db.Create(&orgs).Error)

	fields := []*ContactField{
		{ID: 1, OrgID: 1, Key: "age", Label: "Age", ValueType: "N", IsActive: true},
		{ID: 2, OrgID: 1, Key: "joined", Label: "Joined", ValueType: "D", IsActive: true},
		{ID: 3, OrgID: 1, Key: "gender", Label: "Gender", ValueType: "T", IsActive: true},
		{ID: 4, OrgID: 1, Key: "state", Label: "State", ValueType: "S", IsActive: true},
		{ID: 5, OrgID: 1, Key: "retired", Label: "Retired", ValueType: "T", IsActive: false},
	}
	require.NoError(t, db.Create(&fields).Error)

	contacts := []*Contact{
		{ID: 1, OrgID: 1, Name: "Bob Marley", IsActive: true, CreatedOn: time.Now()},
		{ID: 2, OrgID: 1, Name: "Alice Cooper", IsActive: true, CreatedOn: time.Now()},
		{ID: 3, OrgID: 1, Name: "Charlie Parker", IsActive: false, CreatedOn: time.Now()},
		{ID: 4, OrgID: 2, Name: "Nick Fury", IsActive: true, CreatedOn: time.Now()},
	}
	require.NoError(t, db.Create(&contacts).Error)

	urns := []*ContactURN{
		{ContactID: 1, OrgID: 1, Scheme: "tel", Path: "+250788382382"},
		{ContactID: 2, OrgID: 1, Scheme: "twitter", Path: "AliceCooper"},
		{ContactID: 4, OrgID: 2, Scheme: "tel", Path: "+250788111111"},
	}
	require.NoError(t, db.Create(&urns).Error)

	boundaries := []*AdminBoundary{
		{ID: 100, Name: "Kigali", Level: 1},
		{ID: 101, Name: "Eastern Province", Level: 1},
	}
	require.NoError(t, db.Create(&boundaries).Error)

	bobJoined := time.Date(2017, 1, 1, 10, 30, 0, 0, time.UTC)
	aliceJoined := time.Date(2018, 6, 15, 0, 0, 0, 0, time.UTC)
	values := []*Value{
		{ContactID: 1, ContactFieldID: 1, OrgID: 1, DecimalValue: decimal.NewNullDecimal(decimal.NewFromInt(42))},
		{ContactID: 2, ContactFieldID: 1, OrgID: 1, DecimalValue: decimal.NewNullDecimal(decimal.NewFromInt(28))},
		{ContactID: 1, ContactFieldID: 2, OrgID: 1, DatetimeValue: timePtr(bobJoined)},
		{ContactID: 2, ContactFieldID: 2, OrgID: 1, DatetimeValue: timePtr(aliceJoined)},
		{ContactID: 1, ContactFieldID: 3, OrgID: 1, StringValue: stringPtr("Male")},
		{ContactID: 2, ContactFieldID: 4, OrgID: 1, LocationID: int64Ptr(100)},
	}
	require.NoError(t, db.Create(&values).Error)
}

// search runs text through the full pipeline against the store.
func search(t *testing.T, st *Store, org *schema.Org, text string) []string {
	t.Helper()

	q, err := query.Parse(text)
	require.NoError(t, err)
	optimized := q.Optimized()

	propMap, err := query.ResolveProps(optimized, org, st)
	require.NoError(t, err)

	compiled, err := query.Compile(optimized, org, propMap, st)
	require.NoError(t, err)

	contacts, err := st.SearchContacts(context.Background(), org, compiled)
	require.NoError(t, err)

	names := make([]string, len(contacts))
	for i, contact := range contacts {
		names[i] = contact.Name
	}
	return names
}

func TestSearchContacts(t *testing.T) {
	st := openTestStore(t)
	seedTestData(t, st)

	org := &schema.Org{ID: 1, Timezone: time.UTC}
	anonOrg := &schema.Org{ID: 2, Timezone: time.UTC, IsAnon: true}

	tests := []struct {
		query    string
		org      *schema.Org
		expected []string
	}{
		// implicit conditions match name or URN
		{query: "bob", org: org, expected: []string{"Bob Marley"}},
		{query: "BOB", org: org, expected: []string{"Bob Marley"}},
		{query: "250788", org: org, expected: []string{"Bob Marley"}},
		{query: "alicecooper", org: org, expected: []string{"Alice Cooper"}},
		{query: "bob OR alice", org: org, expected: []string{"Bob Marley", "Alice Cooper"}},
		{query: "bob alice", org: org, expected: []string{}},

		// inactive contacts never match
		{query: "charlie", org: org, expected: []string{}},

		// name attribute
		{query: `name = "Bob Marley"`, org: org, expected: []string{"Bob Marley"}},
		{query: "name ~ cooper", org: org, expected: []string{"Alice Cooper"}},
		{query: "name = bob", org: org, expected: []string{}},

		// URN schemes
		{query: "tel = +250788382382", org: org, expected: []string{"Bob Marley"}},
		{query: "twitter ~ alice", org: org, expected: []string{"Alice Cooper"}},
		{query: "tel ~ 999", org: org, expected: []string{}},

		// decimal fields
		{query: "age > 30", org: org, expected: []string{"Bob Marley"}},
		{query: "age <= 28", org: org, expected: []string{"Alice Cooper"}},
		{query: "age = 42 OR age = 28", org: org, expected: []string{"Bob Marley", "Alice Cooper"}},
		{query: "age > 18 age < 30", org: org, expected: []string{"Alice Cooper"}},

		// datetime fields use day granularity
		{query: "joined = 2017-01-01", org: org, expected: []string{"Bob Marley"}},
		{query: "joined = 2017-01-02", org: org, expected: []string{}},
		{query: "joined > 2017-01-01", org: org, expected: []string{"Alice Cooper"}},
		{query: "joined <= 2017-01-01", org: org, expected: []string{"Bob Marley"}},

		// text fields
		{query: "gender = male", org: org, expected: []string{"Bob Marley"}},
		{query: `gender = ""`, org: org, expected: []string{"Alice Cooper"}},

		// location fields
		{query: "state = kigali", org: org, expected: []string{"Alice Cooper"}},
		{query: "state ~ eastern", org: org, expected: []string{}},

		// anonymized orgs cannot search URNs, only contact IDs
		{query: "tel = +250788111111", org: anonOrg, expected: []string{}},
		{query: "4", org: anonOrg, expected: []string{"Nick Fury"}},
		{query: "fury", org: anonOrg, expected: []string{"Nick Fury"}},

		// combinations
		{query: "age > 18 AND gender = male", org: org, expected: []string{"Bob Marley"}},
		{query: "state = kigali OR gender = male", org: org, expected: []string{"Bob Marley", "Alice Cooper"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			names := search(t, st, tt.org, tt.query)
			if len(tt.expected) == 0 {
				assert.Empty(t, names)
			} else {
				assert.Equal(t, tt.expected, names)
			}
		})
	}
}

func TestActiveFields(t *testing.T) {
	st := openTestStore(t)
	seedTestData(t, st)

	org := &schema.Org{ID: 1}

	fields, err := st.ActiveFields(org, []string{"age", "gender", "retired", "nope"})
	require.NoError(t, err)

	keys := make([]string, len(fields))
	for i, field := range fields {
		keys[i] = field.Key
	}
	assert.ElementsMatch(t, []string{"age", "gender"}, keys)

	// fields belong to their org
	other := &schema.Org{ID: 2}
	fields, err = st.ActiveFields(other, []string{"age"})
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestBoundaryIDs(t *testing.T) {
	st := openTestStore(t)
	seedTestData(t, st)

	ids, err := st.BoundaryIDs("KIGALI", true)
	require.NoError(t, err)
	assert.Equal(t, []int64{100}, ids)

	ids, err = st.BoundaryIDs("province", false)
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, ids)

	ids, err = st.BoundaryIDs("nowhere", true)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestOrgLookup(t *testing.T) {
	st := openTestStore(t)
	seedTestData(t, st)

	org, err := st.Org(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Shield", org.Name)
	assert.True(t, org.IsAnon)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", org.UUID.String())

	settings := org.Schema()
	assert.True(t, settings.IsAnon)
	assert.Equal(t, time.UTC, settings.Timezone)

	_, err = st.Org(context.Background(), 99)
	assert.Error(t, err)
}
