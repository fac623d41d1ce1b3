package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOpts() Options {
	return Options{
		DefaultSort:     "-createdAt",
		DefaultPageSize: 25,
		MaxPageSize:     100,
	}
}

func mustParse(t *testing.T, raw string) url.Values {
	t.Helper()
	v, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return v
}

func condByField(d Descriptor, field string) (Condition, bool) {
	for _, c := range d.Conditions {
		if c.Field == field {
			return c, true
		}
	}
	return Condition{}, false
}

func TestCompileOperators(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
		want  Condition
	}{
		{
			name:  "plain equality",
			raw:   "housing=true",
			field: "housing",
			want:  Condition{Field: "housing", Op: OpEq, Value: "true"},
		},
		{
			name:  "lte",
			raw:   "averageCost[lte]=10000",
			field: "averageCost",
			want:  Condition{Field: "averageCost", Op: OpLte, Value: "10000"},
		},
		{
			name:  "gt",
			raw:   "tuition[gt]=5000",
			field: "tuition",
			want:  Condition{Field: "tuition", Op: OpGt, Value: "5000"},
		},
		{
			name:  "in splits on comma",
			raw:   "careers[in]=Web Development,UX/UI",
			field: "careers",
			want: Condition{
				Field:  "careers",
				Op:     OpIn,
				Values: []string{"Web Development", "UX/UI"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Compile(mustParse(t, tt.raw), defaultOpts())
			got, ok := condByField(d, tt.field)
			require.True(t, ok, "condition for %q not compiled", tt.field)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileMalformedOperatorDegradesToLiteral(t *testing.T) {
	// Unknown operator and broken bracket syntax must never fail; the whole
	// key becomes a literal equality field.
	tests := []struct {
		raw       string
		wantField string
	}{
		{"averageCost[foo]=10", "averageCost[foo]"},
		{"averageCost[lte=10", "averageCost[lte"},
		{"[lte]=10", "[lte]"},
	}
	for _, tt := range tests {
		d := Compile(mustParse(t, tt.raw), defaultOpts())
		got, ok := condByField(d, tt.wantField)
		require.True(t, ok, "no condition for %q", tt.wantField)
		assert.Equal(t, OpEq, got.Op)
	}
}

func TestCompileCombinedDirectives(t *testing.T) {
	d := Compile(mustParse(t, "averageCost[lte]=10000&sort=-name&page=2&limit=5"), defaultOpts())

	require.Len(t, d.Conditions, 1)
	assert.Equal(t, Condition{Field: "averageCost", Op: OpLte, Value: "10000"}, d.Conditions[0])
	require.Len(t, d.Sort, 1)
	assert.Equal(t, SortField{Field: "name", Desc: true}, d.Sort[0])
	assert.Equal(t, 2, d.Page.Number)
	assert.Equal(t, 5, d.Page.Size)
	assert.EqualValues(t, 5, d.Page.Skip())
}

func TestCompileReservedKeysAreNotFilters(t *testing.T) {
	d := Compile(mustParse(t, "select=name,description&sort=name&page=1&limit=10&name=x"), defaultOpts())
	require.Len(t, d.Conditions, 1)
	assert.Equal(t, "name", d.Conditions[0].Field)
	assert.Equal(t, []string{"name", "description"}, d.Projection)
}

func TestCompileExcludedKeys(t *testing.T) {
	opts := defaultOpts()
	opts.ExcludedKeys = []string{"q"}
	d := Compile(mustParse(t, "q=react&city=Boston"), opts)
	_, ok := condByField(d, "q")
	assert.False(t, ok)
	_, ok = condByField(d, "city")
	assert.True(t, ok)
}

func TestCompileSortDefaultsAndGrammar(t *testing.T) {
	d := Compile(mustParse(t, ""), defaultOpts())
	require.Len(t, d.Sort, 1)
	assert.Equal(t, SortField{Field: "createdAt", Desc: true}, d.Sort[0])

	d = Compile(mustParse(t, "sort=name,-tuition"), defaultOpts())
	assert.Equal(t, []SortField{{Field: "name"}, {Field: "tuition", Desc: true}}, d.Sort)
}

func TestCompilePageClamping(t *testing.T) {
	tests := []struct {
		raw      string
		wantPage int
		wantSize int
	}{
		{"", 1, 25},
		{"page=0&limit=0", 1, 1},
		{"page=-2&limit=-5", 1, 1},
		{"limit=100000", 1, 100},
		{"page=3&limit=50", 3, 50},
		{"page=abc&limit=abc", 1, 25},
	}
	for _, tt := range tests {
		d := Compile(mustParse(t, tt.raw), defaultOpts())
		assert.Equal(t, tt.wantPage, d.Page.Number, "raw=%q", tt.raw)
		assert.Equal(t, tt.wantSize, d.Page.Size, "raw=%q", tt.raw)
	}
}

func TestPaginate(t *testing.T) {
	p := Page{Number: 2, Size: 5}

	pg := Paginate(p, 12)
	require.NotNil(t, pg.Next)
	require.NotNil(t, pg.Prev)
	assert.Equal(t, &PageRef{Page: 3, Limit: 5}, pg.Next)
	assert.Equal(t, &PageRef{Page: 1, Limit: 5}, pg.Prev)

	pg = Paginate(Page{Number: 1, Size: 25}, 10)
	assert.Nil(t, pg.Next)
	assert.Nil(t, pg.Prev)

	pg = Paginate(Page{Number: 3, Size: 5}, 15)
	assert.Nil(t, pg.Next)
	assert.NotNil(t, pg.Prev)
}
