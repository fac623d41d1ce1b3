package mongodb

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/devtrail/bootcamper/pkg/query"
)

func compile(t *testing.T, raw string) query.Descriptor {
	t.Helper()
	params, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return query.Compile(params, query.Options{
		DefaultSort:     "-created_at",
		DefaultPageSize: 25,
		MaxPageSize:     100,
	})
}

func TestCompileFilterOperators(t *testing.T) {
	f := compileFilter(compile(t, "averageCost[lte]=10000"))
	require.Len(t, f, 1)
	assert.Equal(t, "averageCost", f[0].Key)
	assert.Equal(t, bson.D{{Key: "$lte", Value: int64(10000)}}, f[0].Value)
}

func TestCompileFilterMergesRangeOnSameField(t *testing.T) {
	f := compileFilter(compile(t, "tuition[gte]=1000&tuition[lte]=9000"))
	require.Len(t, f, 1)
	assert.Equal(t, "tuition", f[0].Key)
	ops := f[0].Value.(bson.D)
	require.Len(t, ops, 2)
	assert.ElementsMatch(t, []string{"$gte", "$lte"}, []string{ops[0].Key, ops[1].Key})
}

func TestCompileFilterIn(t *testing.T) {
	f := compileFilter(compile(t, "careers[in]=Web Development,UX/UI"))
	require.Len(t, f, 1)
	ops := f[0].Value.(bson.D)
	require.Len(t, ops, 1)
	assert.Equal(t, "$in", ops[0].Key)
	assert.Equal(t, bson.A{"Web Development", "UX/UI"}, ops[0].Value)
}

func TestCompileFilterCoercesTypes(t *testing.T) {
	f := compileFilter(compile(t, "housing=true&weeks=12&tuition[gt]=99.5&city=Boston"))
	byKey := map[string]any{}
	for _, e := range f {
		ops := e.Value.(bson.D)
		byKey[e.Key] = ops[0].Value
	}
	assert.Equal(t, true, byKey["housing"])
	assert.Equal(t, int64(12), byKey["weeks"])
	assert.Equal(t, 99.5, byKey["tuition"])
	assert.Equal(t, "Boston", byKey["city"])
}

func TestCompileFilterKeepsStringFieldsVerbatim(t *testing.T) {
	f := compileFilter(compile(t, "phone=02115&name=42"))
	byKey := map[string]any{}
	for _, e := range f {
		ops := e.Value.(bson.D)
		byKey[e.Key] = ops[0].Value
	}
	// Leading zeros and digit-only names must survive as strings.
	assert.Equal(t, "02115", byKey["phone"])
	assert.Equal(t, "42", byKey["name"])
}

func TestCompileFindOptionsProjectionIncludesID(t *testing.T) {
	d := compile(t, "select=name,description")
	opts := compileFindOptions(d)

	built := bsonFindOptions(t, opts)
	proj, ok := built.Projection.(bson.D)
	require.True(t, ok)
	fields := make([]string, 0, len(proj))
	for _, e := range proj {
		fields = append(fields, e.Key)
	}
	assert.ElementsMatch(t, []string{"_id", "name", "description"}, fields)
}

func TestCompileFindOptionsSortTieBreak(t *testing.T) {
	d := compile(t, "sort=-name")
	built := bsonFindOptions(t, compileFindOptions(d))
	sort, ok := built.Sort.(bson.D)
	require.True(t, ok)
	require.Len(t, sort, 2)
	assert.Equal(t, bson.E{Key: "name", Value: -1}, sort[0])
	assert.Equal(t, bson.E{Key: "_id", Value: 1}, sort[1])
}

func TestCompileFindOptionsPaging(t *testing.T) {
	d := compile(t, "page=3&limit=10")
	built := bsonFindOptions(t, compileFindOptions(d))
	require.NotNil(t, built.Skip)
	require.NotNil(t, built.Limit)
	assert.EqualValues(t, 20, *built.Skip)
	assert.EqualValues(t, 10, *built.Limit)
}

// bsonFindOptions materializes a find-options lister the way the driver does
// before executing a query.
func bsonFindOptions(t *testing.T, lister options.Lister[options.FindOptions]) *options.FindOptions {
	t.Helper()
	built := &options.FindOptions{}
	for _, fn := range lister.List() {
		require.NoError(t, fn(built))
	}
	return built
}
