package mongodb

import (
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/devtrail/bootcamper/pkg/query"
)

// compileFilter translates descriptor conditions into a bson document.
// Conditions on the same field merge into one operator document, so
// `tuition[gte]=1&tuition[lte]=9` becomes {tuition: {$gte:1, $lte:9}}.
func compileFilter(d query.Descriptor) bson.D {
	merged := map[string]bson.D{}
	order := []string{}

	for _, c := range d.Conditions {
		if _, seen := merged[c.Field]; !seen {
			order = append(order, c.Field)
		}
		switch c.Op {
		case query.OpEq:
			merged[c.Field] = append(merged[c.Field], bson.E{Key: "$eq", Value: coerce(c.Field, c.Value)})
		case query.OpIn:
			vals := bson.A{}
			for _, v := range c.Values {
				vals = append(vals, coerce(c.Field, v))
			}
			merged[c.Field] = append(merged[c.Field], bson.E{Key: "$in", Value: vals})
		default:
			merged[c.Field] = append(merged[c.Field], bson.E{Key: "$" + string(c.Op), Value: coerce(c.Field, c.Value)})
		}
	}

	filter := bson.D{}
	for _, f := range order {
		filter = append(filter, bson.E{Key: f, Value: merged[f]})
	}
	return filter
}

// compileFindOptions translates sort, projection and pagination. The identity
// field is always projected, and an ascending _id term is appended to the
// sort as a stable tie-break.
func compileFindOptions(d query.Descriptor) options.Lister[options.FindOptions] {
	opts := options.Find()

	sort := bson.D{}
	sortedOnID := false
	for _, s := range d.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		if s.Field == "_id" {
			sortedOnID = true
		}
		sort = append(sort, bson.E{Key: s.Field, Value: dir})
	}
	if !sortedOnID {
		sort = append(sort, bson.E{Key: "_id", Value: 1})
	}
	opts.SetSort(sort)

	if len(d.Projection) > 0 {
		proj := bson.D{{Key: "_id", Value: 1}}
		for _, f := range d.Projection {
			if f == "_id" {
				continue
			}
			proj = append(proj, bson.E{Key: f, Value: 1})
		}
		opts.SetProjection(proj)
	}

	opts.SetSkip(d.Page.Skip())
	opts.SetLimit(int64(d.Page.Size))
	return opts
}

// typedFilterFields lists the non-string fields clients filter on; only
// these get numeric or boolean coercion. Everything else compares as the raw
// string, so numeric-looking values such as phone numbers or zip codes keep
// their leading zeros.
var typedFilterFields = map[string]bool{
	"averageCost":           true,
	"averageRating":         true,
	"weeks":                 true,
	"tuition":               true,
	"rating":                true,
	"housing":               true,
	"job_assistance":        true,
	"job_guarantee":         true,
	"accept_gi":             true,
	"scholarship_available": true,
}

// coerce maps a raw query string onto the closest bson-native type, so
// numeric and boolean comparisons behave as expected against typed fields.
func coerce(field, s string) any {
	if !typedFilterFields[field] {
		return s
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
