// Package query compiles arbitrary HTTP query parameters into a
// store-agnostic filter/sort/projection/pagination descriptor. It performs no
// I/O and never fails: malformed operator syntax degrades to a literal
// equality match so a bad query string can not break a list endpoint.
package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Op is a comparison operator on a single field.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// Reserved control keys interpreted as directives rather than field filters.
const (
	keySelect = "select"
	keySort   = "sort"
	keyPage   = "page"
	keyLimit  = "limit"
)

// Condition is one field predicate. Values is populated for OpIn, Value for
// everything else. Raw string values are kept; the store adapter decides how
// to coerce them.
type Condition struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

// SortField is one ordering term.
type SortField struct {
	Field string
	Desc  bool
}

// Page is a 1-based page selection.
type Page struct {
	Number int
	Size   int
}

// Skip returns the number of records preceding the page.
func (p Page) Skip() int64 { return int64(p.Number-1) * int64(p.Size) }

// Descriptor is the compiled, pure-value result of Compile.
type Descriptor struct {
	Conditions []Condition
	Sort       []SortField
	Projection []string // requested fields; empty means all
	Page       Page
}

// Options configures a compilation for one resource kind.
type Options struct {
	// ExcludedKeys are dropped entirely, in addition to the reserved
	// directive keys (select/sort/page/limit).
	ExcludedKeys []string
	// DefaultSort applies when no sort parameter is present, in the same
	// comma-separated, "-"-prefixed grammar.
	DefaultSort string
	// DefaultPageSize applies when no limit parameter is present.
	DefaultPageSize int
	// MaxPageSize caps the page size. Requested sizes clamp into
	// [1, MaxPageSize].
	MaxPageSize int
}

var operators = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

// Compile translates query parameters into a Descriptor. It never returns an
// error: unknown or malformed bracket operators fall back to an exact match
// on the literal key and value.
func Compile(params url.Values, opts Options) Descriptor {
	excluded := make(map[string]struct{}, len(opts.ExcludedKeys)+4)
	for _, k := range []string{keySelect, keySort, keyPage, keyLimit} {
		excluded[k] = struct{}{}
	}
	for _, k := range opts.ExcludedKeys {
		excluded[k] = struct{}{}
	}

	d := Descriptor{
		Sort: parseSort(firstOr(params, keySort, opts.DefaultSort)),
		Page: parsePage(params, opts),
	}
	if sel := params.Get(keySelect); sel != "" {
		d.Projection = splitClean(sel)
	}

	for key, values := range params {
		if _, skip := excluded[key]; skip {
			continue
		}
		field, op := parseKey(key)
		for _, v := range values {
			d.Conditions = append(d.Conditions, newCondition(field, op, v))
		}
	}
	return d
}

// parseKey splits "field[op]" into its parts. Anything that is not a
// well-formed bracket suffix with a known operator is treated as a literal
// field name with equality semantics.
func parseKey(key string) (string, Op) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	field := key[:open]
	opName := key[open+1 : len(key)-1]
	op, ok := operators[opName]
	if !ok {
		return key, OpEq
	}
	return field, op
}

func newCondition(field string, op Op, value string) Condition {
	c := Condition{Field: field, Op: op}
	if op == OpIn {
		c.Values = splitClean(value)
	} else {
		c.Value = value
	}
	return c
}

func parseSort(spec string) []SortField {
	var out []SortField
	for _, term := range splitClean(spec) {
		if term == "-" {
			continue
		}
		if strings.HasPrefix(term, "-") {
			out = append(out, SortField{Field: term[1:], Desc: true})
		} else {
			out = append(out, SortField{Field: term})
		}
	}
	return out
}

func parsePage(params url.Values, opts Options) Page {
	p := Page{Number: 1, Size: opts.DefaultPageSize}
	if n, err := strconv.Atoi(params.Get(keyPage)); err == nil && n > 0 {
		p.Number = n
	}
	if n, err := strconv.Atoi(params.Get(keyLimit)); err == nil {
		p.Size = n
	}
	if p.Size < 1 {
		p.Size = 1
	}
	if opts.MaxPageSize > 0 && p.Size > opts.MaxPageSize {
		p.Size = opts.MaxPageSize
	}
	return p
}

func firstOr(params url.Values, key, def string) string {
	if v := params.Get(key); v != "" {
		return v
	}
	return def
}

func splitClean(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
