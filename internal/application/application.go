// Package application holds the services orchestrating the domain: each CRUD
// verb composes identity → authorization gate → filter compilation → store
// call, and child mutations trigger the aggregate maintainer before the
// request returns.
package application

import (
	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/query"
)

// ListResult is the common shape of a compiled-list lookup.
type ListResult[T any] struct {
	Items      []T
	Total      int64
	Pagination query.Pagination
}

func newListResult[T any](items []T, total int64, page query.Page) *ListResult[T] {
	return &ListResult[T]{Items: items, Total: total, Pagination: query.Paginate(page, total)}
}

// decisionErr converts a gate denial into the matching error kind; nil when
// allowed.
func decisionErr(d authz.Decision) error {
	if d.Allowed {
		return nil
	}
	if d.Reason == authz.ReasonUnauthenticated {
		return apperr.Authentication("not authenticated")
	}
	return apperr.Authorization("not authorized to perform this action")
}
