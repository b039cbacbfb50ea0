package types

import "github.com/nicolasparada/go-errs"

const maxPageSize = 100

type Page[T any] struct {
	Items    []T      `json:"items"`
	PageInfo PageInfo `json:"pageInfo"`
}

type PageInfo struct {
	EndCursor   *string `json:"endCursor"`
	HasNextPage bool    `json:"hasNextPage"`
}

// PageArgs only supports forward pagination; listings are newest first.
type PageArgs struct {
	First *uint
	After *string
}

func (args *PageArgs) Validate() error {
	if args.First != nil && *args.First < 1 {
		return errs.InvalidArgumentError("first must be greater than 0")
	}

	if args.First != nil && *args.First > maxPageSize {
		return errs.InvalidArgumentError("first overflow")
	}

	return nil
}
