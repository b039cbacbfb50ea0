package cockroach

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/jackc/pgx/v5"
	"github.com/nicolasparada/go-errs"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/foodbridge/foodbridge/types"
)

const defaultPageSize = 20

type Cursor[T any] struct {
	ID string `msgpack:"i"`
	// Value is the sort key of the row, usually its created_at.
	Value T `msgpack:"v,omitempty"`
}

func EncodeCursor[T any](cursor Cursor[T]) (string, error) {
	b, err := msgpack.Marshal(cursor)
	if err != nil {
		return "", fmt.Errorf("msgpack marshal cursor: %w", err)
	}

	return base58.Encode(b), nil
}

func DecodeCursor[T any](s string) (Cursor[T], error) {
	var c Cursor[T]

	b := base58.Decode(s)
	if len(b) == 0 {
		return c, errs.InvalidArgumentError("invalid cursor")
	}

	if err := msgpack.Unmarshal(b, &c); err != nil || c.ID == "" {
		return c, errs.InvalidArgumentError("invalid cursor")
	}

	return c, nil
}

type PageArgs[T any] struct {
	First uint
	After *Cursor[T]
}

func ParsePageArgs[T any](in types.PageArgs) (PageArgs[T], error) {
	out := PageArgs[T]{First: defaultPageSize}
	if in.First != nil {
		out.First = *in.First
	}

	if in.After != nil {
		after, err := DecodeCursor[T](*in.After)
		if err != nil {
			return out, err
		}

		out.After = &after
	}

	return out, nil
}

// addPageClauses appends the keyset filter, descending order and the
// limit. One extra row is requested to know if there is a next page.
func addPageClauses[T any](query string, filters []string, table, col string, args pgx.StrictNamedArgs, pageArgs PageArgs[T]) string {
	if pageArgs.After != nil {
		filters = append(filters, fmt.Sprintf("(%[1]s.%[2]s, %[1]s.id) < (@after_value, @after_id)", table, col))
		args["after_value"] = pageArgs.After.Value
		args["after_id"] = pageArgs.After.ID
	}

	var sb strings.Builder
	sb.WriteString(query)
	sb.WriteString(where(filters))
	fmt.Fprintf(&sb, "ORDER BY %[1]s.%[2]s DESC, %[1]s.id DESC LIMIT @page_limit", table, col)
	args["page_limit"] = pageArgs.First + 1

	return sb.String()
}

// applyPageInfo cuts the extra row and sets the end cursor in-place.
func applyPageInfo[I, C any](page *types.Page[I], pageArgs PageArgs[C], cursorFunc func(item I) Cursor[C]) error {
	if uint(len(page.Items)) > pageArgs.First {
		page.Items = page.Items[:pageArgs.First]
		page.PageInfo.HasNextPage = true
	}

	if len(page.Items) == 0 {
		return nil
	}

	end, err := EncodeCursor(cursorFunc(page.Items[len(page.Items)-1]))
	if err != nil {
		return fmt.Errorf("encode end cursor: %w", err)
	}

	page.PageInfo.EndCursor = &end
	return nil
}
