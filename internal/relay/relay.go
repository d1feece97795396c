// Package relay slices ordered collections into Relay-style connections.
package relay

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const cursorPrefix = "arrayconnection:"

// PageArgs are the pagination arguments of a connection field. Nil means the
// argument was not supplied.
type PageArgs struct {
	First *int
	After *string
}

// Edge pairs a node with its cursor.
type Edge struct {
	Cursor string
	Node   any
}

type PageInfo struct {
	HasNextPage     bool
	HasPreviousPage bool
	StartCursor     *string
	EndCursor       *string
}

// Connection is one page of an ordered collection.
type Connection struct {
	Edges    []Edge
	PageInfo PageInfo
	// TotalCount is the length of the full collection at resolution time.
	TotalCount int
}

// PaginationError reports unusable pagination arguments.
type PaginationError struct {
	Reason string
}

func (e *PaginationError) Error() string { return "pagination: " + e.Reason }

// EncodeCursor returns the opaque cursor of the item at offset.
func EncodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// DecodeCursor returns the offset encoded in cursor.
func DecodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, &PaginationError{Reason: fmt.Sprintf("invalid cursor %q", cursor)}
	}
	rest, ok := strings.CutPrefix(string(raw), cursorPrefix)
	if !ok {
		return 0, &PaginationError{Reason: fmt.Sprintf("invalid cursor %q", cursor)}
	}
	offset, err := strconv.Atoi(rest)
	if err != nil || offset < 0 {
		return 0, &PaginationError{Reason: fmt.Sprintf("invalid cursor %q", cursor)}
	}
	return offset, nil
}

// Paginate returns the page of items following args.After, at most
// args.First items long. Item order is preserved.
func Paginate(items []any, args PageArgs) (*Connection, error) {
	start := 0
	if args.After != nil {
		offset, err := DecodeCursor(*args.After)
		if err != nil {
			return nil, err
		}
		if offset >= len(items) {
			return nil, &PaginationError{Reason: fmt.Sprintf("cursor offset %d is outside a collection of %d", offset, len(items))}
		}
		start = offset + 1
	}
	end := len(items)
	if args.First != nil {
		if *args.First < 0 {
			return nil, &PaginationError{Reason: fmt.Sprintf("first must be non-negative, got %d", *args.First)}
		}
		end = min(start+*args.First, len(items))
	}

	conn := &Connection{
		Edges:      make([]Edge, 0, end-start),
		TotalCount: len(items),
	}
	for i := start; i < end; i++ {
		conn.Edges = append(conn.Edges, Edge{Cursor: EncodeCursor(i), Node: items[i]})
	}
	conn.PageInfo.HasPreviousPage = start > 0
	conn.PageInfo.HasNextPage = end < len(items)
	if n := len(conn.Edges); n > 0 {
		first, last := conn.Edges[0].Cursor, conn.Edges[n-1].Cursor
		conn.PageInfo.StartCursor = &first
		conn.PageInfo.EndCursor = &last
	}
	return conn, nil
}
