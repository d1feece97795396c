package relay

import (
	"encoding/base64"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func items(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = i * 10
	}
	return out
}

func nodes(c *Connection) []any {
	out := make([]any, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}

func TestCursorRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 7, 1234} {
		got, err := DecodeCursor(EncodeCursor(offset))
		require.NoError(t, err)
		assert.Equal(t, offset, got)
	}
	raw, err := base64.StdEncoding.DecodeString(EncodeCursor(3))
	require.NoError(t, err)
	assert.Equal(t, "arrayconnection:3", string(raw))
}

func TestPaginateNoArgs(t *testing.T) {
	conn, err := Paginate(items(3), PageArgs{})
	require.NoError(t, err)
	if diff := cmp.Diff([]any{0, 10, 20}, nodes(conn)); diff != "" {
		t.Errorf("nodes mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3, conn.TotalCount)
	assert.False(t, conn.PageInfo.HasNextPage)
	assert.False(t, conn.PageInfo.HasPreviousPage)
	require.NotNil(t, conn.PageInfo.StartCursor)
	assert.Equal(t, EncodeCursor(0), *conn.PageInfo.StartCursor)
	assert.Equal(t, EncodeCursor(2), *conn.PageInfo.EndCursor)
}

func TestPaginateEmpty(t *testing.T) {
	conn, err := Paginate(nil, PageArgs{First: ptr(5)})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
	assert.Nil(t, conn.PageInfo.StartCursor)
	assert.Nil(t, conn.PageInfo.EndCursor)
	assert.Equal(t, 0, conn.TotalCount)
}

func TestPaginateFirstZero(t *testing.T) {
	conn, err := Paginate(items(2), PageArgs{First: ptr(0)})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
	assert.True(t, conn.PageInfo.HasNextPage)
}

func TestPaginateChainedPages(t *testing.T) {
	const n, size = 11, 3
	all := items(n)

	var (
		collected []any
		after     *string
		pages     int
	)
	for {
		conn, err := Paginate(all, PageArgs{First: ptr(size), After: after})
		require.NoError(t, err)
		pages++
		collected = append(collected, nodes(conn)...)
		assert.Equal(t, after != nil, conn.PageInfo.HasPreviousPage)
		if !conn.PageInfo.HasNextPage {
			break
		}
		after = conn.PageInfo.EndCursor
	}
	assert.Equal(t, (n+size-1)/size, pages)
	if diff := cmp.Diff(all, collected); diff != "" {
		t.Errorf("concatenated pages mismatch (-want +got):\n%s", diff)
	}
}

func TestPaginateErrors(t *testing.T) {
	cases := map[string]PageArgs{
		"negative first":  {First: ptr(-1)},
		"not base64":      {After: ptr("%%%")},
		"wrong prefix":    {After: ptr(base64.StdEncoding.EncodeToString([]byte("cursor:1")))},
		"non-numeric":     {After: ptr(base64.StdEncoding.EncodeToString([]byte("arrayconnection:x")))},
		"out of range":    {After: ptr(EncodeCursor(5))},
		"negative offset": {After: ptr(base64.StdEncoding.EncodeToString([]byte("arrayconnection:-2")))},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Paginate(items(3), args)
			var perr *PaginationError
			require.ErrorAs(t, err, &perr)
		})
	}
}
