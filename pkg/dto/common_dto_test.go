package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageQueryNormalize(t *testing.T) {
	q := PageQuery{}.Normalize(20, 50)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 20, q.Limit)
	assert.Equal(t, 0, q.Offset())

	q = PageQuery{Page: 3, Limit: 500}.Normalize(20, 50)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 100, q.Offset())
}

func TestNewPaginationMeta(t *testing.T) {
	meta := NewPaginationMeta(PageQuery{Page: 1, Limit: 10}, 21)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, int64(21), meta.TotalItems)

	meta = NewPaginationMeta(PageQuery{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, meta.TotalPages)
}
