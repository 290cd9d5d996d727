package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_LimitClamps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 50, PageRequest{}.Limit())
	assert.Equal(t, 50, PageRequest{MaxResults: -5}.Limit())
	assert.Equal(t, 10, PageRequest{MaxResults: 10}.Limit())
	assert.Equal(t, 500, PageRequest{MaxResults: 9999}.Limit())

	assert.Equal(t, 0, PageRequest{Skip: -1}.Offset())
	assert.Equal(t, 20, PageRequest{Skip: 20}.Offset())
}

func TestQueryStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, QueryStatusPending.Terminal())
	assert.False(t, QueryStatusExecuting.Terminal())
	assert.True(t, QueryStatusCompleted.Terminal())
	assert.True(t, QueryStatusFailed.Terminal())
}

func TestValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidOutputFormat(FormatJSON))
	assert.True(t, ValidOutputFormat(FormatCSV))
	assert.True(t, ValidOutputFormat(FormatTable))
	assert.False(t, ValidOutputFormat("parquet"))
	assert.False(t, ValidOutputFormat(""))
}

func TestNewID_IsTimeOrdered(t *testing.T) {
	t.Parallel()

	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b)
}
