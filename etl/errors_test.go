package etl

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskError(t *testing.T) {
	err := NewTaskError("load failed", map[string]any{"table": "orders", "day": "2018-11-03"})
	assert.Equal(t, "load failed (day=2018-11-03, table=orders)", err.Error())
	assert.Equal(t, "bare", NewTaskError("bare", nil).Error())

	wrapped := fmt.Errorf("run: %w", err)
	assert.ErrorIs(t, wrapped, ErrTask)

	var te *TaskError
	require.True(t, errors.As(wrapped, &te))
	assert.Equal(t, "orders", te.Details["table"])
}
