package pipeline

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExecutesStepsInOrder(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "one", Run: func(ctx context.Context) error { order = append(order, "one"); return nil }},
		{Name: "two", Run: func(ctx context.Context) error { order = append(order, "two"); return nil }},
		{Name: "three", Run: func(ctx context.Context) error { order = append(order, "three"); return nil }},
	}

	var buf bytes.Buffer
	require.NoError(t, Run(context.Background(), &buf, steps))
	assert.Equal(t, []string{"one", "two", "three"}, order)
	assert.Contains(t, buf.String(), "Step [1/3]: one")
	assert.Contains(t, buf.String(), "Step [3/3]: three")
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var ran []string
	steps := []Step{
		{Name: "ok", Run: func(ctx context.Context) error { ran = append(ran, "ok"); return nil }},
		{Name: "bad", Run: func(ctx context.Context) error { ran = append(ran, "bad"); return boom }},
		{Name: "never", Run: func(ctx context.Context) error { ran = append(ran, "never"); return nil }},
	}

	var buf bytes.Buffer
	err := Run(context.Background(), &buf, steps)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "step bad")
	assert.Equal(t, []string{"ok", "bad"}, ran)
}

func TestCleanStackRunsInReverseOrder(t *testing.T) {
	var order []string
	s := NewCleanStack()
	s.Push(func() { order = append(order, "first") })
	s.Push(func() { order = append(order, "second") })
	s.Push(func() { order = append(order, "third") })

	s.Cleanup()
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestCleanStackIsIdempotent(t *testing.T) {
	count := 0
	s := NewCleanStack()
	s.Push(func() { count++ })

	s.Cleanup()
	s.Cleanup()
	assert.Equal(t, 1, count)
}
