package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/moduel/types"
)

func TestFIFO(t *testing.T) {
	q := New()
	for i := 0; i < 5; i++ {
		require.True(t, q.Push(types.Command{Name: types.CmdCharge, Args: []int{i}}))
	}
	assert.Equal(t, 5, q.Len())

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		cmd, err := q.Pop(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, cmd.Args[0])
	}
	assert.Equal(t, 0, q.Len())
}

func TestPop_BlocksUntilPush(t *testing.T) {
	q := New()
	got := make(chan types.Command, 1)
	go func() {
		cmd, err := q.Pop(context.Background())
		if err == nil {
			got <- cmd
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.Push(types.Command{Name: types.CmdRevive})

	select {
	case cmd := <-got:
		assert.Equal(t, types.CmdRevive, cmd.Name)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up")
	}
}

func TestPop_ContextCancel(t *testing.T) {
	q := New()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := q.Pop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClose_DrainsThenErrors(t *testing.T) {
	q := New()
	q.Push(types.Command{Name: types.CmdCharge})
	q.Close()

	assert.False(t, q.Push(types.Command{Name: types.CmdCharge}), "push after close")

	cmd, err := q.Pop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, types.CmdCharge, cmd.Name)

	_, err = q.Pop(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConcurrentProducers_KeepPerProducerOrder(t *testing.T) {
	q := New()
	const producers, each = 4, 100

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < each; i++ {
				q.Push(types.Command{Actor: types.EntityID(p + 1), Args: []int{i}})
			}
		}(p)
	}
	wg.Wait()
	q.Close()

	last := map[types.EntityID]int{}
	total := 0
	for {
		cmd, err := q.Pop(context.Background())
		if err != nil {
			break
		}
		prev, seen := last[cmd.Actor]
		if seen {
			require.Greater(t, cmd.Args[0], prev)
		}
		last[cmd.Actor] = cmd.Args[0]
		total++
	}
	assert.Equal(t, producers*each, total)
}
