package linker

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathoo/moduel/types"
)

type sprite struct{ name string }

func TestRoundTrip(t *testing.T) {
	l := New[*sprite]("client")
	h := &sprite{name: "elf"}

	require.True(t, l.Link(7, h))

	got, ok := l.Handle(7)
	require.True(t, ok)
	assert.Same(t, h, got)

	id, ok := l.ID(h)
	require.True(t, ok)
	assert.Equal(t, types.EntityID(7), id)

	back, ok := l.Handle(id)
	require.True(t, ok)
	assert.Same(t, h, back)
}

func TestLink_FirstWriterWins(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithLogger[string]("host", zerolog.New(&buf))

	require.True(t, l.Link(1, "first"))
	assert.False(t, l.Link(1, "second"), "duplicate id")
	assert.False(t, l.Link(2, "first"), "duplicate handle")

	h, _ := l.Handle(1)
	assert.Equal(t, "first", h)
	_, ok := l.Handle(2)
	assert.False(t, ok)
	_, ok = l.ID("second")
	assert.False(t, ok)
	assert.Equal(t, 1, l.Len())

	assert.Contains(t, buf.String(), "already linked")
	assert.Contains(t, buf.String(), `"linker":"host"`)
}

func TestUnlink(t *testing.T) {
	l := New[string]("test")
	l.Link(1, "a")
	l.Link(2, "b")

	assert.True(t, l.UnlinkID(1))
	_, ok := l.ID("a")
	assert.False(t, ok, "handle side removed with id")

	assert.True(t, l.UnlinkHandle("b"))
	_, ok = l.Handle(2)
	assert.False(t, ok, "id side removed with handle")

	assert.False(t, l.UnlinkID(1))
	assert.False(t, l.UnlinkHandle("b"))
	assert.Equal(t, 0, l.Len())

	assert.True(t, l.Link(1, "b"), "freed id and handle can be relinked")
}

func TestMissReturnsZero(t *testing.T) {
	l := New[*sprite]("test")
	h, ok := l.Handle(99)
	assert.False(t, ok)
	assert.Nil(t, h)
}

func TestEach(t *testing.T) {
	l := New[string]("test")
	l.Link(1, "a")
	l.Link(2, "b")

	seen := map[types.EntityID]string{}
	l.Each(func(id types.EntityID, h string) { seen[id] = h })
	assert.Equal(t, map[types.EntityID]string{1: "a", 2: "b"}, seen)
}

func TestConcurrentLinks(t *testing.T) {
	l := NewWithLogger[string]("test", zerolog.Nop())
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := types.EntityID(i + 1)
				l.Link(id, fmt.Sprintf("h%d", i))
				l.Handle(id)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 100, l.Len())
	for i := 0; i < 100; i++ {
		id, ok := l.ID(fmt.Sprintf("h%d", i))
		require.True(t, ok)
		assert.Equal(t, types.EntityID(i+1), id)
	}
}
