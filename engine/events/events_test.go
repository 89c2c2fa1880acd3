package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nathoo/moduel/types"
)

func msg(target types.EntityID, name string) types.Message {
	return types.Message{Target: target, Name: name}
}

func TestPublish_OrderPreserved(t *testing.T) {
	b := NewBus()
	var got []string
	b.Subscribe(nil, func(m types.Message) { got = append(got, "a:"+m.Name) })
	b.Subscribe(nil, func(m types.Message) { got = append(got, "b:"+m.Name) })

	b.Publish(msg(0, "LinkSlot"), msg(0, "SpawnCreature"))

	assert.Equal(t, []string{
		"a:LinkSlot", "b:LinkSlot",
		"a:SpawnCreature", "b:SpawnCreature",
	}, got)
}

func TestForPlayer_Filters(t *testing.T) {
	b := NewBus()
	var p1, p2 []string
	b.Subscribe(ForPlayer(1), func(m types.Message) { p1 = append(p1, m.Name) })
	b.Subscribe(ForPlayer(2), func(m types.Message) { p2 = append(p2, m.Name) })

	b.Publish(
		msg(types.Broadcast, "KillCreature"),
		msg(1, "AddHandCard"),
		msg(2, "RemHandCard"),
	)

	assert.Equal(t, []string{"KillCreature", "AddHandCard"}, p1)
	assert.Equal(t, []string{"KillCreature", "RemHandCard"}, p2)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBus()
	count := 0
	stop := b.Subscribe(nil, func(types.Message) { count++ })
	keep := 0
	b.Subscribe(nil, func(types.Message) { keep++ })

	b.Publish(msg(0, "x"))
	stop()
	stop() // second call is harmless
	b.Publish(msg(0, "y"))

	assert.Equal(t, 1, count)
	assert.Equal(t, 2, keep)
	assert.Equal(t, 1, b.Len())
}

func TestDelivers(t *testing.T) {
	assert.True(t, Delivers(msg(types.Broadcast, "x"), 5))
	assert.True(t, Delivers(msg(5, "x"), 5))
	assert.False(t, Delivers(msg(6, "x"), 5))
}
