package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublisherNotNotified(t *testing.T) {
	hub := NewHub()

	var aGot, bGot []Event
	emitA, _ := hub.Attach(func(ev Event) { aGot = append(aGot, ev) })
	_, _ = hub.Attach(func(ev Event) { bGot = append(bGot, ev) })

	emitA(Event{Key: "base-receipt:state", NewValue: "v1"})

	assert.Empty(t, aGot, "writer's own tab must not receive its event")
	assert.Len(t, bGot, 1)
	assert.Equal(t, "v1", bGot[0].NewValue)
}

func TestHub_FansOutToAllOtherTabs(t *testing.T) {
	hub := NewHub()

	counts := make([]int, 3)
	emits := make([]func(Event), 3)
	for i := 0; i < 3; i++ {
		i := i
		emits[i], _ = hub.Attach(func(Event) { counts[i]++ })
	}

	emits[0](Event{Key: "k"})
	emits[1](Event{Key: "k"})

	assert.Equal(t, []int{1, 1, 2}, counts)
}

func TestHub_Detach(t *testing.T) {
	hub := NewHub()

	var got int
	emitA, _ := hub.Attach(func(Event) {})
	_, detachB := hub.Attach(func(Event) { got++ })

	emitA(Event{Key: "k"})
	detachB()
	emitA(Event{Key: "k"})

	assert.Equal(t, 1, got)
}
