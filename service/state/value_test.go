package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_SetNotifiesOnChangeOnly(t *testing.T) {
	v := NewValue(false)

	calls := 0
	v.Subscribe(func() { calls++ })

	assert.False(t, v.Set(false))
	assert.Equal(t, 0, calls)

	assert.True(t, v.Set(true))
	assert.True(t, v.Get())
	assert.Equal(t, 1, calls)

	assert.False(t, v.Set(true))
	assert.Equal(t, 1, calls)
}

func TestValue_Update(t *testing.T) {
	v := NewValue(1)

	calls := 0
	v.Subscribe(func() { calls++ })

	assert.True(t, v.Update(func(n int) int { return n + 1 }))
	assert.Equal(t, 2, v.Get())
	assert.False(t, v.Update(func(n int) int { return n }))
	assert.Equal(t, 1, calls)
}

func TestSubscribers_OrderAndRemoval(t *testing.T) {
	var s Subscribers
	var order []string

	s.Add(func() { order = append(order, "a") })
	removeB := s.Add(func() { order = append(order, "b") })
	s.Add(func() { order = append(order, "c") })
	assert.Equal(t, 3, s.Len())

	s.Notify()
	assert.Equal(t, []string{"a", "b", "c"}, order)

	removeB()
	removeB()
	assert.Equal(t, 2, s.Len())

	order = nil
	s.Notify()
	assert.Equal(t, []string{"a", "c"}, order)
}

func TestSubscribers_CallbackMayUnsubscribe(t *testing.T) {
	v := NewValue("")

	calls := 0
	var unsubscribe func()
	unsubscribe = v.Subscribe(func() {
		calls++
		unsubscribe()
	})

	v.Set("addr1")
	v.Set("addr2")
	assert.Equal(t, 1, calls)
}
