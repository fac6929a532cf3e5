package view

import (
	"testing"

	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/state"
	"github.com/stretchr/testify/assert"
)

func TestMount_RendersOnceThenOnEveryChange(t *testing.T) {
	visible := state.NewValue(false)
	filter := state.NewValue("all")

	var seen []string
	b := Mount(scope.New(nil), func() {
		if visible.Get() {
			seen = append(seen, "open:"+filter.Get())
		} else {
			seen = append(seen, "closed:"+filter.Get())
		}
	}, visible, filter)
	defer b.Unmount()

	visible.Set(true)
	filter.Set("swap")
	filter.Set("swap") // no change, no render

	assert.Equal(t, []string{"closed:all", "open:all", "open:swap"}, seen)
	assert.Equal(t, 3, b.Renders())
}

func TestUnmount_StopsRendering(t *testing.T) {
	v := state.NewValue(0)

	renders := 0
	b := Mount(scope.New(nil), func() { renders++ }, v)

	b.Unmount()
	v.Set(1)
	b.Rerender()

	assert.Equal(t, 1, renders)
}

func TestEffect_RunsOnMountAndOnChangeOnly(t *testing.T) {
	id := state.NewValue("")
	renders := 0
	b := Mount(scope.New(nil), func() { renders++ }, id)
	defer b.Unmount()

	var dispatched []string
	b.Effect(id, func() { dispatched = append(dispatched, id.Get()) })

	id.Set("addr1")
	b.Rerender()
	b.Rerender()
	id.Set("addr2")

	assert.Equal(t, []string{"", "addr1", "addr2"}, dispatched)
	assert.Equal(t, 5, renders)
}
