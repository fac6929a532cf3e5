package addressinput

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrigger_TogglesOnlyOnExplicitAction(t *testing.T) {
	var statuses []Mode
	w := New(Config{OnStatusChange: func(m Mode) { statuses = append(statuses, m) }})
	require.Equal(t, Collapsed, w.Mode())

	assert.Equal(t, Editing, w.Trigger())
	w.Input("bnb1")
	w.Input("bnb1abc")
	assert.Equal(t, Editing, w.Mode())

	assert.Equal(t, Collapsed, w.Trigger())
	assert.Equal(t, []Mode{Editing, Collapsed}, statuses)
}

func TestInput_ForwardedVerbatimWhileEditing(t *testing.T) {
	var got []string
	w := New(Config{OnChange: func(text string) { got = append(got, text) }})

	assert.False(t, w.Input("ignored"))
	w.Trigger()
	assert.True(t, w.Input("  not an address!  "))
	assert.True(t, w.Input(""))

	assert.Equal(t, []string{"  not an address!  ", ""}, got)
}

func TestInput_NilHandler(t *testing.T) {
	w := New(Config{})
	w.Trigger()
	assert.True(t, w.Input("bnb1abc"))
}

func TestRender(t *testing.T) {
	w := New(Config{})

	var buf bytes.Buffer
	require.NoError(t, w.Render(&buf))
	assert.Equal(t, CollapsedLabel+"\n", buf.String())

	w.Trigger()
	w.Input("bnb1abc")
	buf.Reset()
	require.NoError(t, w.Render(&buf))
	assert.Equal(t, EditingLabel+"\n> bnb1abc\n", buf.String())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "collapsed", Collapsed.String())
	assert.Equal(t, "editing", Editing.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}
