package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	cb, err := ParseCallback("view_task|42")
	require.NoError(t, err)
	assert.Equal(t, "view_task", cb.Action)
	assert.Equal(t, []string{"42"}, cb.Args)

	cb, err = ParseCallback("back")
	require.NoError(t, err)
	assert.Equal(t, "back", cb.Action)
	assert.Empty(t, cb.Args)

	_, err = ParseCallback("")
	assert.ErrorIs(t, err, errMalformedCallback)
}

func TestCallbackRoundTrip(t *testing.T) {
	data := BuildCallback("short_edit", "name", "abc-key", "7")
	cb, err := ParseCallback(data)
	require.NoError(t, err)
	assert.Equal(t, "short_edit", cb.Action)

	typ, err := cb.StrArg(0)
	require.NoError(t, err)
	assert.Equal(t, "name", typ)

	taskID, err := cb.IntArg(2)
	require.NoError(t, err)
	assert.Equal(t, 7, taskID)
}

func TestCallbackArgErrors(t *testing.T) {
	cb, err := ParseCallback("view_task|oops")
	require.NoError(t, err)

	_, err = cb.IntArg(0)
	assert.ErrorIs(t, err, errMalformedCallback)

	_, err = cb.IntArg(5)
	assert.ErrorIs(t, err, errMalformedCallback)

	_, err = cb.StrArg(5)
	assert.ErrorIs(t, err, errMalformedCallback)
}

func TestBuildCallbackWithoutArgs(t *testing.T) {
	assert.Equal(t, "back", BuildCallback("back"))
	assert.Equal(t, "view_group|OTHER", BuildCallback("view_group", "OTHER"))
}
