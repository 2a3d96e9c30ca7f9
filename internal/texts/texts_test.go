package texts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup(t *testing.T) {
	assert.NotEmpty(t, T("help"))
	assert.NotEqual(t, "help", T("help"))
}

func TestFormatting(t *testing.T) {
	got := T("welcome_private", "alice")
	assert.Contains(t, got, "alice")

	got = T("manage_users_title", 3)
	assert.Contains(t, got, "3")
}

func TestMissingKeyFallsBack(t *testing.T) {
	assert.Equal(t, "no_such_key_anywhere", T("no_such_key_anywhere"))
}

func TestButtonsPresent(t *testing.T) {
	for _, key := range []string{"btn_cancel", "btn_my_tasks", "btn_manage_tasks", "btn_manage_users", "btn_back"} {
		assert.NotEqual(t, key, T(key), key)
	}
}
