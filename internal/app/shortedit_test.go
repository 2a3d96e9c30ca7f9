package app

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestAttachmentRefs(t *testing.T) {
	assert.Nil(t, attachmentRefs(nil))

	doc := &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc-1"}}
	assert.Equal(t, []string{"doc-1"}, attachmentRefs(doc))

	// The largest photo rendition wins.
	photo := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}}
	assert.Equal(t, []string{"large"}, attachmentRefs(photo))

	text := &tgbotapi.Message{Text: "  remember this  "}
	assert.Equal(t, []string{"text:remember this"}, attachmentRefs(text))

	// Media takes precedence over caption-like text.
	both := &tgbotapi.Message{
		Document: &tgbotapi.Document{FileID: "doc-2"},
		Text:     "ignored",
	}
	assert.Equal(t, []string{"doc-2"}, attachmentRefs(both))

	assert.Nil(t, attachmentRefs(&tgbotapi.Message{Text: "   "}))
}

func TestUsernamePattern(t *testing.T) {
	cases := map[string]string{
		"@alice":  "alice",
		"bob_99":  "bob_99",
		"@x":      "x",
		"@bad 1":  "",
		"two@ats": "",
		"":        "",
	}
	for input, want := range cases {
		m := usernameRe.FindStringSubmatch(input)
		if want == "" {
			assert.Nil(t, m, input)
			continue
		}
		if assert.NotNil(t, m, input) {
			assert.Equal(t, want, m[1], input)
		}
	}
}
