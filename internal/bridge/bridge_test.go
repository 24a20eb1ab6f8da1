// ABOUTME: Tests for the bridge's pure routing pieces
// ABOUTME: Command extraction, option resolution, identity hashing, rendering

package bridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kioskbot/kiosk/internal/config"
	"github.com/kioskbot/kiosk/internal/dialog"
)

func testBridge(prefix string) *Bridge {
	return &Bridge{
		cfg:     &config.MatrixConfig{CommandPrefix: prefix},
		pending: make(map[int64][]string),
	}
}

func TestIdentity_Stable(t *testing.T) {
	a := Identity("@alice:example.org")
	b := Identity("@alice:example.org")
	c := Identity("@bob:example.org")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestAdminIdentities(t *testing.T) {
	ids := AdminIdentities([]string{"@alice:example.org", "@bob:example.org"})
	require.Len(t, ids, 2)
	assert.Equal(t, Identity("@alice:example.org"), ids[0])
}

func TestCommand_WithPrefix(t *testing.T) {
	b := testBridge("!")

	tests := []struct {
		body string
		cmd  string
		ok   bool
	}{
		{"!menu", "menu", true},
		{"!MANAGE", "manage", true},
		{"!cancel", "cancel", true},
		{"menu", "", false},
		{"!two words", "", false},
		{"plain text", "", false},
	}
	for _, tt := range tests {
		cmd, ok := b.command(tt.body)
		assert.Equal(t, tt.ok, ok, tt.body)
		assert.Equal(t, tt.cmd, cmd, tt.body)
	}
}

func TestCommand_NoPrefix(t *testing.T) {
	b := testBridge("")

	cmd, ok := b.command("menu")
	assert.True(t, ok)
	assert.Equal(t, "menu", cmd)

	_, ok = b.command("free text message")
	assert.False(t, ok)
}

func TestResolveOption_ByNumber(t *testing.T) {
	b := testBridge("!")
	user := int64(7)
	b.remember(user, dialog.Reply{
		Text: "pick",
		Options: []dialog.Option{
			{Label: "First", Token: "sec:1"},
			{Label: "Second", Token: "sec:2"},
		},
	})

	token, ok := b.resolveOption(user, "2")
	require.True(t, ok)
	assert.Equal(t, "sec:2", token)

	_, ok = b.resolveOption(user, "3")
	assert.False(t, ok, "out of range numbers are not picks")

	_, ok = b.resolveOption(user, "0")
	assert.False(t, ok)
}

func TestResolveOption_ByToken(t *testing.T) {
	b := testBridge("!")
	user := int64(7)
	b.remember(user, dialog.Reply{
		Text:    "pick",
		Options: []dialog.Option{{Label: "Cancel", Token: "cancel"}},
	})

	token, ok := b.resolveOption(user, "cancel")
	require.True(t, ok)
	assert.Equal(t, "cancel", token)

	_, ok = b.resolveOption(user, "something else")
	assert.False(t, ok)
}

func TestRemember_ClearsOnEnd(t *testing.T) {
	b := testBridge("!")
	user := int64(7)
	b.remember(user, dialog.Reply{
		Text:    "pick",
		Options: []dialog.Option{{Label: "A", Token: "sec:1"}},
	})
	b.remember(user, dialog.Reply{Text: "done", End: true})

	_, ok := b.resolveOption(user, "1")
	assert.False(t, ok)
}

func TestRenderReply_PlainAndFormatted(t *testing.T) {
	reply := dialog.Reply{
		Text: "**Section 1**\n\nbody",
		Options: []dialog.Option{
			{Label: "Edit <text>", Token: "act:set_text:1"},
			{Label: "Back", Token: "back:sections"},
		},
	}
	content := renderReply(reply)

	assert.Contains(t, content.Body, "**Section 1**")
	assert.Contains(t, content.Body, "1. Edit <text>")
	assert.Contains(t, content.Body, "2. Back")

	require.NotEmpty(t, content.FormattedBody)
	assert.Contains(t, content.FormattedBody, "<strong>Section 1</strong>")
	assert.Contains(t, content.FormattedBody, "<li>Edit &lt;text&gt;</li>")
}

func TestRenderReply_NoOptions(t *testing.T) {
	content := renderReply(dialog.Reply{Text: "done"})
	assert.Equal(t, "done", content.Body)
	assert.NotContains(t, content.FormattedBody, "<ol>")
}
