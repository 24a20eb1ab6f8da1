// ABOUTME: Tests for selector token parsing
// ABOUTME: Verifies the grammar and rejection of malformed tokens

package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSelector(t *testing.T) {
	tests := []struct {
		token string
		want  selector
	}{
		{"sec:3", selector{kind: selSection, sec: 3}},
		{"vsec:12", selector{kind: selViewSection, sec: 12}},
		{"act:set_text:2", selector{kind: selActSetText, sec: 2}},
		{"act:add_sub:7", selector{kind: selActAddSub, sec: 7}},
		{"act:edit_sub:1", selector{kind: selActEditSub, sec: 1}},
		{"act:del_sub:4", selector{kind: selActDelSub, sec: 4}},
		{"act_menu:5", selector{kind: selActMenu, sec: 5}},
		{"pick_edit:2:9", selector{kind: selPickEdit, sec: 2, sub: 9}},
		{"pick_del:3:1", selector{kind: selPickDel, sec: 3, sub: 1}},
		{"vsub:6:2", selector{kind: selViewSub, sec: 6, sub: 2}},
		{"confirm_del", selector{kind: selConfirmDel}},
		{"cancel", selector{kind: selCancel}},
		{"back:sections", selector{kind: selBackSections}},
		{"noop", selector{kind: selNoop}},
		{"vback", selector{kind: selViewBack}},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSelector(tt.token))
		})
	}
}

func TestParseSelector_Malformed(t *testing.T) {
	tokens := []string{
		"",
		"sec:",
		"sec:abc",
		"sec:-1",
		"sec:0",
		"act:unknown:1",
		"pick_edit:1",
		"pick_edit:1:x",
		"vsub:0:1",
		"garbage",
		"sec:1:2:3",
	}
	for _, token := range tokens {
		t.Run("token_"+token, func(t *testing.T) {
			assert.Equal(t, selUnknown, parseSelector(token).kind)
		})
	}
}
