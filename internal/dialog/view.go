// ABOUTME: Public read-only browsing of sections and subsections
// ABOUTME: Stateless token handling; gated by the same access policy

package dialog

import (
	"fmt"
)

const msgMenu = "Bot menu: choose a section."

// Menu renders the public section list. Admins get a hint about the
// management command.
func (e *Engine) Menu(user int64) Reply {
	if !e.policy.MayAct(user) {
		return Reply{Text: e.policy.OffHoursMessage(), End: true}
	}
	text := msgMenu
	if e.policy.IsAdmin(user) {
		text += "\n\nAdmin: use the manage command to edit content."
	}
	return Reply{Text: text, Options: e.sectionOptions("vsec")}
}

// view handles the public selectors (vsec, vsub, vback). The caller has
// already gated the policy.
func (e *Engine) view(sel selector) Reply {
	switch sel.kind {
	case selViewBack:
		return Reply{Text: msgMenu, Options: e.sectionOptions("vsec")}

	case selViewSection:
		opts := make([]Option, 0)
		for _, sub := range e.store.Subsections(sel.sec) {
			opts = append(opts, Option{
				Label: sub.Title,
				Token: fmt.Sprintf("vsub:%d:%d", sel.sec, sub.ID),
			})
		}
		opts = append(opts, Option{Label: "Back to menu", Token: "vback"})
		return Reply{Text: e.sectionHeading(sel.sec), Options: opts}

	case selViewSub:
		sub, err := e.store.Subsection(sel.sec, sel.sub)
		if err != nil {
			return Reply{Text: msgSubNotFound, Options: []Option{{Label: "Back to menu", Token: "vback"}}}
		}
		text := sub.Text
		if text == "" {
			text = "—"
		}
		return Reply{
			Text: fmt.Sprintf("%s\n\n%s", sub.Title, text),
			Options: []Option{
				{Label: "Back to section", Token: fmt.Sprintf("vsec:%d", sel.sec)},
			},
		}
	}
	return Reply{}
}
