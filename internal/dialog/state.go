// ABOUTME: Dialog states and per-identity session context
// ABOUTME: Sessions are transient; a restart loses any dialog in progress

package dialog

// State is the explicit tag of a dialog position. The zero value is Idle.
type State int

const (
	StateIdle State = iota
	StateChoosingSection
	StateSectionAction
	StateEditSectionText
	StateChooseSubForEdit
	StateEditSubText
	StateAddSubTitle
	StateAddSubText
	StateChooseSubForDelete
	StateConfirmDeleteSub
)

var stateNames = map[State]string{
	StateIdle:               "idle",
	StateChoosingSection:    "choosing_section",
	StateSectionAction:      "section_action",
	StateEditSectionText:    "edit_section_text",
	StateChooseSubForEdit:   "choose_sub_for_edit",
	StateEditSubText:        "edit_sub_text",
	StateAddSubTitle:        "add_sub_title",
	StateAddSubText:         "add_sub_text",
	StateChooseSubForDelete: "choose_sub_for_delete",
	StateConfirmDeleteSub:   "confirm_delete_sub",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Session is the per-identity dialog context: the current state plus the
// selections accumulated along the way. PendingTitle holds the title of a
// subsection being added between the title and text prompts; nothing is
// committed to the store until both have arrived.
type Session struct {
	State        State
	SecID        int
	SubID        int
	PendingTitle string
}

// Option is one selectable next action: a display label and the selector
// token the transport sends back when it is chosen.
type Option struct {
	Label string
	Token string
}

// Reply is what the core hands the presentation adapter after an event:
// display text, the next selectable options, and whether the dialog ended.
type Reply struct {
	Text    string
	Options []Option
	End     bool
}

// Empty reports whether the reply carries nothing to present.
func (r Reply) Empty() bool {
	return r.Text == "" && len(r.Options) == 0
}
