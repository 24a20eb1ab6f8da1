// ABOUTME: Menu construction for dialog replies
// ABOUTME: Builds labeled option lists for sections, actions and subsections

package dialog

import "fmt"

// sectionOptions lists all sections as numbered choices with the given
// token prefix ("sec" for the admin dialog, "vsec" for public viewing).
func (e *Engine) sectionOptions(prefix string) []Option {
	ids := e.store.SectionIDs()
	opts := make([]Option, 0, len(ids)+1)
	for _, id := range ids {
		opts = append(opts, Option{
			Label: fmt.Sprintf("%d. %s", id, e.store.Title(id)),
			Token: fmt.Sprintf("%s:%d", prefix, id),
		})
	}
	return opts
}

func (e *Engine) manageSectionOptions() []Option {
	return append(e.sectionOptions("sec"), Option{Label: "Cancel", Token: "cancel"})
}

// actionOptions is the per-section action menu.
func actionOptions(secID int) []Option {
	return []Option{
		{Label: "Edit section text", Token: fmt.Sprintf("act:set_text:%d", secID)},
		{Label: "Add subsection", Token: fmt.Sprintf("act:add_sub:%d", secID)},
		{Label: "Edit subsection", Token: fmt.Sprintf("act:edit_sub:%d", secID)},
		{Label: "Delete subsection", Token: fmt.Sprintf("act:del_sub:%d", secID)},
		{Label: "Back to sections", Token: "back:sections"},
		{Label: "Cancel", Token: "cancel"},
	}
}

// confirmDeleteOptions is the two-choice prompt guarding a subsection delete.
func confirmDeleteOptions(secID int) []Option {
	return []Option{
		{Label: "Delete", Token: "confirm_del"},
		{Label: "Cancel", Token: fmt.Sprintf("act_menu:%d", secID)},
	}
}

// subOptions lists a section's subsections with pick tokens for the given
// mode ("pick_edit" or "pick_del"), plus a back option. An empty section
// gets a single inert line.
func (e *Engine) subOptions(secID int, mode string) []Option {
	subs := e.store.Subsections(secID)
	opts := make([]Option, 0, len(subs)+1)
	for _, sub := range subs {
		opts = append(opts, Option{
			Label: fmt.Sprintf("%d. %s", sub.ID, sub.Title),
			Token: fmt.Sprintf("%s:%d:%d", mode, secID, sub.ID),
		})
	}
	if len(opts) == 0 {
		opts = append(opts, Option{Label: "No subsections", Token: "noop"})
	}
	return append(opts, Option{Label: "Back", Token: fmt.Sprintf("act_menu:%d", secID)})
}

// sectionHeading renders the section title and body for display, with a
// dash placeholder for an empty body.
func (e *Engine) sectionHeading(secID int) string {
	text := e.store.Text(secID)
	if text == "" {
		text = "—"
	}
	return fmt.Sprintf("%s\n\n%s", e.store.Title(secID), text)
}
