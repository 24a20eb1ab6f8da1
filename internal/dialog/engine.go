// ABOUTME: Dialog engine sequencing the admin edit flows over the content store
// ABOUTME: Every transition re-checks the access policy before touching state

package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/kioskbot/kiosk/internal/access"
	"github.com/kioskbot/kiosk/internal/audit"
	"github.com/kioskbot/kiosk/internal/content"
)

// User-visible fixed messages. The off-hours denial text lives on the
// policy since it is configurable.
const (
	msgAdminOnly      = "Management is available to administrators only."
	msgChooseSection  = "Choose a section to manage:"
	msgChooseAction   = "Choose an action:"
	msgLeftManagement = "You left management mode."
	msgCancelled      = "Cancelled."
	msgSendNewText    = "Send the new text for the section. Use the cancel command to abort."
	msgSendSubTitle   = "Send a title for the new subsection:"
	msgSendSubText    = "Now send the text for this subsection:"
	msgSubNotFound    = "Subsection not found."
	msgSubDeleted     = "Subsection deleted."
	msgDeleteFailed   = "Could not delete (already absent)."
	msgTextUpdated    = "Section text updated."
	msgSubTextUpdated = "Subsection text updated."
	msgSaveFailed     = "Saving failed, the change was not stored. Try again."
	msgChooseSubEdit  = "Choose a subsection to edit:"
	msgChooseSubDel   = "Choose a subsection to delete:"
)

// Engine owns the per-identity dialog sessions and applies transitions
// against the shared content store under the access policy. Sessions from
// different admins are independent; the store itself is last-write-wins.
type Engine struct {
	store  *content.Store
	policy *access.Policy
	audit  *audit.Store // nil disables auditing
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[int64]*Session
}

// New creates an Engine. auditStore may be nil.
func New(store *content.Store, policy *access.Policy, auditStore *audit.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		policy:   policy,
		audit:    auditStore,
		logger:   logger.With("component", "dialog"),
		sessions: make(map[int64]*Session),
	}
}

// session returns the identity's session, or nil when none is active.
func (e *Engine) session(user int64) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions[user]
}

func (e *Engine) putSession(user int64, s *Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions[user] = s
}

func (e *Engine) dropSession(user int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.sessions, user)
}

// deny ends any active dialog for a policy failure. Distinct from a
// user-initiated cancel: the off-hours text is surfaced and no further
// mutation happens.
func (e *Engine) deny(user int64) Reply {
	e.dropSession(user)
	return Reply{Text: e.policy.OffHoursMessage(), End: true}
}

// Manage is the admin entry command: Idle -> ChoosingSection.
// Non-admins are rejected outright.
func (e *Engine) Manage(user int64) Reply {
	if !e.policy.IsAdmin(user) {
		return Reply{Text: msgAdminOnly, End: true}
	}
	if !e.policy.MayAct(user) {
		return e.deny(user)
	}
	e.putSession(user, &Session{State: StateChoosingSection})
	e.logger.Info("management dialog started", "user", user)
	return Reply{Text: msgChooseSection, Options: e.manageSectionOptions()}
}

// Cancel unconditionally ends the dialog without committing anything
// pending. Valid from every state.
func (e *Engine) Cancel(user int64) Reply {
	e.dropSession(user)
	return Reply{Text: msgCancelled, End: true}
}

// Select applies a structured selector token to the user's dialog.
// Unrecognized tokens re-render the current state without transition.
func (e *Engine) Select(ctx context.Context, user int64, token string) Reply {
	if !e.policy.MayAct(user) {
		return e.deny(user)
	}

	sel := parseSelector(token)
	switch sel.kind {
	case selViewSection, selViewSub, selViewBack:
		return e.view(sel)
	}

	sess := e.session(user)
	if sess == nil {
		// Dialog tokens outside a dialog are ignored.
		return Reply{}
	}

	switch sel.kind {
	case selCancel:
		e.dropSession(user)
		return Reply{Text: msgLeftManagement, End: true}

	case selNoop:
		return e.renderState(sess)

	case selBackSections:
		sess.State = StateChoosingSection
		sess.SecID, sess.SubID = 0, 0
		return Reply{Text: msgChooseSection, Options: e.manageSectionOptions()}

	case selSection:
		sess.State = StateSectionAction
		sess.SecID = sel.sec
		return Reply{Text: e.sectionHeading(sel.sec), Options: actionOptions(sel.sec)}

	case selActMenu:
		sess.State = StateSectionAction
		sess.SecID = sel.sec
		return Reply{Text: msgChooseAction, Options: actionOptions(sel.sec)}

	case selActSetText:
		sess.State = StateEditSectionText
		sess.SecID = sel.sec
		return Reply{Text: msgSendNewText}

	case selActAddSub:
		sess.State = StateAddSubTitle
		sess.SecID = sel.sec
		sess.PendingTitle = ""
		return Reply{Text: msgSendSubTitle}

	case selActEditSub:
		sess.State = StateChooseSubForEdit
		sess.SecID = sel.sec
		return Reply{Text: msgChooseSubEdit, Options: e.subOptions(sel.sec, "pick_edit")}

	case selActDelSub:
		sess.State = StateChooseSubForDelete
		sess.SecID = sel.sec
		return Reply{Text: msgChooseSubDel, Options: e.subOptions(sel.sec, "pick_del")}

	case selPickEdit:
		sub, err := e.store.Subsection(sel.sec, sel.sub)
		if err != nil {
			// Deleted by another admin after the list was shown.
			sess.State = StateSectionAction
			sess.SecID = sel.sec
			return Reply{Text: msgSubNotFound, Options: actionOptions(sel.sec)}
		}
		sess.State = StateEditSubText
		sess.SecID, sess.SubID = sel.sec, sel.sub
		return Reply{Text: fmt.Sprintf("Editing %q. Send the new text, or use the cancel command.", sub.Title)}

	case selPickDel:
		sub, err := e.store.Subsection(sel.sec, sel.sub)
		if err != nil {
			sess.State = StateSectionAction
			sess.SecID = sel.sec
			return Reply{Text: msgSubNotFound, Options: actionOptions(sel.sec)}
		}
		sess.State = StateConfirmDeleteSub
		sess.SecID, sess.SubID = sel.sec, sel.sub
		return Reply{
			Text:    fmt.Sprintf("Delete subsection %q?", sub.Title),
			Options: confirmDeleteOptions(sel.sec),
		}

	case selConfirmDel:
		return e.confirmDelete(ctx, user, sess)
	}

	return e.renderState(sess)
}

// confirmDelete performs the destructive call after explicit confirmation.
// A not-found race is reported, never fatal.
func (e *Engine) confirmDelete(ctx context.Context, user int64, sess *Session) Reply {
	secID, subID := sess.SecID, sess.SubID
	sess.State = StateSectionAction

	sub, err := e.store.Subsection(secID, subID)
	if err != nil {
		return Reply{Text: msgDeleteFailed, Options: actionOptions(secID)}
	}
	if err := e.store.DeleteSubsection(secID, subID); err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return Reply{Text: msgDeleteFailed, Options: actionOptions(secID)}
		}
		e.logger.Error("delete subsection failed", "section", secID, "subsection", subID, "error", err)
		return Reply{Text: msgSaveFailed, Options: actionOptions(secID)}
	}
	e.recordAudit(ctx, user, audit.ActionDeleteSub, secID, subID, sub.Title)
	return Reply{Text: msgSubDeleted, Options: actionOptions(secID)}
}

// Text applies a free-form text input to the user's dialog. Only the
// text-prompt states consume input; elsewhere it is ignored.
func (e *Engine) Text(ctx context.Context, user int64, text string) Reply {
	if !e.policy.IsAdmin(user) {
		return Reply{}
	}
	if !e.policy.MayAct(user) {
		return e.deny(user)
	}

	sess := e.session(user)
	if sess == nil {
		return Reply{}
	}

	switch sess.State {
	case StateEditSectionText:
		if err := e.store.SetText(sess.SecID, text); err != nil {
			e.logger.Error("set section text failed", "section", sess.SecID, "error", err)
			return Reply{Text: msgSaveFailed, Options: actionOptions(sess.SecID)}
		}
		e.recordAudit(ctx, user, audit.ActionSetText, sess.SecID, 0, "")
		sess.State = StateSectionAction
		return Reply{Text: msgTextUpdated, Options: actionOptions(sess.SecID)}

	case StateAddSubTitle:
		// Empty titles are accepted, matching the store's lack of
		// content validation.
		sess.PendingTitle = strings.TrimSpace(text)
		sess.State = StateAddSubText
		return Reply{Text: msgSendSubText}

	case StateAddSubText:
		id, err := e.store.AddSubsection(sess.SecID, sess.PendingTitle, text)
		if err != nil {
			e.logger.Error("add subsection failed", "section", sess.SecID, "error", err)
			return Reply{Text: msgSaveFailed, Options: actionOptions(sess.SecID)}
		}
		e.recordAudit(ctx, user, audit.ActionAddSubsection, sess.SecID, id, sess.PendingTitle)
		reply := Reply{
			Text:    fmt.Sprintf("Subsection added: %d. %s", id, sess.PendingTitle),
			Options: actionOptions(sess.SecID),
		}
		sess.PendingTitle = ""
		sess.State = StateSectionAction
		return reply

	case StateEditSubText:
		if err := e.store.UpdateSubsectionText(sess.SecID, sess.SubID, text); err != nil {
			sess.State = StateSectionAction
			if errors.Is(err, content.ErrNotFound) {
				return Reply{Text: msgSubNotFound, Options: actionOptions(sess.SecID)}
			}
			e.logger.Error("update subsection failed", "section", sess.SecID, "subsection", sess.SubID, "error", err)
			return Reply{Text: msgSaveFailed, Options: actionOptions(sess.SecID)}
		}
		e.recordAudit(ctx, user, audit.ActionEditSub, sess.SecID, sess.SubID, "")
		sess.State = StateSectionAction
		return Reply{Text: msgSubTextUpdated, Options: actionOptions(sess.SecID)}
	}

	return Reply{}
}

// renderState reproduces the prompt for the session's current state, used
// when an unrecognized token arrives.
func (e *Engine) renderState(sess *Session) Reply {
	switch sess.State {
	case StateChoosingSection:
		return Reply{Text: msgChooseSection, Options: e.manageSectionOptions()}
	case StateSectionAction:
		return Reply{Text: msgChooseAction, Options: actionOptions(sess.SecID)}
	case StateEditSectionText:
		return Reply{Text: msgSendNewText}
	case StateChooseSubForEdit:
		return Reply{Text: msgChooseSubEdit, Options: e.subOptions(sess.SecID, "pick_edit")}
	case StateEditSubText:
		return Reply{Text: "Send the new text for the subsection. Use the cancel command to abort."}
	case StateAddSubTitle:
		return Reply{Text: msgSendSubTitle}
	case StateAddSubText:
		return Reply{Text: msgSendSubText}
	case StateChooseSubForDelete:
		return Reply{Text: msgChooseSubDel, Options: e.subOptions(sess.SecID, "pick_del")}
	case StateConfirmDeleteSub:
		sub, err := e.store.Subsection(sess.SecID, sess.SubID)
		if err != nil {
			// Deleted by another admin while the confirmation was pending.
			sess.State = StateSectionAction
			return Reply{Text: msgSubNotFound, Options: actionOptions(sess.SecID)}
		}
		return Reply{
			Text:    fmt.Sprintf("Delete subsection %q?", sub.Title),
			Options: confirmDeleteOptions(sess.SecID),
		}
	}
	return Reply{}
}

// recordAudit appends an audit entry for a successful mutation.
// Audit failures are logged, they never fail the edit itself.
func (e *Engine) recordAudit(ctx context.Context, actor int64, action audit.Action, sec, sub int, detail string) {
	if e.audit == nil {
		return
	}
	entry := &audit.Entry{Actor: actor, Action: action, Section: sec, Subsection: sub, Detail: detail}
	if err := e.audit.Append(ctx, entry); err != nil {
		e.logger.Warn("audit append failed", "action", action, "error", err)
	}
}

// History lists recent audit entries for an administrator.
func (e *Engine) History(ctx context.Context, user int64, limit int) Reply {
	if !e.policy.IsAdmin(user) {
		return Reply{Text: msgAdminOnly, End: true}
	}
	if !e.policy.MayAct(user) {
		return e.deny(user)
	}
	if e.audit == nil {
		return Reply{Text: "Audit history is not enabled.", End: true}
	}

	entries, err := e.audit.Recent(ctx, limit)
	if err != nil {
		e.logger.Error("listing audit history failed", "error", err)
		return Reply{Text: "Could not load history.", End: true}
	}
	if len(entries) == 0 {
		return Reply{Text: "No edits recorded yet.", End: true}
	}

	var b strings.Builder
	b.WriteString("Recent edits:\n")
	for _, entry := range entries {
		b.WriteString(fmt.Sprintf("%s  %s  section %d", entry.Timestamp.Format("2006-01-02 15:04"), entry.Action, entry.Section))
		if entry.Subsection > 0 {
			b.WriteString(fmt.Sprintf("/%d", entry.Subsection))
		}
		if entry.Detail != "" {
			b.WriteString("  " + entry.Detail)
		}
		b.WriteString("\n")
	}
	return Reply{Text: strings.TrimRight(b.String(), "\n"), End: true}
}
