// ABOUTME: Selector token grammar for menu choices
// ABOUTME: Tokens are parsed once here; ids are ints past this boundary

package dialog

import (
	"strconv"
	"strings"
)

// selectorKind enumerates the recognized token shapes.
type selectorKind int

const (
	selUnknown      selectorKind = iota
	selSection                   // sec:<id>
	selActSetText                // act:set_text:<id>
	selActAddSub                 // act:add_sub:<id>
	selActEditSub                // act:edit_sub:<id>
	selActDelSub                 // act:del_sub:<id>
	selActMenu                   // act_menu:<id>
	selPickEdit                  // pick_edit:<sec>:<sub>
	selPickDel                   // pick_del:<sec>:<sub>
	selConfirmDel                // confirm_del
	selCancel                    // cancel
	selBackSections              // back:sections
	selNoop                      // noop
	selViewSection               // vsec:<id>
	selViewSub                   // vsub:<sec>:<sub>
	selViewBack                  // vback
)

type selector struct {
	kind selectorKind
	sec  int
	sub  int
}

// parseSelector decodes a token. Unknown or malformed tokens come back as
// selUnknown; callers treat those as no-ops rather than errors.
func parseSelector(token string) selector {
	switch token {
	case "cancel":
		return selector{kind: selCancel}
	case "confirm_del":
		return selector{kind: selConfirmDel}
	case "back:sections":
		return selector{kind: selBackSections}
	case "noop":
		return selector{kind: selNoop}
	case "vback":
		return selector{kind: selViewBack}
	}

	parts := strings.Split(token, ":")
	switch {
	case len(parts) == 2 && parts[0] == "sec":
		return sectionSelector(selSection, parts[1])
	case len(parts) == 2 && parts[0] == "vsec":
		return sectionSelector(selViewSection, parts[1])
	case len(parts) == 2 && parts[0] == "act_menu":
		return sectionSelector(selActMenu, parts[1])
	case len(parts) == 3 && parts[0] == "act":
		kind, ok := actionKinds[parts[1]]
		if !ok {
			return selector{}
		}
		return sectionSelector(kind, parts[2])
	case len(parts) == 3 && parts[0] == "pick_edit":
		return pairSelector(selPickEdit, parts[1], parts[2])
	case len(parts) == 3 && parts[0] == "pick_del":
		return pairSelector(selPickDel, parts[1], parts[2])
	case len(parts) == 3 && parts[0] == "vsub":
		return pairSelector(selViewSub, parts[1], parts[2])
	}
	return selector{}
}

var actionKinds = map[string]selectorKind{
	"set_text": selActSetText,
	"add_sub":  selActAddSub,
	"edit_sub": selActEditSub,
	"del_sub":  selActDelSub,
}

func sectionSelector(kind selectorKind, secStr string) selector {
	sec, err := strconv.Atoi(secStr)
	if err != nil || sec < 1 {
		return selector{}
	}
	return selector{kind: kind, sec: sec}
}

func pairSelector(kind selectorKind, secStr, subStr string) selector {
	sec, err := strconv.Atoi(secStr)
	if err != nil || sec < 1 {
		return selector{}
	}
	sub, err := strconv.Atoi(subStr)
	if err != nil || sub < 1 {
		return selector{}
	}
	return selector{kind: kind, sec: sec, sub: sub}
}
