package rule

// Action determines what happens when a signature matches. Unknown
// actions are preserved verbatim rather than rejected, so a rule being
// typed live still parses.
type Action string

// Actions recognized by Suricata.
const (
	ActionAlert      Action = "alert"
	ActionPass       Action = "pass"
	ActionDrop       Action = "drop"
	ActionReject     Action = "reject"
	ActionRejectSrc  Action = "rejectsrc"
	ActionRejectDst  Action = "rejectdst"
	ActionRejectBoth Action = "rejectboth"
)

// ParseAction interprets raw as an action. Unrecognized text maps onto
// itself, never an error.
func ParseAction(raw string) Action {
	return Action(raw)
}

// Known reports whether the action is one of the recognized Suricata
// actions rather than free text.
func (a Action) Known() bool {
	switch a {
	case ActionAlert, ActionPass, ActionDrop, ActionReject,
		ActionRejectSrc, ActionRejectDst, ActionRejectBoth:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	return string(a)
}
