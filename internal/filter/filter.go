// Package filter parses raw request parameters into a validated filter
// descriptor for the message query engine. A descriptor carries exactly one
// active intent: free-text search, tag search, or a date-range filter,
// optionally scoped to a single chat.
package filter

import (
	"fmt"
	"strings"
	"time"
)

// Action identifies the filter intent. At most one intent is active per
// descriptor.
type Action int

const (
	ActionNone Action = iota
	ActionSearch
	ActionTag
	ActionFilter
)

func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionSearch:
		return "search"
	case ActionTag:
		return "tag"
	case ActionFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// DateMode identifies the date-range shape of an ActionFilter descriptor.
type DateMode int

const (
	DateModeNone DateMode = iota
	DateOn
	DateBefore
	DateAfter
	DateBetween
)

func (m DateMode) String() string {
	switch m {
	case DateOn:
		return "on"
	case DateBefore:
		return "before"
	case DateAfter:
		return "after"
	case DateBetween:
		return "between"
	default:
		return "none"
	}
}

// ValidationError reports a descriptor that failed normalization rules.
// The message is caller-safe and may be surfaced verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Params holds raw string parameters as received from a request or CLI
// flags. Empty and whitespace-only values are treated as absent.
type Params struct {
	Action    string
	Query     string
	Tag       string
	DateMode  string
	StartDate string
	EndDate   string
	ChatSlug  string
}

// Descriptor is the canonical, validated representation of a filter
// request. Build one with Parse; a zero Descriptor matches all rows.
type Descriptor struct {
	Action   Action
	Query    string // set only when Action == ActionSearch
	Tag      string // set only when Action == ActionTag, without leading '#'
	DateMode DateMode
	Start    time.Time // midnight UTC of start_date
	End      time.Time // midnight UTC of end_date, DateBetween only
	ChatSlug string    // empty means global scope
}

// IsGlobal reports whether the descriptor spans all chats.
func (d Descriptor) IsGlobal() bool {
	return d.ChatSlug == ""
}

// Parse normalizes raw parameters into a Descriptor.
// It returns a *ValidationError when the parameters cannot form a valid
// descriptor; the error message is safe to show to the caller.
func Parse(p Params) (Descriptor, error) {
	d := Descriptor{
		ChatSlug: strings.TrimSpace(p.ChatSlug),
	}

	query := strings.TrimSpace(p.Query)
	tag := strings.TrimSpace(p.Tag)
	mode := strings.TrimSpace(p.DateMode)
	start := strings.TrimSpace(p.StartDate)
	end := strings.TrimSpace(p.EndDate)

	rawAction := strings.TrimSpace(p.Action)

	// A '#'-prefixed query is a tag search, overriding whatever action was
	// declared alongside it.
	if strings.HasPrefix(query, "#") {
		tag = strings.TrimSpace(strings.TrimPrefix(query, "#"))
		query = ""
		if tag == "" {
			return Descriptor{}, validationErrorf("tag required after #")
		}
		rawAction = "tag"
	}

	action, err := resolveAction(rawAction, query, tag, mode, start, end)
	if err != nil {
		return Descriptor{}, err
	}
	d.Action = action

	switch action {
	case ActionNone:
		return d, nil
	case ActionSearch:
		if query == "" {
			return Descriptor{}, validationErrorf("please enter a search query")
		}
		d.Query = query
		return d, nil
	case ActionTag:
		if tag == "" {
			return Descriptor{}, validationErrorf("please specify a tag")
		}
		d.Tag = tag
		return d, nil
	}

	// ActionFilter from here on.
	dateMode, err := parseDateMode(mode)
	if err != nil {
		return Descriptor{}, err
	}
	d.DateMode = dateMode

	if start == "" {
		if dateMode == DateBetween && end == "" {
			return Descriptor{}, validationErrorf("please provide both start and end dates")
		}
		return Descriptor{}, validationErrorf("start date is required")
	}
	d.Start, err = parseDate(start, "start date")
	if err != nil {
		return Descriptor{}, err
	}

	if dateMode == DateBetween {
		if end == "" {
			return Descriptor{}, validationErrorf("end date is required")
		}
		d.End, err = parseDate(end, "end date")
		if err != nil {
			return Descriptor{}, err
		}
		if d.Start.After(d.End) {
			return Descriptor{}, validationErrorf("start date must be before or equal to end date")
		}
	} else if end != "" {
		// Dangling end date on a single-date mode is ignored after
		// validation so malformed input still surfaces.
		if _, err := parseDate(end, "end date"); err != nil {
			return Descriptor{}, err
		}
	}

	return d, nil
}

// resolveAction determines the filter intent from the explicit action
// parameter, falling back to inference from the populated fields.
func resolveAction(action, query, tag, mode, start, end string) (Action, error) {
	switch action {
	case "search":
		return ActionSearch, nil
	case "tag":
		return ActionTag, nil
	case "filter":
		if mode == "" {
			return ActionNone, validationErrorf("date filter mode required")
		}
		return ActionFilter, nil
	case "", "none":
	default:
		return ActionNone, validationErrorf("unknown filter action %q", action)
	}

	// Infer intent: tag wins over text, text wins over dates.
	switch {
	case tag != "":
		return ActionTag, nil
	case query != "":
		return ActionSearch, nil
	case mode != "" && (start != "" || end != ""):
		return ActionFilter, nil
	case mode != "" || start != "" || end != "":
		return ActionNone, validationErrorf("date filter mode and start date are both required")
	default:
		return ActionNone, nil
	}
}

func parseDateMode(mode string) (DateMode, error) {
	switch mode {
	case "on":
		return DateOn, nil
	case "before":
		return DateBefore, nil
	case "after":
		return DateAfter, nil
	case "between":
		return DateBetween, nil
	case "":
		return DateModeNone, validationErrorf("date filter mode required")
	default:
		return DateModeNone, validationErrorf("invalid date filter mode %q", mode)
	}
}

// parseDate parses an ISO calendar date, distinguishing malformed syntax
// from calendar-invalid values (e.g. February 31st).
func parseDate(s, label string) (time.Time, error) {
	if !isDateShaped(s) {
		return time.Time{}, validationErrorf("invalid %s format: %q is not a YYYY-MM-DD date", label, s)
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, validationErrorf("%s out of range: %q is not a calendar date", label, s)
	}
	return t, nil
}

func isDateShaped(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, r := range s {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
