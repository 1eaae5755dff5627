package query

import "strings"

// View identifies which listing a sort applies to. Each view has its own
// whitelist of sortable fields.
type View int

const (
	MessageView View = iota
	ChatView
)

func (v View) String() string {
	switch v {
	case MessageView:
		return "message"
	case ChatView:
		return "chat"
	default:
		return "unknown"
	}
}

// SortField enumerates every sortable column across both views. Fields are
// compile-time constants; requested names are mapped through
// ParseSortField and never interpolated into SQL.
type SortField int

const (
	SortByTimestamp SortField = iota
	SortByMessageID
	SortByName
	SortByMessageCount
	SortByLastMessage
)

func (f SortField) String() string {
	switch f {
	case SortByTimestamp:
		return "timestamp"
	case SortByMessageID:
		return "id"
	case SortByName:
		return "name"
	case SortByMessageCount:
		return "message_count"
	case SortByLastMessage:
		return "last_message"
	default:
		return "unknown"
	}
}

// ParseSortField maps a requested field name to its enum value.
func ParseSortField(s string) (SortField, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "timestamp":
		return SortByTimestamp, true
	case "id", "msg_id":
		return SortByMessageID, true
	case "name":
		return SortByName, true
	case "message_count":
		return SortByMessageCount, true
	case "last_message":
		return SortByLastMessage, true
	default:
		return 0, false
	}
}

// SortDirection is ascending or descending. Ascending is the default.
type SortDirection int

const (
	SortAsc SortDirection = iota
	SortDesc
)

func (d SortDirection) String() string {
	if d == SortDesc {
		return "DESC"
	}
	return "ASC"
}

// ParseSortDirection interprets a requested direction case-insensitively,
// defaulting to ascending on anything unrecognized.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return SortDesc
	}
	return SortAsc
}

// SortSpec is a validated sort request: a whitelisted field plus a
// direction.
type SortSpec struct {
	Field     SortField
	Direction SortDirection
}

// DefaultMessageSort orders messages chronologically.
func DefaultMessageSort() SortSpec {
	return SortSpec{Field: SortByTimestamp, Direction: SortAsc}
}

// DefaultChatSort orders chats alphabetically.
func DefaultChatSort() SortSpec {
	return SortSpec{Field: SortByName, Direction: SortAsc}
}

// sortColumn maps a (view, field) pair to its column expression and the
// primary-key tie-break column for that view.
func sortColumn(view View, field SortField) (expr, tieBreak string, ok bool) {
	switch view {
	case MessageView:
		switch field {
		case SortByTimestamp:
			return "m.timestamp", "m.id", true
		case SortByMessageID:
			return "m.msg_id", "m.id", true
		}
	case ChatView:
		switch field {
		case SortByName:
			return "c.name", "c.id", true
		case SortByMessageCount:
			return "message_count", "c.id", true
		case SortByLastMessage:
			return "last_message", "c.id", true
		}
	}
	return "", "", false
}

// orderClause resolves a sort spec into an ORDER BY fragment for the given
// view. The row's primary key is always appended as a tie-break in the
// same direction, so equal primary sort values still yield a total order.
func orderClause(view View, spec SortSpec) (string, error) {
	expr, tieBreak, ok := sortColumn(view, spec.Field)
	if !ok {
		return "", &UnsupportedSortError{Field: spec.Field, View: view}
	}
	dir := spec.Direction.String()
	return "ORDER BY " + expr + " " + dir + ", " + tieBreak + " " + dir, nil
}
