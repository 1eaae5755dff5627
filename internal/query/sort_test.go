package query

import (
	"errors"
	"testing"
)

func TestOrderClauseMessageView(t *testing.T) {
	tests := []struct {
		name string
		spec SortSpec
		want string
	}{
		{"timestamp asc", SortSpec{SortByTimestamp, SortAsc}, "ORDER BY m.timestamp ASC, m.id ASC"},
		{"timestamp desc", SortSpec{SortByTimestamp, SortDesc}, "ORDER BY m.timestamp DESC, m.id DESC"},
		{"msg id asc", SortSpec{SortByMessageID, SortAsc}, "ORDER BY m.msg_id ASC, m.id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := orderClause(MessageView, tt.spec)
			if err != nil {
				t.Fatalf("orderClause: %v", err)
			}
			if got != tt.want {
				t.Errorf("orderClause = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOrderClauseChatView(t *testing.T) {
	got, err := orderClause(ChatView, SortSpec{SortByMessageCount, SortDesc})
	if err != nil {
		t.Fatalf("orderClause: %v", err)
	}
	if want := "ORDER BY message_count DESC, c.id DESC"; got != want {
		t.Errorf("orderClause = %q, want %q", got, want)
	}
}

func TestOrderClauseRejectsFieldOutsideView(t *testing.T) {
	// message_count belongs to the chat listing; requesting it on a
	// message listing must fail, not fall back silently.
	_, err := orderClause(MessageView, SortSpec{Field: SortByMessageCount})
	var serr *UnsupportedSortError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *UnsupportedSortError", err)
	}
	if serr.Field != SortByMessageCount || serr.View != MessageView {
		t.Errorf("error = %+v, want message_count/message view", serr)
	}

	if _, err := orderClause(ChatView, SortSpec{Field: SortByTimestamp}); err == nil {
		t.Error("timestamp on chat view should be rejected")
	}
}

func TestParseSortField(t *testing.T) {
	for name, want := range map[string]SortField{
		"timestamp":     SortByTimestamp,
		"id":            SortByMessageID,
		"msg_id":        SortByMessageID,
		"Name":          SortByName,
		"message_count": SortByMessageCount,
		"last_message":  SortByLastMessage,
	} {
		got, ok := ParseSortField(name)
		if !ok || got != want {
			t.Errorf("ParseSortField(%q) = %v, %v; want %v, true", name, got, ok, want)
		}
	}
	if _, ok := ParseSortField("timestamp; DROP TABLE messages"); ok {
		t.Error("unknown field must not parse")
	}
}

func TestParseSortDirectionDefaultsToAsc(t *testing.T) {
	for _, s := range []string{"", "asc", "ASC", "sideways", "DESCending"} {
		if got := ParseSortDirection(s); got != SortAsc {
			t.Errorf("ParseSortDirection(%q) = %v, want SortAsc", s, got)
		}
	}
	for _, s := range []string{"desc", "DESC", "Desc"} {
		if got := ParseSortDirection(s); got != SortDesc {
			t.Errorf("ParseSortDirection(%q) = %v, want SortDesc", s, got)
		}
	}
}
