package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arcanum/arcanum/internal/filter"
	"github.com/arcanum/arcanum/internal/query"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, err string, message string) {
	writeJSON(w, status, ErrorResponse{Error: err, Message: message})
}

const timestampFormat = "2006-01-02T15:04:05Z"

// MessageJSON represents a message in API responses.
type MessageJSON struct {
	ID         int64    `json:"id"`
	MsgID      int64    `json:"msg_id"`
	Timestamp  string   `json:"timestamp"`
	Link       string   `json:"link,omitempty"`
	Text       string   `json:"text"`
	Media      []string `json:"media,omitempty"`
	Screenshot string   `json:"screenshot,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      string   `json:"notes,omitempty"`
	ChatName   string   `json:"chat_name"`
	ChatSlug   string   `json:"chat_slug"`
}

func toMessageJSON(m query.MessageRow) MessageJSON {
	return MessageJSON{
		ID:         m.ID,
		MsgID:      m.MsgID,
		Timestamp:  m.Timestamp.UTC().Format(timestampFormat),
		Link:       m.Link,
		Text:       m.Text,
		Media:      m.Media,
		Screenshot: m.Screenshot,
		Tags:       m.Tags,
		Notes:      m.Notes,
		ChatName:   m.ChatName,
		ChatSlug:   m.ChatSlug,
	}
}

func toMessageList(rows []query.MessageRow) []MessageJSON {
	out := make([]MessageJSON, len(rows))
	for i, m := range rows {
		out[i] = toMessageJSON(m)
	}
	return out
}

// GroupJSON represents one chat's messages in a grouped response.
type GroupJSON struct {
	Slug     string        `json:"slug"`
	Name     string        `json:"name"`
	Messages []MessageJSON `json:"messages"`
}

// ChatJSON represents a chat in list responses.
type ChatJSON struct {
	ID            int64  `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	MessageCount  int64  `json:"message_count"`
	LastMessageAt string `json:"last_message_at,omitempty"`
}

// filterParams extracts filter parameters from the request query string.
func filterParams(r *http.Request, chatSlug string) filter.Params {
	q := r.URL.Query()
	return filter.Params{
		Action:    q.Get("action"),
		Query:     q.Get("query"),
		Tag:       q.Get("tag"),
		DateMode:  q.Get("date_mode"),
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		ChatSlug:  chatSlug,
	}
}

// sortSpec resolves the sort and direction query parameters against a
// view's default. An unknown field name is reported by the engine as an
// unsupported-sort error, so only syntax is handled here.
func sortSpec(r *http.Request, def query.SortSpec) (query.SortSpec, bool) {
	q := r.URL.Query()
	spec := def
	if name := q.Get("sort"); name != "" {
		field, ok := query.ParseSortField(name)
		if !ok {
			return spec, false
		}
		spec.Field = field
	}
	spec.Direction = query.ParseSortDirection(q.Get("direction"))
	return spec, true
}

// writeEngineError maps engine failures onto HTTP statuses. Validation and
// sort errors carry caller-safe messages; anything else is reported
// generically and logged with detail.
func (s *Server) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *filter.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, "invalid_filter", verr.Reason)
		return
	}
	var serr *query.UnsupportedSortError
	if errors.As(err, &serr) {
		writeError(w, http.StatusBadRequest, "invalid_sort", serr.Error())
		return
	}
	if errors.Is(err, query.ErrChatNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Chat not found")
		return
	}
	if errors.Is(err, query.ErrMessageNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Message not found")
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "Request failed")
}

// handleMessages runs a filtered query. Global requests return messages
// grouped by chat; requests scoped with ?chat= return a flat list.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	desc, err := filter.Parse(filterParams(r, r.URL.Query().Get("chat")))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	spec, ok := sortSpec(r, query.DefaultMessageSort())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_sort", "Unknown sort field")
		return
	}

	rows, err := s.engine.RunFilteredQuery(r.Context(), desc, spec)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	if !desc.IsGlobal() {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"total":    len(rows),
			"chat":     desc.ChatSlug,
			"messages": toMessageList(rows),
		})
		return
	}

	grouped := query.GroupByChatSlug(rows)
	groups := make([]GroupJSON, len(grouped.Groups))
	for i, g := range grouped.Groups {
		groups[i] = GroupJSON{
			Slug:     g.Slug,
			Name:     g.Name,
			Messages: toMessageList(g.Messages),
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":  grouped.Total,
		"groups": groups,
	})
}

// handleGetMessage returns a single message by ID.
func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "Message ID must be a number")
		return
	}

	msg, err := s.engine.GetMessage(r.Context(), id)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageJSON(*msg))
}

// handleListChats returns the chat listing with message counts.
func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	spec, ok := sortSpec(r, query.DefaultChatSort())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_sort", "Unknown sort field")
		return
	}

	chats, err := s.engine.ListChats(r.Context(), spec)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	out := make([]ChatJSON, len(chats))
	for i, c := range chats {
		out[i] = ChatJSON{
			ID:           c.ID,
			Slug:         c.Slug,
			Name:         c.Name,
			MessageCount: c.MessageCount,
		}
		if !c.LastMessageAt.IsZero() {
			out[i].LastMessageAt = c.LastMessageAt.UTC().Format(timestampFormat)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total": len(out),
		"chats": out,
	})
}

// handleChatMessages returns one chat's messages, optionally filtered.
func (s *Server) handleChatMessages(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	desc, err := filter.Parse(filterParams(r, slug))
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	spec, ok := sortSpec(r, query.DefaultMessageSort())
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_sort", "Unknown sort field")
		return
	}

	rows, err := s.engine.RunFilteredQuery(r.Context(), desc, spec)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":    len(rows),
		"chat":     slug,
		"messages": toMessageList(rows),
	})
}

// handleStats returns archive statistics.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.ComputeStats(r.Context())
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"total_chats":    stats.TotalChats,
		"total_messages": stats.TotalMessages,
		"media_messages": stats.MediaMessages,
	}
	if stats.MostActive != nil {
		resp["most_active_chat"] = map[string]interface{}{
			"id":            stats.MostActive.ID,
			"name":          stats.MostActive.Name,
			"message_count": stats.MostActive.MessageCount,
		}
	}
	if stats.LastMessage != nil {
		resp["last_message"] = map[string]interface{}{
			"id":        stats.LastMessage.ID,
			"timestamp": stats.LastMessage.Timestamp.UTC().Format(timestampFormat),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// adjacentTimeLayouts are accepted encodings for the ?ts= parameter.
var adjacentTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// handleAdjacent returns the nearest message strictly before or after a
// reference timestamp within one chat.
func (s *Server) handleAdjacent(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	dir, ok := query.ParseDirection(r.URL.Query().Get("direction"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_direction", "Direction must be 'previous' or 'next'")
		return
	}

	tsParam := r.URL.Query().Get("ts")
	if tsParam == "" {
		writeError(w, http.StatusBadRequest, "missing_ts", "Query parameter 'ts' is required")
		return
	}
	var ref time.Time
	var err error
	for _, layout := range adjacentTimeLayouts {
		if ref, err = time.ParseInLocation(layout, tsParam, time.UTC); err == nil {
			break
		}
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_ts", "Timestamp must be RFC 3339 or 'YYYY-MM-DD HH:MM:SS'")
		return
	}

	msg, err := s.engine.FindAdjacent(r.Context(), slug, ref, dir)
	if err != nil {
		s.writeEngineError(w, r, err)
		return
	}
	if msg == nil {
		writeError(w, http.StatusNotFound, "not_found", "No adjacent message")
		return
	}
	writeJSON(w, http.StatusOK, toMessageJSON(*msg))
}
