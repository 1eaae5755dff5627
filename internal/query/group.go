package query

// GroupByChatSlug partitions a flat, already-ordered result set into
// per-chat groups. Groups appear in the order their chat first appears in
// the stream, and each group keeps its messages in the exact order
// received, so concatenating the groups reconstructs the input. Total is
// maintained alongside the groups and always equals both the input length
// and the sum of group sizes.
func GroupByChatSlug(rows []MessageRow) GroupedResult {
	var result GroupedResult
	index := make(map[string]int, 8)

	for _, row := range rows {
		i, seen := index[row.ChatSlug]
		if !seen {
			i = len(result.Groups)
			index[row.ChatSlug] = i
			result.Groups = append(result.Groups, ChatGroup{
				Slug: row.ChatSlug,
				Name: row.ChatName,
			})
		}
		result.Groups[i].Messages = append(result.Groups[i].Messages, row)
		result.Total++
	}

	return result
}

// Flatten reconstructs the original flat sequence from the groups, in
// chat-discovery order. Mostly useful for verifying the grouping
// invariant.
func (g GroupedResult) Flatten() []MessageRow {
	if g.Total == 0 {
		return nil
	}
	flat := make([]MessageRow, 0, g.Total)
	for _, grp := range g.Groups {
		flat = append(flat, grp.Messages...)
	}
	return flat
}
