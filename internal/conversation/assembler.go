// Package conversation assembles a candidate's messages into a conversation summary.
package conversation

import (
	"slices"
	"time"

	"recruitdesk/internal/messages"
	"recruitdesk/internal/models"
)

// Assemble summarizes msgs for c. msgs keeps its order; the conversation gets its own copy.
func Assemble(c *models.CanonicalCandidate, msgs []models.Message) models.Conversation {
	conv := models.Conversation{
		CandidateID:     c.ID,
		DisplayName:     c.DisplayName(),
		Messages:        slices.Clone(msgs),
		LastMessage:     models.NoHistoryText,
		LastMessageTime: c.CreatedAt,
		MessageCount:    len(msgs),
		HasMessages:     len(msgs) > 0,
		LastContacted:   c.LastContacted,
		CreatedAt:       c.CreatedAt,
	}
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}

	if n := len(msgs); n > 0 {
		last := msgs[n-1]
		conv.LastMessage = last.Content
		conv.LastMessageTime = last.Timestamp
	}

	for _, m := range msgs {
		if m.Sender == models.SenderCandidate && !m.Read {
			conv.UnreadCount++
		}
	}

	return conv
}

// Build normalizes the candidate's raw messages and assembles the result
func Build(c *models.CanonicalCandidate, now func() time.Time) models.Conversation {
	return Assemble(c, messages.ForCandidate(c, now))
}

// Append returns a new conversation with msg added at the end
func Append(c *models.CanonicalCandidate, conv models.Conversation, msg models.Message) models.Conversation {
	msgs := make([]models.Message, 0, len(conv.Messages)+1)
	msgs = append(msgs, conv.Messages...)
	msgs = append(msgs, msg)
	return Assemble(c, msgs)
}
