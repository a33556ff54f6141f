package models

import "time"

// NoHistoryText is the preview shown for candidates without any messages
const NoHistoryText = "No communication history"

// Conversation is the assembled thread for one candidate.
// MessageCount always equals len(Messages) and HasMessages is MessageCount > 0.
// LastMessageTime is omitted from JSON when neither a message nor a creation date gave it a value.
type Conversation struct {
	CandidateID     string    `json:"candidateId"`
	DisplayName     string    `json:"displayName"`
	Messages        []Message `json:"messages"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime,omitzero"`
	UnreadCount     int       `json:"unreadCount"`
	HasMessages     bool      `json:"hasMessages"`
	MessageCount    int       `json:"messageCount"`

	// Ordering keys copied from the candidate; not part of the wire format.
	LastContacted time.Time `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

// Pagination describes one slice of a filtered conversation list
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalCount int `json:"totalCount"`
	PageSize   int `json:"pageSize"`
}

// Stats are always computed over the full normalized set
type Stats struct {
	Total           int `json:"total"`
	WithMessages    int `json:"withMessages"`
	WithoutMessages int `json:"withoutMessages"`
}
