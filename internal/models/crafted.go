package models

import "time"

// CraftedState is the moderation state of one (candidate, channel) draft
type CraftedState int

const (
	CraftedPending CraftedState = iota
	CraftedApproved
	CraftedRejected
)

func (s CraftedState) String() string {
	switch s {
	case CraftedPending:
		return "pending"
	case CraftedApproved:
		return "approved"
	case CraftedRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// MarshalText renders the state by name in JSON payloads
func (s CraftedState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Decision is the outcome a moderator chose for a crafted message
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// CraftedPrompt is a pending draft that should be shown to the moderator
type CraftedPrompt struct {
	CandidateID string  `json:"candidateId"`
	Channel     Channel `json:"channel"`
	Content     string  `json:"content"`
}

// DecisionNotification is the body of the outbound moderation trigger
type DecisionNotification struct {
	IdentityKey   string    `json:"identityKey"`
	Decision      Decision  `json:"decision"`
	Channel       Channel   `json:"channel"`
	CandidateID   string    `json:"candidateId"`
	CandidateName string    `json:"candidateName"`
	Timestamp     time.Time `json:"timestamp"`
}

// DispatchStatus records whether the outbound trigger reached its endpoint
type DispatchStatus string

const (
	DispatchSent   DispatchStatus = "sent"
	DispatchFailed DispatchStatus = "failed"
)

// ModerationEvent is one row of the moderation audit log
type ModerationEvent struct {
	ID          string         `json:"id"`
	CandidateID string         `json:"candidateId"`
	Channel     Channel        `json:"channel"`
	Decision    Decision       `json:"decision"`
	Status      DispatchStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}
