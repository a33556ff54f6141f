package models

import "time"

// RawRecord is a record exactly as returned by the upstream store.
// Keys vary in case and naming between tables and responses.
type RawRecord map[string]any

// CanonicalCandidate is the alias-resolved, defaulted form of a candidate record
type CanonicalCandidate struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	IdentityKey      string    `json:"linkedinUrl"`
	CurrentTitle     string    `json:"currentTitle"`
	CurrentEmployer  string    `json:"currentEmployer"`
	Location         string    `json:"location"`
	JobID            string    `json:"jobId"`
	Status           string    `json:"status"`
	Score            float64   `json:"score"`
	ScoreBreakdown   []string  `json:"scoreBreakdown"`
	Summary          string    `json:"summary"`
	Notes            string    `json:"notes"`
	Shortlisted      bool      `json:"shortlisted"`
	LastContacted    time.Time `json:"lastContacted"`
	CreatedAt        time.Time `json:"createdAt"`
	PreferredChannel Channel   `json:"preferredChannel,omitempty"`

	// Drafts holds the AI-crafted outbound text per channel; empty channels are absent.
	Drafts map[Channel]string `json:"drafts,omitempty"`

	// RawMessages is the un-normalized messages value, consumed by the message normalizer.
	RawMessages any `json:"-"`
}

// DisplayName returns the name shown in lists, falling back to the identifier
func (c *CanonicalCandidate) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// Draft returns the crafted text for a channel, or "" when there is none
func (c *CanonicalCandidate) Draft(ch Channel) string {
	if c.Drafts == nil {
		return ""
	}
	return c.Drafts[ch]
}

// Job is the alias-resolved form of a job record
type Job struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}
