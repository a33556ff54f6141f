// Package moderation resolves AI-crafted outbound drafts into sent or discarded
// messages, one decision per candidate and channel per session.
package moderation

import (
	"slices"
	"sync"
	"time"

	"recruitdesk/internal/listing"
	"recruitdesk/internal/models"
)

type draftKey struct {
	candidateID string
	channel     models.Channel
}

// Session is the state one dashboard session owns: its decisions, the last
// committed conversation snapshot and the fetch generation counter.
type Session struct {
	ID string

	mu         sync.Mutex
	generation uint64
	committed  bool
	entries    []listing.Entry
	index      map[string]int
	stats      models.Stats
	decisions  map[draftKey]models.CraftedState
	lastSeen   time.Time
	now        func() time.Time
}

func NewSession(id string, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		ID:        id,
		index:     make(map[string]int),
		decisions: make(map[draftKey]models.CraftedState),
		lastSeen:  now(),
		now:       now,
	}
}

// BeginFetch issues the token a fetch must present to Commit its result
func (s *Session) BeginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.lastSeen = s.now()
	return s.generation
}

// Commit replaces the snapshot with entries, which must already be sorted.
// It returns false and changes nothing when a newer fetch has been started since token was issued.
func (s *Session) Commit(token uint64, entries []listing.Entry, stats models.Stats) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.generation {
		return false
	}

	s.entries = slices.Clone(entries)
	s.index = make(map[string]int, len(entries))
	for i, e := range s.entries {
		s.index[e.Candidate.ID] = i
	}
	s.stats = stats
	s.committed = true
	return true
}

// Snapshot returns a copy of the committed entries and their stats
func (s *Session) Snapshot() ([]listing.Entry, models.Stats, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = s.now()
	return slices.Clone(s.entries), s.stats, s.committed
}

// Conversation returns the committed conversation of one candidate
func (s *Session) Conversation(candidateID string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[candidateID]
	if !ok {
		return models.Conversation{}, false
	}
	return s.entries[i].Conversation, true
}

// State is the decision recorded for a draft, Pending when none
func (s *Session) State(candidateID string, ch models.Channel) models.CraftedState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.decisions[draftKey{candidateID, ch}]
}

// Prompts lists the pending drafts of one candidate that should be shown
func (s *Session) Prompts(candidateID string) []models.CraftedPrompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[candidateID]
	if !ok {
		return []models.CraftedPrompt{}
	}
	return s.promptsLocked(&s.entries[i].Candidate)
}

// AllPrompts returns the pending prompts for every listed candidate that has any
func (s *Session) AllPrompts(candidateIDs []string) map[string][]models.CraftedPrompt {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]models.CraftedPrompt)
	for _, id := range candidateIDs {
		i, ok := s.index[id]
		if !ok {
			continue
		}
		if prompts := s.promptsLocked(&s.entries[i].Candidate); len(prompts) > 0 {
			out[id] = prompts
		}
	}
	return out
}

func (s *Session) promptsLocked(c *models.CanonicalCandidate) []models.CraftedPrompt {
	prompts := []models.CraftedPrompt{}
	for _, ch := range models.Channels {
		if s.visibleLocked(c, ch) {
			prompts = append(prompts, models.CraftedPrompt{CandidateID: c.ID, Channel: ch, Content: c.Draft(ch)})
		}
	}
	return prompts
}

// visibleLocked: non-empty draft, still pending, and the channel is preferred or no preference is set
func (s *Session) visibleLocked(c *models.CanonicalCandidate, ch models.Channel) bool {
	if c.Draft(ch) == "" {
		return false
	}
	if s.decisions[draftKey{c.ID, ch}] != models.CraftedPending {
		return false
	}
	return c.PreferredChannel == "" || c.PreferredChannel == ch
}

// LastSeen is when the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
