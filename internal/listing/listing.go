// Package listing orders, filters and paginates assembled conversations.
package listing

import (
	"slices"
	"strings"
	"time"

	"recruitdesk/internal/models"
)

// Entry pairs a conversation with the candidate fields the server-side query reads
type Entry struct {
	Candidate    models.CanonicalCandidate
	Conversation models.Conversation
}

var epoch = time.Unix(0, 0).UTC()

// Sort orders entries in place: conversations with messages first, then by the
// later of last-contacted and created dates, newest first. Missing dates count
// as the Unix epoch. Ties keep their input order.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return Compare(a.Conversation, b.Conversation)
	})
}

// Compare is the ordering used by Sort
func Compare(a, b models.Conversation) int {
	if a.HasMessages != b.HasMessages {
		if a.HasMessages {
			return -1
		}
		return 1
	}
	return activity(b).Compare(activity(a))
}

func activity(c models.Conversation) time.Time {
	latest := c.LastContacted
	if c.CreatedAt.After(latest) {
		latest = c.CreatedAt
	}
	if latest.IsZero() {
		return epoch
	}
	return latest
}

// FilterQuery returns the entries whose name, email, phone, title or employer
// contains q, case-insensitively. A blank q keeps everything. entries is not modified.
func FilterQuery(entries []Entry, q string) []Entry {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return slices.Clone(entries)
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		c := &e.Candidate
		for _, v := range []string{c.Name, c.Email, c.Phone, c.CurrentTitle, c.CurrentEmployer} {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// FilterJobs returns the jobs whose title, company, location or status contains q, case-insensitively
func FilterJobs(jobs []models.Job, q string) []models.Job {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return slices.Clone(jobs)
	}

	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		for _, v := range []string{j.Title, j.Company, j.Location, j.Status} {
			if strings.Contains(strings.ToLower(v), q) {
				out = append(out, j)
				break
			}
		}
	}
	return out
}

// Search narrows an already fetched page by display name or candidate id
func Search(convs []models.Conversation, term string) []models.Conversation {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(convs)
	}

	out := make([]models.Conversation, 0, len(convs))
	for _, c := range convs {
		if strings.Contains(strings.ToLower(c.DisplayName), term) || strings.Contains(strings.ToLower(c.CandidateID), term) {
			out = append(out, c)
		}
	}
	return out
}

// Paginate returns items[(page-1)*size : page*size] clamped to the slice bounds.
// page and size below 1 are treated as 1.
func Paginate[T any](items []T, page, size int) ([]T, models.Pagination) {
	page = max(page, 1)
	size = max(size, 1)

	p := models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalCount: len(items),
		TotalPages: (len(items) + size - 1) / size,
	}

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	return slices.Clone(items[start:end]), p
}

// ComputeStats counts conversations with and without messages
func ComputeStats(entries []Entry) models.Stats {
	s := models.Stats{Total: len(entries)}
	for _, e := range entries {
		if e.Conversation.HasMessages {
			s.WithMessages++
		}
	}
	s.WithoutMessages = s.Total - s.WithMessages
	return s
}

// Conversations extracts the conversations of entries in order
func Conversations(entries []Entry) []models.Conversation {
	out := make([]models.Conversation, len(entries))
	for i, e := range entries {
		out[i] = e.Conversation
	}
	return out
}
