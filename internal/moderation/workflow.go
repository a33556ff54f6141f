package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"recruitdesk/internal/conversation"
	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/metrics"
	"recruitdesk/internal/models"
	"recruitdesk/internal/privacy"
	"recruitdesk/internal/tracing"
)

// Notifier delivers a decision to the outbound automation endpoint
type Notifier interface {
	Notify(ctx context.Context, n models.DecisionNotification) error
}

// EventRecorder stores the outcome of each dispatch
type EventRecorder interface {
	RecordEvent(ctx context.Context, event models.ModerationEvent) error
}

// Result describes what one Approve or Reject call did
type Result struct {
	CandidateID    string                `json:"candidateId"`
	Channel        models.Channel        `json:"channel"`
	State          models.CraftedState   `json:"state"`
	AlreadyDecided bool                  `json:"alreadyDecided"`
	Dispatch       models.DispatchStatus `json:"dispatch,omitempty"`
	Conversation   models.Conversation   `json:"conversation"`
}

type Workflow struct {
	notifier Notifier
	recorder EventRecorder
	timeout  time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

// NewWorkflow builds a workflow. recorder may be nil when no audit log is configured.
func NewWorkflow(notifier Notifier, recorder EventRecorder, timeout time.Duration, logger *logrus.Logger, now func() time.Time) *Workflow {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	if now == nil {
		now = time.Now
	}
	return &Workflow{notifier: notifier, recorder: recorder, timeout: timeout, logger: logger, now: now}
}

// Approve marks the draft approved, appends it to the conversation as a
// recruiter message and then notifies the outbound endpoint.
func (w *Workflow) Approve(ctx context.Context, s *Session, candidateID string, ch models.Channel) (*Result, error) {
	return w.decide(ctx, s, candidateID, ch, models.DecisionAccept)
}

// Reject marks the draft rejected and notifies the outbound endpoint
func (w *Workflow) Reject(ctx context.Context, s *Session, candidateID string, ch models.Channel) (*Result, error) {
	return w.decide(ctx, s, candidateID, ch, models.DecisionReject)
}

func (w *Workflow) decide(ctx context.Context, s *Session, candidateID string, ch models.Channel, decision models.Decision) (*Result, error) {
	result, notification, err := w.commit(s, candidateID, ch, decision)
	if err != nil || result.AlreadyDecided {
		return result, err
	}

	result.Dispatch = w.dispatch(ctx, notification)
	return result, nil
}

// commit is the local phase. It validates and records the decision under the
// session lock, so a second call for the same draft sees it and does nothing.
func (w *Workflow) commit(s *Session, candidateID string, ch models.Channel, decision models.Decision) (*Result, models.DecisionNotification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[candidateID]
	if !ok {
		return nil, models.DecisionNotification{}, apperrors.NewNotFoundError("Candidate", candidateID)
	}
	entry := &s.entries[i]
	c := &entry.Candidate
	key := draftKey{candidateID, ch}

	result := &Result{CandidateID: candidateID, Channel: ch}

	if state := s.decisions[key]; state != models.CraftedPending {
		result.State = state
		result.AlreadyDecided = true
		result.Conversation = entry.Conversation
		return result, models.DecisionNotification{}, nil
	}

	if !s.visibleLocked(c, ch) {
		return nil, models.DecisionNotification{}, apperrors.NewNotFoundError("Crafted message", fmt.Sprintf("%s/%s", candidateID, ch))
	}

	if c.IdentityKey == "" {
		return nil, models.DecisionNotification{}, apperrors.NewModerationRefusal(
			"candidate has no LinkedIn URL",
			"This candidate has no LinkedIn URL, so the message cannot be processed. Add the profile URL and try again.",
		).WithContext("candidate_id", candidateID).WithContext("channel", string(ch))
	}

	now := w.now()
	if decision == models.DecisionAccept {
		s.decisions[key] = models.CraftedApproved
		entry.Conversation = conversation.Append(c, entry.Conversation, models.Message{
			ID:        fmt.Sprintf("%s-crafted-%s", candidateID, ch),
			Content:   c.Draft(ch),
			Timestamp: now,
			Sender:    models.SenderRecruiter,
			Channel:   ch,
			Read:      true,
		})
	} else {
		s.decisions[key] = models.CraftedRejected
	}

	result.State = s.decisions[key]
	result.Conversation = entry.Conversation

	return result, models.DecisionNotification{
		IdentityKey:   c.IdentityKey,
		Decision:      decision,
		Channel:       ch,
		CandidateID:   candidateID,
		CandidateName: c.DisplayName(),
		Timestamp:     now,
	}, nil
}

// dispatch is the network phase. Failures never roll back the local decision.
func (w *Workflow) dispatch(ctx context.Context, n models.DecisionNotification) models.DispatchStatus {
	ctx, span := tracing.StartSpan(ctx, "moderation.dispatch",
		attribute.String("channel", string(n.Channel)),
		attribute.String("decision", string(n.Decision)),
	)
	defer span.End()

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	event := models.ModerationEvent{
		ID:          uuid.NewString(),
		CandidateID: n.CandidateID,
		Channel:     n.Channel,
		Decision:    n.Decision,
		Status:      models.DispatchSent,
		CreatedAt:   n.Timestamp,
	}

	fields := logrus.Fields{
		"candidate_id": n.CandidateID,
		"channel":      n.Channel,
		"decision":     n.Decision,
		"identity_key": privacy.MaskURL(n.IdentityKey),
	}

	if err := w.notifier.Notify(ctx, n); err != nil {
		event.Status = models.DispatchFailed
		event.Error = err.Error()
		tracing.RecordError(ctx, err)
		apperrors.Entry(w.logger, err).WithFields(fields).Warn("Moderation notification failed; decision kept")
	} else {
		w.logger.WithFields(fields).Info("Moderation notification sent")
	}

	metrics.IncrementCounter("moderation_decisions_total", map[string]string{
		"decision": string(n.Decision),
		"status":   string(event.Status),
	}, "Moderation decisions by outcome")

	if w.recorder != nil {
		// the audit write must not depend on the notifier's deadline
		if err := w.recorder.RecordEvent(context.WithoutCancel(ctx), event); err != nil {
			apperrors.Entry(w.logger, err).WithFields(fields).Error("Failed to record moderation event")
		}
	}

	return event.Status
}
