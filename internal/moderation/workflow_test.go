package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "recruitdesk/internal/errors"
	"recruitdesk/internal/listing"
	"recruitdesk/internal/models"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n models.DecisionNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) RecordEvent(ctx context.Context, event models.ModerationEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func testCandidate() models.CanonicalCandidate {
	return models.CanonicalCandidate{
		ID:          "c1",
		Name:        "Ada Lovelace",
		IdentityKey: "https://linkedin.com/in/ada",
		Drafts: map[models.Channel]string{
			models.ChannelMail:     "Dear Ada",
			models.ChannelLinkedIn: "Hi Ada",
		},
	}
}

func sessionWith(t *testing.T, candidates ...models.CanonicalCandidate) *Session {
	t.Helper()
	s := NewSession("sess-1", clock)
	entries := make([]listing.Entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, listing.Entry{
			Candidate:    c,
			Conversation: models.Conversation{CandidateID: c.ID, DisplayName: c.DisplayName(), Messages: []models.Message{}, LastMessage: models.NoHistoryText},
		})
	}
	require.True(t, s.Commit(s.BeginFetch(), entries, listing.ComputeStats(entries)))
	return s
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestApprove_AppendsMessageAndNotifies(t *testing.T) {
	notifier := &mockNotifier{}
	recorder := &mockRecorder{}
	s := sessionWith(t, testCandidate())
	w := NewWorkflow(notifier, recorder, time.Second, quietLogger(), clock)

	notifier.On("Notify", mock.Anything, models.DecisionNotification{
		IdentityKey:   "https://linkedin.com/in/ada",
		Decision:      models.DecisionAccept,
		Channel:       models.ChannelMail,
		CandidateID:   "c1",
		CandidateName: "Ada Lovelace",
		Timestamp:     fixedNow,
	}).Return(nil).Once()
	recorder.On("RecordEvent", mock.Anything, mock.MatchedBy(func(e models.ModerationEvent) bool {
		return e.CandidateID == "c1" && e.Status == models.DispatchSent && e.Decision == models.DecisionAccept && e.ID != ""
	})).Return(nil).Once()

	result, err := w.Approve(context.Background(), s, "c1", models.ChannelMail)
	require.NoError(t, err)

	assert.Equal(t, models.CraftedApproved, result.State)
	assert.Equal(t, models.DispatchSent, result.Dispatch)
	require.Equal(t, 1, result.Conversation.MessageCount)
	msg := result.Conversation.Messages[0]
	assert.Equal(t, "Dear Ada", msg.Content)
	assert.Equal(t, models.SenderRecruiter, msg.Sender)
	assert.Equal(t, models.ChannelMail, msg.Channel)
	assert.True(t, msg.Read)
	assert.Equal(t, fixedNow, msg.Timestamp)

	conv, ok := s.Conversation("c1")
	require.True(t, ok)
	assert.Equal(t, "Dear Ada", conv.LastMessage)

	notifier.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestApprove_TwiceNotifiesOnce(t *testing.T) {
	notifier := &mockNotifier{}
	s := sessionWith(t, testCandidate())
	w := NewWorkflow(notifier, nil, 0, quietLogger(), clock)

	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Once()

	first, err := w.Approve(context.Background(), s, "c1", models.ChannelMail)
	require.NoError(t, err)
	second, err := w.Approve(context.Background(), s, "c1", models.ChannelMail)
	require.NoError(t, err)

	assert.False(t, first.AlreadyDecided)
	assert.True(t, second.AlreadyDecided)
	assert.Equal(t, models.CraftedApproved, second.State)
	assert.Equal(t, 1, second.Conversation.MessageCount)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestReject_NoMessageAppended(t *testing.T) {
	notifier := &mockNotifier{}
	s := sessionWith(t, testCandidate())
	w := NewWorkflow(notifier, nil, 0, quietLogger(), clock)

	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n models.DecisionNotification) bool {
		return n.Decision == models.DecisionReject && n.Channel == models.ChannelLinkedIn
	})).Return(nil).Once()

	result, err := w.Reject(context.Background(), s, "c1", models.ChannelLinkedIn)
	require.NoError(t, err)

	assert.Equal(t, models.CraftedRejected, result.State)
	assert.Zero(t, result.Conversation.MessageCount)

	// a rejected draft cannot be approved afterwards
	again, err := w.Approve(context.Background(), s, "c1", models.ChannelLinkedIn)
	require.NoError(t, err)
	assert.True(t, again.AlreadyDecided)
	assert.Equal(t, models.CraftedRejected, again.State)
	notifier.AssertNumberOfCalls(t, "Notify", 1)
}

func TestApprove_NotifierFailureKeepsDecision(t *testing.T) {
	notifier := &mockNotifier{}
	recorder := &mockRecorder{}
	s := sessionWith(t, testCandidate())
	w := NewWorkflow(notifier, recorder, 0, quietLogger(), clock)

	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	recorder.On("RecordEvent", mock.Anything, mock.MatchedBy(func(e models.ModerationEvent) bool {
		return e.Status == models.DispatchFailed && e.Error == "connection refused"
	})).Return(errors.New("disk full"))

	result, err := w.Approve(context.Background(), s, "c1", models.ChannelMail)
	require.NoError(t, err)

	assert.Equal(t, models.DispatchFailed, result.Dispatch)
	assert.Equal(t, models.CraftedApproved, s.State("c1", models.ChannelMail))
	assert.Equal(t, 1, result.Conversation.MessageCount)
	recorder.AssertExpectations(t)
}

func TestApprove_MissingIdentityKeyRefusedBeforeNetwork(t *testing.T) {
	notifier := &mockNotifier{}
	c := testCandidate()
	c.IdentityKey = ""
	s := sessionWith(t, c)
	w := NewWorkflow(notifier, nil, 0, quietLogger(), clock)

	result, err := w.Approve(context.Background(), s, "c1", models.ChannelMail)
	require.Error(t, err)
	assert.Nil(t, result)

	assert.Equal(t, apperrors.ErrCodeModerationRefused, apperrors.GetCode(err))
	assert.Contains(t, apperrors.GetUserMessage(err), "LinkedIn URL")
	assert.Equal(t, models.CraftedPending, s.State("c1", models.ChannelMail))
	conv, _ := s.Conversation("c1")
	assert.Zero(t, conv.MessageCount)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestDecide_UnknownCandidateOrDraft(t *testing.T) {
	notifier := &mockNotifier{}
	s := sessionWith(t, testCandidate())
	w := NewWorkflow(notifier, nil, 0, quietLogger(), clock)

	_, err := w.Approve(context.Background(), s, "missing", models.ChannelMail)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))

	_, err = w.Reject(context.Background(), s, "c1", models.ChannelWhatsApp)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))

	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestDecide_ContextDeadlineApplied(t *testing.T) {
	notifier := &mockNotifier{}
	s := sessionWith(t, testCandidate())
	w := NewWorkflow(notifier, nil, 50*time.Millisecond, quietLogger(), clock)

	notifier.On("Notify", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	}), mock.Anything).Return(nil).Once()

	_, err := w.Approve(context.Background(), s, "c1", models.ChannelLinkedIn)
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}
