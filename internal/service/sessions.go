package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"recruitdesk/internal/metrics"
	"recruitdesk/internal/moderation"
	"recruitdesk/internal/privacy"
)

// SessionStore owns every dashboard session, keyed by the X-Session-ID header value
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*moderation.Session
	idle     time.Duration
	now      func() time.Time
	logger   *logrus.Logger
}

func NewSessionStore(idle time.Duration, logger *logrus.Logger) *SessionStore {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}
	return &SessionStore{
		sessions: make(map[string]*moderation.Session),
		idle:     idle,
		now:      time.Now,
		logger:   logger,
	}
}

// Get returns the session for id, creating one when id is unknown.
// Ids that are not UUIDs are replaced by a fresh one; created reports whether a new session was made.
func (st *SessionStore) Get(id string) (sess *moderation.Session, created bool) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if sess, ok := st.sessions[id]; ok {
		return sess, false
	}

	sess = moderation.NewSession(id, st.now)
	st.sessions[id] = sess
	metrics.SetGauge("sessions_active", float64(len(st.sessions)), nil, "Dashboard sessions held in memory")
	st.logger.WithField(LogFieldSession, privacy.MaskSessionID(id)).Debug("Created dashboard session")
	return sess, true
}

// Len is the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// EvictIdle drops sessions unused for longer than the idle timeout and returns how many were removed
func (st *SessionStore) EvictIdle() int {
	if st.idle <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.idle)

	st.mu.Lock()
	defer st.mu.Unlock()

	evicted := 0
	for id, sess := range st.sessions {
		if sess.LastSeen().Before(cutoff) {
			delete(st.sessions, id)
			evicted++
		}
	}
	metrics.SetGauge("sessions_active", float64(len(st.sessions)), nil, "Dashboard sessions held in memory")
	return evicted
}
