package database

// Moderation audit log queries
const (
	InsertModerationEventQuery = `
		INSERT INTO moderation_events (
			id, candidate_id, channel, decision, status, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	SelectModerationEventsQuery = `
		SELECT id, candidate_id, channel, decision, status, error, created_at
		FROM moderation_events
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	SelectModerationEventsByCandidateQuery = `
		SELECT id, candidate_id, channel, decision, status, error, created_at
		FROM moderation_events
		WHERE candidate_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?
	`

	DeleteModerationEventsBeforeQuery = `
		DELETE FROM moderation_events
		WHERE created_at < ?
	`
)
