package events

import "time"

const (
	TypeTrainingCompleted = "bot.training.completed"
	TypeTrainingFailed    = "bot.training.failed"
	TypeTrainingCancelled = "bot.training.cancelled"
	TypeQuestionAnswered  = "bot.question.answered"
)

func newEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now().UTC()}
}

func TrainingCompleted(userID, url, title string, chunks int) BaseEvent {
	return newEvent(TypeTrainingCompleted, map[string]interface{}{
		"user_id": userID,
		"url":     url,
		"title":   title,
		"chunks":  chunks,
	})
}

// TrainingFailed carries the error kind ("transport", "service", ...).
func TrainingFailed(userID, url, kind, reason string) BaseEvent {
	return newEvent(TypeTrainingFailed, map[string]interface{}{
		"user_id": userID,
		"url":     url,
		"kind":    kind,
		"reason":  reason,
	})
}

func TrainingCancelled(userID string) BaseEvent {
	return newEvent(TypeTrainingCancelled, map[string]interface{}{
		"user_id": userID,
	})
}

func QuestionAnswered(userID string, trained bool, sources int, took time.Duration) BaseEvent {
	return newEvent(TypeQuestionAnswered, map[string]interface{}{
		"user_id":     userID,
		"trained":     trained,
		"sources":     sources,
		"duration_ms": took.Milliseconds(),
	})
}
