package chat

import (
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
)

var (
	ErrEmptyMessage = errors.New("message text cannot be empty")
)

// Message is one persisted line of course chat.
type Message struct {
	ID        int       `json:"id"`
	CourseID  int       `json:"course_id"`
	UserID    int       `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type (
	Repository interface {
		CreateMessage(msg Message) (Message, error)
		// RecentMessages returns at most limit messages, newest first.
		RecentMessages(courseID, limit int) ([]Message, error)
		// ClearMessages deletes all messages for the course and reports how many.
		ClearMessages(courseID int) (int64, error)
	}

	// Service is the durable message store for course chat.
	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Append persists a chat line. Text is trimmed first; an all-whitespace
// message fails validation rather than being stored.
func (svc *Service) Append(courseID, userID int, text string) (Message, error) {
	text = core.CleanString(text)
	if text == "" {
		return Message{}, core.NewValidationError(ErrEmptyMessage,
			core.FieldError{Field: "text", Error: ErrEmptyMessage.Error()})
	}
	return svc.repo.CreateMessage(Message{
		CourseID:  courseID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	})
}

// Recent returns the latest limit messages in chronological order
// (oldest first), ready for history replay.
func (svc *Service) Recent(courseID, limit int) ([]Message, error) {
	msgs, err := svc.repo.RecentMessages(courseID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Clear wipes the course's history. Clearing an empty course is fine
// and reports 0 deleted.
func (svc *Service) Clear(courseID int) (int64, error) {
	return svc.repo.ClearMessages(courseID)
}
