package inmemdb

import (
	"sort"

	"github.com/darasa-app/darasa/core/chat"
)

type chatRepository struct {
	db *DB
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) CreateMessage(msg chat.Message) (chat.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.messagePK++
	msg.ID = repo.db.messagePK
	repo.db.messages[msg.ID] = &msg
	return msg, nil
}

func (repo *chatRepository) RecentMessages(courseID, limit int) ([]chat.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var msgs []chat.Message
	for _, msg := range repo.db.messages {
		if msg.CourseID == courseID {
			msgs = append(msgs, *msg)
		}
	}
	// newest first; ids break created_at ties
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].ID > msgs[j].ID
		}
		return msgs[i].CreatedAt.After(msgs[j].CreatedAt)
	})
	if limit >= 0 && len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (repo *chatRepository) ClearMessages(courseID int) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var deleted int64
	for id, msg := range repo.db.messages {
		if msg.CourseID == courseID {
			delete(repo.db.messages, id)
			deleted++
		}
	}
	return deleted, nil
}
