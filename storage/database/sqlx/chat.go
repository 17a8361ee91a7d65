package sqlxrepos

import (
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core/chat"
)

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *sqlx.DB) *chatRepository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) CreateMessage(msg chat.Message) (chat.Message, error) {
	err := repo.db.QueryRow(
		`INSERT INTO chat_message (course_id, user_id, text, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		msg.CourseID, msg.UserID, msg.Text, msg.CreatedAt,
	).Scan(&msg.ID)
	if err != nil {
		return chat.Message{}, errors.Wrap(err, "creating chat message")
	}
	return msg, nil
}

func (repo *chatRepository) RecentMessages(courseID, limit int) ([]chat.Message, error) {
	rows, err := repo.db.Queryx(
		`SELECT id, course_id, user_id, text, created_at FROM chat_message
		 WHERE course_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`, courseID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying chat messages")
	}
	defer func() { _ = rows.Close() }()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err = rows.Scan(&msg.ID, &msg.CourseID, &msg.UserID, &msg.Text, &msg.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning chat message")
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (repo *chatRepository) ClearMessages(courseID int) (int64, error) {
	res, err := repo.db.Exec(`DELETE FROM chat_message WHERE course_id = $1`, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "clearing chat messages")
	}
	return res.RowsAffected()
}
