package chat_test

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/chat"
	inmemdb "github.com/darasa-app/darasa/storage/database/inmem"
)

func newChatService(t *testing.T) *chat.Service {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return chat.NewService(inmemdb.NewChatRepository(db))
}

func Test_chatService_Append(t *testing.T) {
	svc := newChatService(t)

	msg, err := svc.Append(1, 10, "  hello  ")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.Equal(t, "hello", msg.Text, "text is trimmed before storage")
	assert.Equal(t, 1, msg.CourseID)
	assert.Equal(t, 10, msg.UserID)
	assert.False(t, msg.CreatedAt.IsZero())

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err = svc.Append(1, 10, text)
		require.Error(t, err)
		_, ok := errors.Cause(err).(*core.ValidationError)
		assert.True(t, ok, "whitespace-only text fails validation: %v", err)
	}

	msgs, err := svc.Recent(1, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1, "rejected messages are not stored")
}

func Test_chatService_Recent(t *testing.T) {
	svc := newChatService(t)

	for i := 1; i <= 5; i++ {
		_, err := svc.Append(1, 10, fmt.Sprintf("line %d", i))
		require.NoError(t, err)
	}
	_, err := svc.Append(2, 10, "other course")
	require.NoError(t, err)

	// empty course
	msgs, err := svc.Recent(99, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// latest 3, replayed oldest first
	msgs, err = svc.Recent(1, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "line 3", msgs[0].Text)
	assert.Equal(t, "line 4", msgs[1].Text)
	assert.Equal(t, "line 5", msgs[2].Text)

	// limit above count returns everything, still chronological
	msgs, err = svc.Recent(1, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 5)
	assert.Equal(t, "line 1", msgs[0].Text)
	assert.Equal(t, "line 5", msgs[4].Text)
}

func Test_chatService_Clear(t *testing.T) {
	svc := newChatService(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Append(1, 10, "msg")
		require.NoError(t, err)
	}
	_, err := svc.Append(2, 10, "keep me")
	require.NoError(t, err)

	n, err := svc.Clear(1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	msgs, err := svc.Recent(1, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	// other courses are untouched
	msgs, err = svc.Recent(2, 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	// clearing an already empty course is fine
	n, err = svc.Clear(1)
	require.NoError(t, err)
	assert.Zero(t, n)
}
