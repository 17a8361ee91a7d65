package chat_test

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core/chat"
	logsvc "github.com/darasa-app/darasa/services/logger"
)

func testLogger() *logsvc.StdLogger {
	return logsvc.NewStdLogger(log.New(ioutil.Discard, "", 0))
}

// testSub records every delivered payload.
type testSub struct {
	mu       sync.Mutex
	received [][]byte
}

func (s *testSub) Deliver(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.received = append(s.received, data)
}

func (s *testSub) payloads() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.received))
	copy(out, s.received)
	return out
}

func Test_Broker_targetsGroup(t *testing.T) {
	broker := chat.NewBroker(testLogger())
	maths := &testSub{}
	arts := &testSub{}
	broker.Join(chat.GroupName(1), maths)
	broker.Join(chat.GroupName(2), arts)

	err := broker.Broadcast(chat.GroupName(1), map[string]string{"event": "message", "text": "hi"})
	require.NoError(t, err)

	assert.Len(t, maths.payloads(), 1)
	assert.Empty(t, arts.payloads(), "subscribers of other groups must not receive the event")

	var got map[string]string
	require.NoError(t, json.Unmarshal(maths.payloads()[0], &got))
	assert.Equal(t, "hi", got["text"])
}

func Test_Broker_fanOut(t *testing.T) {
	broker := chat.NewBroker(testLogger())
	group := chat.GroupName(7)
	subs := make([]*testSub, 5)
	for i := range subs {
		subs[i] = &testSub{}
		broker.Join(group, subs[i])
	}
	assert.Equal(t, 5, broker.Count(group))

	require.NoError(t, broker.Broadcast(group, map[string]int{"n": 1}))
	for i, sub := range subs {
		assert.Len(t, sub.payloads(), 1, "subscriber %d", i)
	}
}

func Test_Broker_ordering(t *testing.T) {
	broker := chat.NewBroker(testLogger())
	group := chat.GroupName(3)
	sub := &testSub{}
	broker.Join(group, sub)

	for i := 0; i < 10; i++ {
		require.NoError(t, broker.Broadcast(group, map[string]int{"seq": i}))
	}

	got := sub.payloads()
	require.Len(t, got, 10)
	for i, data := range got {
		var ev map[string]int
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, i, ev["seq"], "events from one producer must arrive in order")
	}
}

func Test_Broker_leave(t *testing.T) {
	broker := chat.NewBroker(testLogger())
	group := chat.GroupName(1)
	sub := &testSub{}

	// leaving a group that was never joined is a no-op
	broker.Leave(group, sub)
	assert.Equal(t, 0, broker.Count(group))

	broker.Join(group, sub)
	require.NoError(t, broker.Broadcast(group, "a"))
	broker.Leave(group, sub)
	require.NoError(t, broker.Broadcast(group, "b"))

	assert.Len(t, sub.payloads(), 1, "no delivery after leaving")
	assert.Equal(t, 0, broker.Count(group))
}

func Test_Broker_concurrentJoinBroadcast(t *testing.T) {
	broker := chat.NewBroker(testLogger())
	group := chat.GroupName(9)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			sub := &testSub{}
			broker.Join(group, sub)
			broker.Leave(group, sub)
		}(i)
		go func(i int) {
			defer wg.Done()
			_ = broker.Broadcast(group, fmt.Sprintf("event-%d", i))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, broker.Count(group))
}
