package chat

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
)

// Websocket close codes applied by the transport when a connection is
// rejected before joining.
const (
	CloseUnauthenticated = 4001 // no identity on the connection
	CloseUnauthorized    = 4003 // identity has no relationship to the course
)

var (
	ErrNotParticipant = errors.New("user is not a participant of this course")
	ErrNotJoined      = errors.New("session has not joined a course channel")
)

// Resolver answers membership checks. Satisfied by course.Service.
type Resolver interface {
	Resolve(userID, courseID int) (course.MemberRole, error)
}

// clientAction is the wire shape of everything a client may send.
type clientAction struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Session is one live client connection bound to exactly one course
// channel for its lifetime. It authorizes on Connect, decodes client
// actions, persists messages, and fans events back out via the broker.
// Privileged actions re-check membership; plain sends do not.
type Session struct {
	broker   *Broker
	msgSvc   *Service
	resolver Resolver
	logger   core.Logger

	usr      user.User
	courseID int
	group    string

	send      chan []byte
	joined    bool
	closeOnce sync.Once
	mu        sync.Mutex
}

var _ Subscriber = (*Session)(nil)

func NewSession(broker *Broker, msgSvc *Service, resolver Resolver, logger core.Logger, usr user.User, courseID, sendBuffer int) *Session {
	return &Session{
		broker:   broker,
		msgSvc:   msgSvc,
		resolver: resolver,
		logger:   logger,
		usr:      usr,
		courseID: courseID,
		group:    GroupName(courseID),
		send:     make(chan []byte, sendBuffer),
	}
}

// Connect authorizes the session and joins the course channel.
// ErrNotParticipant means the transport must close with CloseUnauthorized.
func (s *Session) Connect() error {
	role, err := s.resolver.Resolve(s.usr.ID, s.courseID)
	if err != nil {
		return errors.Wrap(err, "resolving membership")
	}
	if role == course.RoleNone {
		return ErrNotParticipant
	}

	s.mu.Lock()
	s.joined = true
	s.mu.Unlock()
	s.broker.Join(s.group, s)
	return nil
}

// HandleAction processes one raw client frame, in receipt order.
func (s *Session) HandleAction(data []byte) error {
	s.mu.Lock()
	joined := s.joined
	s.mu.Unlock()
	if !joined {
		return ErrNotJoined
	}

	var action clientAction
	if err := json.Unmarshal(data, &action); err != nil {
		// garbage frames are dropped, the session stays up
		s.logger.Debug(fmt.Sprintf("chat: dropping malformed frame from %s", s.usr.Username))
		return nil
	}

	if action.Action == "clear" {
		return s.clear()
	}
	return s.sendMessage(action.Message)
}

func (s *Session) sendMessage(text string) error {
	if core.CleanString(text) == "" {
		return nil // blank sends are silently ignored
	}

	msg, err := s.msgSvc.Append(s.courseID, s.usr.ID, text)
	if err != nil {
		// nothing was stored; nothing must be broadcast
		return errors.Wrap(err, "appending message")
	}
	return s.broker.Broadcast(s.group, NewMessageEvent(msg, s.usr.Username))
}

// clear re-checks privilege on every call; an unprivileged request is
// ignored without surfacing an error to the requester.
func (s *Session) clear() error {
	role, err := s.resolver.Resolve(s.usr.ID, s.courseID)
	if err != nil {
		return errors.Wrap(err, "resolving membership")
	}
	if role != course.RoleTeacherOrOwner {
		return nil
	}

	if _, err = s.msgSvc.Clear(s.courseID); err != nil {
		return errors.Wrap(err, "clearing messages")
	}
	return s.broker.Broadcast(s.group, NewClearedEvent(s.usr.Username))
}

// Deliver queues a broadcast payload for the transport write loop.
// It never blocks; a payload is dropped if the session cannot keep up.
func (s *Session) Deliver(data []byte) {
	select {
	case s.send <- data:
	default:
		s.logger.Warn(fmt.Sprintf("chat: send buffer full, dropping event for %s on %s", s.usr.Username, s.group))
	}
}

// Events is consumed by the transport write loop. The channel is closed
// once the session is closed.
func (s *Session) Events() <-chan []byte {
	return s.send
}

// Close leaves the course channel and ends delivery. Safe to call from
// any state and more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		joined := s.joined
		s.joined = false
		s.mu.Unlock()

		if joined {
			s.broker.Leave(s.group, s)
		}
		close(s.send)
	})
}
