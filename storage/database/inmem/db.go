package inmemdb

import (
	"sync"

	"github.com/darasa-app/darasa/core/chat"
	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
)

// DB is a process-local store used by tests and local development.
type DB struct {
	mutex sync.RWMutex

	userPK       int
	coursePK     int
	enrollmentPK int
	materialPK   int
	messagePK    int

	users       map[int]*user.User
	courses     map[int]*course.Course
	enrollments map[int]*course.Enrollment
	materials   map[int]*course.Material
	messages    map[int]*chat.Message
}

func Open() (*DB, error) {
	db := &DB{
		users:       make(map[int]*user.User),
		courses:     make(map[int]*course.Course),
		enrollments: make(map[int]*course.Enrollment),
		materials:   make(map[int]*course.Material),
		messages:    make(map[int]*chat.Message),
	}
	return db, nil
}
