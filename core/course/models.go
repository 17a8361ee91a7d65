package course

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/darasa-app/darasa/core"
)

// Enrollment roles
const (
	EnrollStudent = "STUDENT"
	EnrollTeacher = "TEACHER"
)

// MemberRole is a user's resolved privilege level on a course.
type MemberRole int

const (
	RoleNone MemberRole = iota
	RoleStudent
	RoleTeacherOrOwner
)

func (r MemberRole) String() string {
	switch r {
	case RoleStudent:
		return "STUDENT"
	case RoleTeacherOrOwner:
		return "TEACHER_OR_OWNER"
	}
	return "NONE"
}

type Course struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Capacity    *int       `json:"capacity"`
	CreatedBy   int        `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"` // UTC
}

type Enrollment struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CourseID  int       `json:"course_id"`
	Role      string    `json:"role"` // STUDENT | TEACHER
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Material struct {
	ID          int       `json:"id"`
	CourseID    int       `json:"course_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	HasFile     bool      `json:"has_file"`
	CreatedBy   int       `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Capacity    *int       `json:"capacity" validate:"omitempty,min=1"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// NewEnrollment contains information needed to enroll a user on a Course.
type NewEnrollment struct {
	UserID   int    `json:"user_id" validate:"required"`
	CourseID int    `json:"-"`
	Role     string `json:"role" validate:"omitempty,oneof=STUDENT TEACHER"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.Role = strings.ToUpper(core.CleanString(ne.Role))
	if ne.Role == "" {
		ne.Role = EnrollStudent
	}
	return validate.Struct(ne)
}

// NewMaterial contains information needed to attach a Material to a Course.
type NewMaterial struct {
	CourseID    int    `json:"-"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"omitempty,url"`
	HasFile     bool   `json:"has_file"`
}

func (nm *NewMaterial) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	nm.URL = core.CleanString(nm.URL)
	return validate.Struct(nm)
}
