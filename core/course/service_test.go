package course_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
	inmemdb "github.com/darasa-app/darasa/storage/database/inmem"
)

// recordingObserver counts notifications instead of fanning them out.
type recordingObserver struct {
	enrollments []course.Enrollment
	materials   []course.Material
}

func (o *recordingObserver) EnrollmentCreated(_ course.Course, enr course.Enrollment) {
	o.enrollments = append(o.enrollments, enr)
}

func (o *recordingObserver) MaterialCreated(_ course.Course, mat course.Material) {
	o.materials = append(o.materials, mat)
}

type courseEnv struct {
	svc      *course.Service
	usrRepo  user.Repository
	observer *recordingObserver

	owner   user.User
	student user.User
}

func newCourseEnv(t *testing.T) *courseEnv {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	env := &courseEnv{
		usrRepo:  inmemdb.NewUserRepository(db),
		observer: &recordingObserver{},
	}
	env.svc = course.NewService(inmemdb.NewCourseRepository(db), env.observer)

	env.owner, err = env.usrRepo.CreateUser(user.User{
		Name: "Owner", Username: "owner", Email: "owner@test.cd", IsActive: true,
		Roles: []string{user.RoleTeacher},
	})
	require.NoError(t, err)
	env.student, err = env.usrRepo.CreateUser(user.User{
		Name: "Student", Username: "student", Email: "student@test.cd", IsActive: true,
		Roles: []string{user.RoleStudent},
	})
	require.NoError(t, err)
	return env
}

func (env *courseEnv) createCourse(t *testing.T, title string) course.Course {
	crs, err := env.svc.Create(course.NewCourse{Title: title}, env.owner.ID)
	require.NoError(t, err)
	return crs
}

func Test_courseService_Create(t *testing.T) {
	env := newCourseEnv(t)

	crs := env.createCourse(t, "Physics")
	assert.NotZero(t, crs.ID)
	assert.Equal(t, "Physics", crs.Title)
	assert.Equal(t, env.owner.ID, crs.CreatedBy)
	assert.False(t, crs.CreatedAt.IsZero())

	got, err := env.svc.GetByID(crs.ID)
	require.NoError(t, err)
	assert.Equal(t, crs, got)

	_, err = env.svc.GetByID(999)
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))

	all, err := env.svc.QueryAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func Test_courseService_Enroll(t *testing.T) {
	env := newCourseEnv(t)
	crs := env.createCourse(t, "History")

	enr, err := env.svc.Enroll(course.NewEnrollment{
		UserID: env.student.ID, CourseID: crs.ID, Role: course.EnrollStudent,
	})
	require.NoError(t, err)
	assert.NotZero(t, enr.ID)
	assert.Equal(t, course.EnrollStudent, enr.Role)
	require.Len(t, env.observer.enrollments, 1, "observer fires once the row exists")
	assert.Equal(t, enr.ID, env.observer.enrollments[0].ID)

	// same user, same course: rejected and not re-notified
	_, err = env.svc.Enroll(course.NewEnrollment{
		UserID: env.student.ID, CourseID: crs.ID, Role: course.EnrollStudent,
	})
	require.Error(t, err)
	_, ok := errors.Cause(err).(*core.ValidationError)
	assert.True(t, ok, "duplicate enrollment fails validation: %v", err)
	assert.Len(t, env.observer.enrollments, 1)

	// unknown course
	_, err = env.svc.Enroll(course.NewEnrollment{UserID: env.student.ID, CourseID: 999})
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))
}

func Test_courseService_AddMaterial(t *testing.T) {
	env := newCourseEnv(t)
	crs := env.createCourse(t, "Chemistry")

	mat, err := env.svc.AddMaterial(course.NewMaterial{
		CourseID: crs.ID,
		Title:    "Lab safety",
		URL:      "https://files.test.cd/safety.pdf",
	}, env.owner.ID)
	require.NoError(t, err)
	assert.NotZero(t, mat.ID)
	assert.Equal(t, env.owner.ID, mat.CreatedBy)
	require.Len(t, env.observer.materials, 1)
	assert.Equal(t, mat.ID, env.observer.materials[0].ID)

	mats, err := env.svc.Materials(crs.ID)
	require.NoError(t, err)
	assert.Len(t, mats, 1)

	_, err = env.svc.AddMaterial(course.NewMaterial{CourseID: 999, Title: "Lost"}, env.owner.ID)
	assert.Equal(t, course.ErrNotFound, errors.Cause(err))
	assert.Len(t, env.observer.materials, 1)
}

func Test_courseService_Students(t *testing.T) {
	env := newCourseEnv(t)
	crs := env.createCourse(t, "Geography")

	helper, err := env.usrRepo.CreateUser(user.User{
		Name: "Helper", Username: "helper", Email: "helper@test.cd", IsActive: true,
		Roles: []string{user.RoleTeacher},
	})
	require.NoError(t, err)

	_, err = env.svc.Enroll(course.NewEnrollment{UserID: env.student.ID, CourseID: crs.ID, Role: course.EnrollStudent})
	require.NoError(t, err)
	_, err = env.svc.Enroll(course.NewEnrollment{UserID: helper.ID, CourseID: crs.ID, Role: course.EnrollTeacher})
	require.NoError(t, err)

	students, err := env.svc.Students(crs.ID)
	require.NoError(t, err)
	require.Len(t, students, 1, "staff enrollments are not students")
	assert.Equal(t, env.student.ID, students[0].ID)
}

func Test_courseService_Resolve(t *testing.T) {
	env := newCourseEnv(t)
	crs := env.createCourse(t, "Music")

	helper, err := env.usrRepo.CreateUser(user.User{
		Name: "Helper", Username: "helper2", Email: "helper2@test.cd", IsActive: true,
		Roles: []string{user.RoleTeacher},
	})
	require.NoError(t, err)
	stranger, err := env.usrRepo.CreateUser(user.User{
		Name: "Stranger", Username: "stranger", Email: "stranger@test.cd", IsActive: true,
		Roles: []string{user.RoleStudent},
	})
	require.NoError(t, err)

	_, err = env.svc.Enroll(course.NewEnrollment{UserID: env.student.ID, CourseID: crs.ID, Role: course.EnrollStudent})
	require.NoError(t, err)
	_, err = env.svc.Enroll(course.NewEnrollment{UserID: helper.ID, CourseID: crs.ID, Role: course.EnrollTeacher})
	require.NoError(t, err)

	tests := []struct {
		name     string
		userID   int
		courseID int
		want     course.MemberRole
	}{
		{"owner", env.owner.ID, crs.ID, course.RoleTeacherOrOwner},
		{"teacher enrollment", helper.ID, crs.ID, course.RoleTeacherOrOwner},
		{"student enrollment", env.student.ID, crs.ID, course.RoleStudent},
		{"no relationship", stranger.ID, crs.ID, course.RoleNone},
		{"unknown course", env.owner.ID, 999, course.RoleNone},
		{"unknown user", 999, crs.ID, course.RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := env.svc.Resolve(tt.userID, tt.courseID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, role)
		})
	}
}
