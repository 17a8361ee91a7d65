package course

import (
	"time"

	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/user"
)

var (
	ErrNotFound           = errors.New("course not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("user is already enrolled on this course")
)

type (
	Repository interface {
		CreateCourse(crs Course) (Course, error)
		GetCourseByID(id int) (Course, error)
		QueryAllCourses() ([]Course, error)
		CreateEnrollment(enr Enrollment) (Enrollment, error)
		GetEnrollment(userID, courseID int) (Enrollment, error)
		CreateMaterial(mat Material) (Material, error)
		QueryMaterials(courseID int) ([]Material, error)
		// QueryCourseStudents returns users holding a STUDENT enrollment on the course.
		QueryCourseStudents(courseID int) ([]user.User, error)
	}

	// Observer is notified after an enrollment or material row has been
	// durably created. Implementations must not fail the triggering write.
	Observer interface {
		EnrollmentCreated(crs Course, enr Enrollment)
		MaterialCreated(crs Course, mat Material)
	}

	Service struct {
		repo     Repository
		observer Observer
	}
)

func NewService(repo Repository, observer Observer) *Service {
	return &Service{repo: repo, observer: observer}
}

func (svc *Service) Create(nc NewCourse, createdBy int) (Course, error) {
	crs := Course{
		Title:       nc.Title,
		Description: nc.Description,
		StartDate:   nc.StartDate,
		EndDate:     nc.EndDate,
		Capacity:    nc.Capacity,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateCourse(crs)
}

func (svc *Service) GetByID(id int) (Course, error) {
	return svc.repo.GetCourseByID(id)
}

func (svc *Service) QueryAll() ([]Course, error) {
	return svc.repo.QueryAllCourses()
}

// Enroll creates an (user, course) enrollment and notifies the observer
// once the row exists. Enrolling twice on the same course fails validation.
func (svc *Service) Enroll(ne NewEnrollment) (Enrollment, error) {
	crs, err := svc.repo.GetCourseByID(ne.CourseID)
	if err != nil {
		return Enrollment{}, err
	}

	if _, err = svc.repo.GetEnrollment(ne.UserID, ne.CourseID); err == nil {
		return Enrollment{}, core.NewValidationError(ErrAlreadyEnrolled,
			core.FieldError{Field: "user_id", Error: ErrAlreadyEnrolled.Error()})
	} else if errors.Cause(err) != ErrEnrollmentNotFound {
		return Enrollment{}, err
	}

	enr, err := svc.repo.CreateEnrollment(Enrollment{
		UserID:    ne.UserID,
		CourseID:  ne.CourseID,
		Role:      ne.Role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Enrollment{}, err
	}

	if svc.observer != nil {
		svc.observer.EnrollmentCreated(crs, enr)
	}
	return enr, nil
}

// AddMaterial attaches a material to a course and notifies the observer
// once the row exists.
func (svc *Service) AddMaterial(nm NewMaterial, createdBy int) (Material, error) {
	crs, err := svc.repo.GetCourseByID(nm.CourseID)
	if err != nil {
		return Material{}, err
	}

	mat, err := svc.repo.CreateMaterial(Material{
		CourseID:    nm.CourseID,
		Title:       nm.Title,
		Description: nm.Description,
		URL:         nm.URL,
		HasFile:     nm.HasFile,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return Material{}, err
	}

	if svc.observer != nil {
		svc.observer.MaterialCreated(crs, mat)
	}
	return mat, nil
}

func (svc *Service) Materials(courseID int) ([]Material, error) {
	return svc.repo.QueryMaterials(courseID)
}

func (svc *Service) Students(courseID int) ([]user.User, error) {
	return svc.repo.QueryCourseStudents(courseID)
}

// Resolve answers what a user may do on a course. The repository is hit on
// every call; membership may change between checks.
func (svc *Service) Resolve(userID, courseID int) (MemberRole, error) {
	crs, err := svc.repo.GetCourseByID(courseID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return RoleNone, nil
		}
		return RoleNone, err
	}
	if crs.CreatedBy == userID {
		return RoleTeacherOrOwner, nil
	}

	enr, err := svc.repo.GetEnrollment(userID, courseID)
	if err != nil {
		if errors.Cause(err) == ErrEnrollmentNotFound {
			return RoleNone, nil
		}
		return RoleNone, err
	}
	if enr.Role == EnrollTeacher {
		return RoleTeacherOrOwner, nil
	}
	return RoleStudent, nil
}
