package inmemdb

import (
	"sort"

	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.coursePK++
	crs.ID = repo.db.coursePK
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(id int) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	crss := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		crss = append(crss, *crs)
	}
	sort.Slice(crss, func(i, j int) bool { return crss[i].ID < crss[j].ID })
	return crss, nil
}

func (repo *courseRepository) CreateEnrollment(enr course.Enrollment) (course.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.enrollmentPK++
	enr.ID = repo.db.enrollmentPK
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(userID, courseID int) (course.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.UserID == userID && enr.CourseID == courseID {
			return *enr, nil
		}
	}
	return course.Enrollment{}, course.ErrEnrollmentNotFound
}

func (repo *courseRepository) CreateMaterial(mat course.Material) (course.Material, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.materialPK++
	mat.ID = repo.db.materialPK
	repo.db.materials[mat.ID] = &mat
	return mat, nil
}

func (repo *courseRepository) QueryMaterials(courseID int) ([]course.Material, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var mats []course.Material
	for _, mat := range repo.db.materials {
		if mat.CourseID == courseID {
			mats = append(mats, *mat)
		}
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].ID < mats[j].ID })
	return mats, nil
}

func (repo *courseRepository) QueryCourseStudents(courseID int) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var usrs []user.User
	for _, enr := range repo.db.enrollments {
		if enr.CourseID != courseID || enr.Role != course.EnrollStudent {
			continue
		}
		if usr, ok := repo.db.users[enr.UserID]; ok {
			usrs = append(usrs, *usr)
		}
	}
	sort.Slice(usrs, func(i, j int) bool { return usrs[i].ID < usrs[j].ID })
	return usrs, nil
}
