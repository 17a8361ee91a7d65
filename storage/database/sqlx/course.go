package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core/course"
	"github.com/darasa-app/darasa/core/user"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(crs course.Course) (course.Course, error) {
	err := repo.db.QueryRow(
		`INSERT INTO course (title, description, start_date, end_date, capacity, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		crs.Title, crs.Description, crs.StartDate, crs.EndDate, crs.Capacity, crs.CreatedBy, crs.CreatedAt,
	).Scan(&crs.ID)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "creating course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(id int) (course.Course, error) {
	var crs course.Course
	err := repo.db.QueryRowx(
		`SELECT id, title, description, start_date, end_date, capacity, created_by, created_at
		 FROM course WHERE id = $1`, id,
	).Scan(&crs.ID, &crs.Title, &crs.Description, &crs.StartDate, &crs.EndDate, &crs.Capacity, &crs.CreatedBy, &crs.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	return crs, nil
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	rows, err := repo.db.Queryx(
		`SELECT id, title, description, start_date, end_date, capacity, created_by, created_at
		 FROM course ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	defer func() { _ = rows.Close() }()

	var crss []course.Course
	for rows.Next() {
		var crs course.Course
		if err = rows.Scan(&crs.ID, &crs.Title, &crs.Description, &crs.StartDate, &crs.EndDate,
			&crs.Capacity, &crs.CreatedBy, &crs.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning course")
		}
		crss = append(crss, crs)
	}
	return crss, rows.Err()
}

func (repo *courseRepository) CreateEnrollment(enr course.Enrollment) (course.Enrollment, error) {
	err := repo.db.QueryRow(
		`INSERT INTO enrollment (user_id, course_id, role, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		enr.UserID, enr.CourseID, enr.Role, enr.CreatedAt,
	).Scan(&enr.ID)
	if err != nil {
		return course.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) GetEnrollment(userID, courseID int) (course.Enrollment, error) {
	var enr course.Enrollment
	err := repo.db.QueryRowx(
		`SELECT id, user_id, course_id, role, created_at FROM enrollment
		 WHERE user_id = $1 AND course_id = $2`, userID, courseID,
	).Scan(&enr.ID, &enr.UserID, &enr.CourseID, &enr.Role, &enr.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return course.Enrollment{}, course.ErrEnrollmentNotFound
		}
		return course.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return enr, nil
}

func (repo *courseRepository) CreateMaterial(mat course.Material) (course.Material, error) {
	err := repo.db.QueryRow(
		`INSERT INTO material (course_id, title, description, url, has_file, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		mat.CourseID, mat.Title, mat.Description, mat.URL, mat.HasFile, mat.CreatedBy, mat.CreatedAt,
	).Scan(&mat.ID)
	if err != nil {
		return course.Material{}, errors.Wrap(err, "creating material")
	}
	return mat, nil
}

func (repo *courseRepository) QueryMaterials(courseID int) ([]course.Material, error) {
	rows, err := repo.db.Queryx(
		`SELECT id, course_id, title, description, url, has_file, created_by, created_at
		 FROM material WHERE course_id = $1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	defer func() { _ = rows.Close() }()

	var mats []course.Material
	for rows.Next() {
		var mat course.Material
		if err = rows.Scan(&mat.ID, &mat.CourseID, &mat.Title, &mat.Description, &mat.URL,
			&mat.HasFile, &mat.CreatedBy, &mat.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scanning material")
		}
		mats = append(mats, mat)
	}
	return mats, rows.Err()
}

func (repo *courseRepository) QueryCourseStudents(courseID int) ([]user.User, error) {
	var dus []dbUser
	err := repo.db.Select(&dus,
		`SELECT u.* FROM "user" u
		 JOIN enrollment e ON e.user_id = u.id
		 WHERE e.course_id = $1 AND e.role = $2
		 ORDER BY u.id`, courseID, course.EnrollStudent)
	if err != nil {
		return nil, errors.Wrap(err, "querying course students")
	}
	usrs := make([]user.User, len(dus))
	for i, du := range dus {
		usrs[i] = du.toUser()
	}
	return usrs, nil
}
