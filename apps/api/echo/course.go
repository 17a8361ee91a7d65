package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core/course"
)

type courseApi struct {
	deps ServerDeps
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, a auth, deps ServerDeps) {
	api := courseApi{deps: deps}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, teacherMiddleware())

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("/enroll", api.enroll)
	dg.GET("/materials", api.queryMaterials)
	dg.POST("/materials", api.addMaterial)
}

func courseID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.deps.CourseSvc.Create(data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	crss, err := api.deps.CourseSvc.QueryAll()
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, crss)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := courseID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.deps.CourseSvc.GetByID(id)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

// enroll adds the calling user to the course as a student. A teacher or
// admin may enroll someone else by providing user_id and role.
func (api *courseApi) enroll(ctx echo.Context) error {
	id, err := courseID(ctx)
	if err != nil {
		return err
	}

	var data course.NewEnrollment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	data.CourseID = id

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if data.UserID == 0 {
		data.UserID = usr.ID
	}
	if data.UserID != usr.ID && !(usr.IsTeacher() || usr.IsAdmin()) {
		return errHttpForbidden
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	enr, err := api.deps.CourseSvc.Enroll(data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *courseApi) queryMaterials(ctx echo.Context) error {
	id, err := courseID(ctx)
	if err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	role, err := api.deps.CourseSvc.Resolve(usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "resolving membership")
	}
	if role == course.RoleNone {
		return errHttpForbidden
	}

	mats, err := api.deps.CourseSvc.Materials(id)
	if err != nil {
		return errors.Wrap(err, "querying materials")
	}
	return ctx.JSON(http.StatusOK, mats)
}

func (api *courseApi) addMaterial(ctx echo.Context) error {
	id, err := courseID(ctx)
	if err != nil {
		return err
	}

	var data course.NewMaterial
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMaterial")
	}
	data.CourseID = id
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	role, err := api.deps.CourseSvc.Resolve(usr.ID, id)
	if err != nil {
		return errors.Wrap(err, "resolving membership")
	}
	if role != course.RoleTeacherOrOwner {
		return errHttpForbidden
	}

	mat, err := api.deps.CourseSvc.AddMaterial(data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "adding material")
	}
	return ctx.JSON(http.StatusCreated, mat)
}
