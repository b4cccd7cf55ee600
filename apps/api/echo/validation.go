package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/validation"
)

type validationApi struct {
	svc validation.Service
}

// registerValidationAPI exposes the pre-save and pre-delete checks so admin
// UIs can surface problems before committing a form.
func registerValidationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc validation.Service) {
	api := validationApi{svc: svc}

	vg := g.Group("/validation", jwt, adminMiddleware())
	vg.POST("/students", api.checkStudent)
	vg.POST("/teachers", api.checkTeacher)
	vg.GET("/deletion/:entity/:id", api.checkDeletion)
}

type (
	CheckStudentRequest struct {
		Code       string `json:"code"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		NationalID string `json:"national_id"`
		Phone      string `json:"phone"`
		ClassID    int    `json:"class_id"`
		// ExcludeID skips the record being edited in duplicate checks.
		ExcludeID int `json:"exclude_id"`
	}

	CheckTeacherRequest struct {
		Code       string `json:"code"`
		FirstName  string `json:"first_name"`
		LastName   string `json:"last_name"`
		NationalID string `json:"national_id"`
		Phone      string `json:"phone"`
		ExcludeID  int    `json:"exclude_id"`
	}
)

func (api *validationApi) checkStudent(ctx echo.Context) error {
	var data CheckStudentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckStudentRequest")
	}
	cand := validation.StudentCandidate{
		Code:       data.Code,
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		NationalID: data.NationalID,
		Phone:      data.Phone,
		ClassID:    data.ClassID,
	}
	res := api.svc.CheckStudent(ctx.Request().Context(), cand, data.ExcludeID)
	return ctx.JSON(http.StatusOK, res)
}

func (api *validationApi) checkTeacher(ctx echo.Context) error {
	var data CheckTeacherRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CheckTeacherRequest")
	}
	cand := validation.TeacherCandidate{
		Code:       data.Code,
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		NationalID: data.NationalID,
		Phone:      data.Phone,
	}
	res := api.svc.CheckTeacher(ctx.Request().Context(), cand, data.ExcludeID)
	return ctx.JSON(http.StatusOK, res)
}

func (api *validationApi) checkDeletion(ctx echo.Context) error {
	entity := validation.Entity(core.CleanString(ctx.Param("entity"), true /* lower */))
	switch entity {
	case validation.EntityStudent, validation.EntityTeacher, validation.EntityClass:
	default:
		return errHttpNotFound
	}
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	res := api.svc.ValidateDeletion(ctx.Request().Context(), entity, id)
	return ctx.JSON(http.StatusOK, res)
}
