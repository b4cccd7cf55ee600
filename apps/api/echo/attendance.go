package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/attendance"
)

type attendanceApi struct {
	svc attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.POST("", api.mark)
	ag.POST("/bulk", api.bulkMark)
	ag.DELETE("/classes/:id", api.clearClassDay, adminMiddleware())
	ag.DELETE("/students/:id", api.clearStudentDay, adminMiddleware())
	ag.GET("/students/:id/day", api.studentDay)
	ag.GET("/students/:id/month", api.studentMonth)
}

func (api *attendanceApi) mark(ctx echo.Context) error {
	var data attendance.Mark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Mark")
	}
	rec, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) bulkMark(ctx echo.Context) error {
	var data attendance.BulkMark
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkMark")
	}
	res, err := api.svc.BulkMark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "bulk marking attendance")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *attendanceApi) clearClassDay(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	day, err := dateQuery(ctx, "date")
	if err != nil {
		return err
	}
	cleared, err := api.svc.ClearClassDay(ctx.Request().Context(), id, day)
	if err != nil {
		return errors.Wrap(err, "clearing class attendance")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"cleared": cleared})
}

func (api *attendanceApi) clearStudentDay(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	day, err := dateQuery(ctx, "date")
	if err != nil {
		return err
	}
	if err := api.svc.ClearStudentDay(ctx.Request().Context(), id, day); err != nil {
		return errors.Wrap(err, "clearing student attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) studentDay(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	day, err := dateQueryDefault(ctx, "date", time.Now())
	if err != nil {
		return err
	}
	rec, err := api.svc.StudentDay(ctx.Request().Context(), id, day)
	if err != nil {
		return errors.Wrap(err, "getting attendance day")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) studentMonth(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	year := intQuery(ctx, "year")
	month := intQuery(ctx, "month")
	if year == 0 || month < 1 || month > 12 {
		return core.NewValidationError(nil,
			core.FieldError{Field: "year", Error: "valid year and month are required"},
		)
	}
	stats, err := api.svc.StudentMonth(ctx.Request().Context(), id, year, time.Month(month))
	if err != nil {
		return errors.Wrap(err, "getting attendance month")
	}
	return ctx.JSON(http.StatusOK, stats)
}
