package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core/assignment"
)

type assignmentApi struct {
	svc assignment.Service
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc assignment.Service) {
	api := assignmentApi{svc: svc}

	ag := g.Group("/assignments", jwt)
	ag.POST("", api.assign, adminMiddleware())

	// registered on the shared /students prefix directly; a middleware-bearing
	// sub-group on /students/:id would shadow the student detail routes
	g.GET("/students/:id/class-history", api.history, jwt)
	g.GET("/students/:id/class-as-of", api.asOf, jwt)
}

func (api *assignmentApi) assign(ctx echo.Context) error {
	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	detail, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "assigning student to class")
	}
	return ctx.JSON(http.StatusCreated, detail)
}

func (api *assignmentApi) history(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	hist, err := api.svc.ClassHistory(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting class history")
	}
	return ctx.JSON(http.StatusOK, hist)
}

func (api *assignmentApi) asOf(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	day, err := dateQuery(ctx, "date")
	if err != nil {
		return err
	}
	asg, err := api.svc.AsOf(ctx.Request().Context(), id, day)
	if err != nil {
		return errors.Wrap(err, "resolving class as of date")
	}
	return ctx.JSON(http.StatusOK, asg)
}
