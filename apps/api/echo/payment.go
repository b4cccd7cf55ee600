package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core/payment"
)

type paymentApi struct {
	svc payment.Service
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc payment.Service) {
	api := paymentApi{svc: svc}

	pg := g.Group("/payments", jwt)
	pg.GET("/:id", api.retrieve)

	// admin endpoints
	pg.POST("", api.create, adminMiddleware())
	pg.POST("/:id/paid", api.markPaid, adminMiddleware())
	pg.POST("/sweep-overdue", api.sweepOverdue, adminMiddleware())

	g.GET("/students/:id/payments", api.studentSummary, jwt)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	pmt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	pmt, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding payment by ID")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) markPaid(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	when, err := dateQueryDefault(ctx, "date", time.Now())
	if err != nil {
		return err
	}
	pmt, err := api.svc.MarkPaid(ctx.Request().Context(), id, when)
	if err != nil {
		return errors.Wrap(err, "marking payment paid")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) sweepOverdue(ctx echo.Context) error {
	flipped, err := api.svc.SweepOverdue(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "sweeping overdue payments")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"marked_overdue": flipped})
}

func (api *paymentApi) studentSummary(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	summary, err := api.svc.StudentSummary(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting payment summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}
