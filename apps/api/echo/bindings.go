package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/maktab-io/maktab/core"
)

// intParam parses a path parameter as an integer id.
func intParam(ctx echo.Context, name string) (int, error) {
	val, err := strconv.Atoi(ctx.Param(name))
	if err != nil || val <= 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return val, nil
}

// dateQuery parses a required "2006-01-02" query parameter.
func dateQuery(ctx echo.Context, name string) (time.Time, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "this field is required"})
	}
	day, err := time.Parse(core.DayFormat, raw)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: name, Error: "invalid date, expected " + core.DayFormat})
	}
	return day, nil
}

// dateQueryDefault is dateQuery with a fallback for a missing parameter.
func dateQueryDefault(ctx echo.Context, name string, dflt time.Time) (time.Time, error) {
	if ctx.QueryParam(name) == "" {
		return dflt, nil
	}
	return dateQuery(ctx, name)
}

func intQuery(ctx echo.Context, name string) int {
	val, err := strconv.Atoi(ctx.QueryParam(name))
	if err != nil {
		return 0
	}
	return val
}

func boolQuery(ctx echo.Context, name string) *bool {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return nil
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &val
}
