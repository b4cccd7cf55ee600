package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/announcement"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/attendance"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/payment"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/user"
	"github.com/maktab-io/maktab/core/validation"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		DisableReqLogs bool

		StudentSvc      student.Service
		TeacherSvc      teacher.Service
		ClassSvc        class.Service
		AssignmentSvc   assignment.Service
		AttendanceSvc   attendance.Service
		PaymentSvc      payment.Service
		AnnouncementSvc announcement.Service
		ValidationSvc   validation.Service
		UserSvc         user.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
		// Shutdown signals a fatal internal error; main selects on it to
		// trigger a graceful stop.
		Shutdown() <-chan struct{}
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerUserAPI(v1, jwt, conf, s.opts.UserSvc)
	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerTeacherAPI(v1, jwt, s.opts.TeacherSvc)
	registerClassAPI(v1, jwt, s.opts.ClassSvc)
	registerAssignmentAPI(v1, jwt, s.opts.AssignmentSvc)
	registerAttendanceAPI(v1, jwt, s.opts.AttendanceSvc)
	registerPaymentAPI(v1, jwt, s.opts.PaymentSvc)
	registerAnnouncementAPI(v1, jwt, s.opts.AnnouncementSvc)
	registerValidationAPI(v1, jwt, s.opts.ValidationSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Conf.Server.Address()))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Shutdown() <-chan struct{} { return s.shutdown }

func (s *server) signalShutdown() {
	select {
	case s.shutdown <- struct{}{}:
	default:
	}
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Maktab API!")
}
