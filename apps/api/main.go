package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/maktab-io/maktab/apps/api/echo"
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
	"github.com/maktab-io/maktab/services/email"
	"github.com/maktab-io/maktab/services/logger"
	"github.com/maktab-io/maktab/storage/database"
	"github.com/maktab-io/maktab/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	var appLogger core.Logger
	if conf.Debug || conf.RollbarToken == "" {
		appLogger = logsvc.NewStdLogger(std)
	} else {
		appLogger = logsvc.NewRollbarLogger(std, conf)
	}
	appLogger.Enable(true)

	if err := run(conf, std, appLogger); err != nil {
		appLogger.Fatal("api startup failed", err)
	}
}

func run(conf *core.Config, std *log.Logger, appLogger core.Logger) error {
	core.InitValidators()

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		return err
	}
	defer db.Close()

	// set up repos
	studentRepo := sqlxrepos.NewStudentRepository(db)
	teacherRepo := sqlxrepos.NewTeacherRepository(db)
	classRepo := sqlxrepos.NewClassRepository(db)
	assignmentRepo := sqlxrepos.NewAssignmentRepository(db)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(db)
	paymentRepo := sqlxrepos.NewPaymentRepository(db)
	announcementRepo := sqlxrepos.NewAnnouncementRepository(db)
	userRepo := sqlxrepos.NewUserRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}

	checkSvc := validation.NewService(
		studentRepo, teacherRepo, classRepo, assignmentRepo,
		attendanceRepo, paymentRepo, appLogger,
	)
	studentSvc := student.NewService(db, studentRepo, checkSvc,
		attendanceRepo, paymentRepo, assignmentRepo)
	teacherSvc := teacher.NewService(teacherRepo, checkSvc)
	classSvc := class.NewService(classRepo, teacherRepo, class.NewPointerRoster(studentRepo), checkSvc)
	assignmentSvc := assignment.NewService(db, assignmentRepo, studentRepo, classRepo, teacherRepo,
		attendanceRepo, appLogger, conf)
	attendanceSvc := attendance.NewService(db, attendanceRepo, studentRepo, classRepo, assignmentSvc)
	paymentSvc := payment.NewService(paymentRepo, studentRepo)
	userSvc := user.NewService(userRepo)
	announcementSvc := announcement.NewService(announcementRepo, teacherRepo, userSvc, mailSvc)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Conf:            conf,
			Logger:          appLogger,
			StudentSvc:      studentSvc,
			TeacherSvc:      teacherSvc,
			ClassSvc:        classSvc,
			AssignmentSvc:   assignmentSvc,
			AttendanceSvc:   attendanceSvc,
			PaymentSvc:      paymentSvc,
			AnnouncementSvc: announcementSvc,
			ValidationSvc:   checkSvc,
			UserSvc:         userSvc,
		},
	)
	go app.Start()

	// block until an OS signal or a fatal internal error asks us to stop
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-quit:
		std.Printf("caught %v, shutting down", sig)
	case <-app.Shutdown():
		std.Print("internal shutdown signal, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	return app.Stop(ctx)
}
