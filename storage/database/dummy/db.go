// Package dummydb is an in-memory store for tests. The repositories ignore
// the optional executor arguments, so the services' transactional paths run
// unchanged against it.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/maktab-io/maktab/core"
	"github.com/maktab-io/maktab/core/announcement"
	"github.com/maktab-io/maktab/core/assignment"
	"github.com/maktab-io/maktab/core/attendance"
	"github.com/maktab-io/maktab/core/class"
	"github.com/maktab-io/maktab/core/payment"
	"github.com/maktab-io/maktab/core/student"
	"github.com/maktab-io/maktab/core/teacher"
	"github.com/maktab-io/maktab/core/user"
)

type (
	DB struct {
		txMu sync.Mutex // serializes transactions

		student      *studentTable
		teacher      *teacherTable
		class        *classTable
		assignment   *assignmentTable
		attendance   *attendanceTable
		payment      *paymentTable
		announcement *announcementTable
		user         *userTable
	}

	studentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*student.Student
	}
	teacherTable struct {
		sync.RWMutex
		seq   int
		table map[int]*teacher.Teacher
	}
	classTable struct {
		sync.RWMutex
		seq   int
		table map[int]*class.Class
	}
	assignmentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*assignment.Assignment
	}
	attendanceTable struct {
		sync.RWMutex
		seq   int
		table map[int]*attendance.Attendance
	}
	paymentTable struct {
		sync.RWMutex
		seq   int
		table map[int]*payment.Payment
	}
	announcementTable struct {
		sync.RWMutex
		seq   int
		table map[int]*announcement.Announcement
	}
	userTable struct {
		sync.RWMutex
		seq   int
		table map[int]*user.User
	}
)

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	db := &DB{
		student:      &studentTable{table: make(map[int]*student.Student)},
		teacher:      &teacherTable{table: make(map[int]*teacher.Teacher)},
		class:        &classTable{table: make(map[int]*class.Class)},
		assignment:   &assignmentTable{table: make(map[int]*assignment.Assignment)},
		attendance:   &attendanceTable{table: make(map[int]*attendance.Attendance)},
		payment:      &paymentTable{table: make(map[int]*payment.Payment)},
		announcement: &announcementTable{table: make(map[int]*announcement.Announcement)},
		user:         &userTable{table: make(map[int]*user.User)},
	}
	return db, nil
}

// Begin serializes "transactions" on a single mutex. The store has no
// rollback; tests that need failure paths inject erroring repositories.
func (db *DB) Begin(context.Context) (core.DBTransactor, error) {
	db.txMu.Lock()
	return &dummyTx{db: db}, nil
}

type dummyTx struct {
	db   *DB
	once sync.Once
}

var _ core.DBTransactor = (*dummyTx)(nil)

func (tx *dummyTx) end() {
	tx.once.Do(tx.db.txMu.Unlock)
}

func (tx *dummyTx) Commit() error {
	tx.end()
	return nil
}

func (tx *dummyTx) Rollback() error {
	tx.end()
	return nil
}

// The repositories never run SQL against the dummy store; the methods below
// exist only to satisfy core.DBExecutor.

var errNoSQL = errors.New("dummydb does not execute SQL")

func (tx *dummyTx) DriverName() string { return "dummy" }
func (tx *dummyTx) Rebind(q string) string {
	return q
}
func (tx *dummyTx) BindNamed(q string, arg interface{}) (string, []interface{}, error) {
	return q, nil, errNoSQL
}
func (tx *dummyTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (tx *dummyTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, errNoSQL
}
func (tx *dummyTx) QueryxContext(context.Context, string, ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (tx *dummyTx) QueryRowxContext(context.Context, string, ...interface{}) *sqlx.Row {
	return nil
}
func (tx *dummyTx) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}
func (tx *dummyTx) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return errNoSQL
}
