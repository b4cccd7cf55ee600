package validation

import (
	"strings"

	"github.com/maktab-io/maktab/core"
)

// Result collects every violation found; checks never short-circuit so a
// caller can report all problems in one round trip.
type Result struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func okResult() Result {
	return Result{IsValid: true}
}

func (r *Result) addError(msg string) {
	r.IsValid = false
	r.Errors = append(r.Errors, msg)
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AsError converts a failed Result into a ValidationError.
func (r Result) AsError() error {
	if r.IsValid {
		return nil
	}
	flds := make([]core.FieldError, 0, len(r.Errors))
	for _, e := range r.Errors {
		flds = append(flds, core.FieldError{Field: "detail", Error: e})
	}
	return core.NewValidationError(errStrs(r.Errors), flds...)
}

// AsConflict converts a failed Result into a ConflictError (deletion guard).
func (r Result) AsConflict() error {
	if r.IsValid {
		return nil
	}
	return core.NewConflictError(errStrs(r.Errors).Error())
}

type errStrs []string

func (e errStrs) Error() string {
	return strings.Join(e, "; ")
}

// Entity names a guarded record type for ValidateDeletion.
type Entity string

const (
	EntityStudent Entity = "student"
	EntityTeacher Entity = "teacher"
	EntityClass   Entity = "class"
)

// UniqueField names a column checked for duplicates.
type UniqueField string

const (
	FieldNationalID UniqueField = "national_id"
	FieldCode       UniqueField = "code"
	FieldPhone      UniqueField = "phone"
)

// StudentCandidate carries the proposed field values checked before a student
// row is created or edited in place.
type StudentCandidate struct {
	Code       string
	FirstName  string
	LastName   string
	NationalID string
	Phone      string
	// ClassID, when set, enables the same-class name collision and capacity
	// checks.
	ClassID int
}

// TeacherCandidate is the teacher counterpart of StudentCandidate.
type TeacherCandidate struct {
	Code       string // employee id
	FirstName  string
	LastName   string
	NationalID string
	Phone      string
}

// ClassmateName is a (first, last) pair of an existing student in a class.
type ClassmateName struct {
	StudentID int
	FirstName string
	LastName  string
}

// ClassMeta is the slice of a class the checks need.
type ClassMeta struct {
	ID       int
	Name     string
	Capacity int
	IsActive bool
}
