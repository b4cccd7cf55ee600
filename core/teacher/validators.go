package teacher

import "github.com/maktab-io/maktab/core"

func (nt *NewTeacher) Validate() error {
	nt.Code = core.CleanString(nt.Code)
	nt.FirstName = core.CleanString(nt.FirstName)
	nt.LastName = core.CleanString(nt.LastName)
	nt.NationalID = core.CleanString(nt.NationalID)
	nt.Phone = core.CleanString(nt.Phone)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	return core.Validate.Struct(nt)
}

func (ut *UpdateTeacher) Validate() error {
	ut.FirstName = core.CleanString(ut.FirstName)
	ut.LastName = core.CleanString(ut.LastName)
	ut.NationalID = core.CleanString(ut.NationalID)
	ut.Phone = core.CleanString(ut.Phone)
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	return core.Validate.Struct(ut)
}
