package student

import "github.com/maktab-io/maktab/core"

func (ns *NewStudent) Validate() error {
	ns.Code = core.CleanString(ns.Code)
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.NationalID = core.CleanString(ns.NationalID)
	ns.Phone = core.CleanString(ns.Phone)
	return core.Validate.Struct(ns)
}

func (up *UpdateStudent) Validate() error {
	up.FirstName = core.CleanString(up.FirstName)
	up.LastName = core.CleanString(up.LastName)
	up.NationalID = core.CleanString(up.NationalID)
	up.Phone = core.CleanString(up.Phone)
	return core.Validate.Struct(up)
}
