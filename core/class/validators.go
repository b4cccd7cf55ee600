package class

import "github.com/maktab-io/maktab/core"

func (nc *NewClass) Validate() error {
	nc.Section = core.CleanString(nc.Section)
	return core.Validate.Struct(nc)
}

func (uc *UpdateClass) Validate() error {
	return core.Validate.Struct(uc)
}
