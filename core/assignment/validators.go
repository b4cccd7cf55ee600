package assignment

import "github.com/maktab-io/maktab/core"

func (na *NewAssignment) Validate() error {
	na.Reason = core.CleanString(na.Reason)
	return core.Validate.Struct(na)
}
