package officer

import (
	"github.com/spotlight-project/spotlight/core/validator"
)

type Filter struct {
	AgencyIDs     []string
	Size          int
	Offset        int
	SortBy        string `validate:"omitempty,oneof=last_name created_at updated_at"`
	SortDirection string `validate:"omitempty,oneof=asc desc"`
}

func (f *Filter) Validate() error {
	return validator.ValidateStruct(f)
}
