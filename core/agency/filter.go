package agency

import (
	"github.com/spotlight-project/spotlight/core/validator"
)

type Filter struct {
	States        []string
	Size          int
	Offset        int
	SortBy        string `validate:"omitempty,oneof=name created_at updated_at"`
	SortDirection string `validate:"omitempty,oneof=asc desc"`
}

func (f *Filter) Validate() error {
	return validator.ValidateStruct(f)
}
