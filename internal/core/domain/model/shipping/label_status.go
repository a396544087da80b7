package shipping

import (
	"fmt"

	"orderhub/internal/pkg/errs"
)

// LabelStatus is the lifecycle state of a shipping label.
type LabelStatus string

const (
	LabelPending   LabelStatus = "pending"
	LabelGenerated LabelStatus = "generated"
	LabelVoided    LabelStatus = "voided"
)

// ParseLabelStatus converts a stored code into a LabelStatus.
func ParseLabelStatus(code string) (LabelStatus, error) {
	status := LabelStatus(code)
	if err := status.Validate(); err != nil {
		return "", err
	}
	return status, nil
}

func (s LabelStatus) Validate() error {
	switch s {
	case LabelPending, LabelGenerated, LabelVoided:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("label status", fmt.Errorf("%q is not a valid label status", string(s)))
	}
}

func (s LabelStatus) String() string {
	return string(s)
}
