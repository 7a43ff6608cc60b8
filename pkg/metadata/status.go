package metadata

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of an asset.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInStock  Status = "IN_STOCK"
	StatusInRepair Status = "IN_REPAIR"
	StatusBroken   Status = "BROKEN"
	StatusCeased   Status = "CEASED"
)

const DefaultStatus = StatusInStock

func NewStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf(
			"invalid status: %s, only valid values are: %s, %s, %s, %s, %s",
			value, StatusActive, StatusInStock, StatusInRepair, StatusBroken, StatusCeased,
		)
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInStock, StatusInRepair, StatusBroken, StatusCeased:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
