package types

import (
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/samber/lo"
)

// ConnectionType represents the kind of service line a connection is.
type ConnectionType string

const (
	ConnectionTypeFiber     ConnectionType = "fiber"
	ConnectionTypeBroadband ConnectionType = "broadband"
	ConnectionTypeMobile    ConnectionType = "mobile"
)

func (t ConnectionType) String() string {
	return string(t)
}

func (t ConnectionType) Validate() error {
	allowed := []ConnectionType{
		ConnectionTypeFiber,
		ConnectionTypeBroadband,
		ConnectionTypeMobile,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid connection type").
			WithHintf("Connection type %s is not valid", t).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ConnectionStatus represents whether a connection is in service.
type ConnectionStatus string

const (
	ConnectionStatusActive   ConnectionStatus = "Active"
	ConnectionStatusInactive ConnectionStatus = "Inactive"
)

func (s ConnectionStatus) String() string {
	return string(s)
}

func (s ConnectionStatus) Validate() error {
	allowed := []ConnectionStatus{
		ConnectionStatusActive,
		ConnectionStatusInactive,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid connection status").
			WithHintf("Connection status %s is not valid", s).
			Mark(ierr.ErrValidation)
	}
	return nil
}
