package dto

import (
	"github.com/netbill/netbill/internal/domain/connection"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/types"
	"github.com/netbill/netbill/internal/validator"
)

// AddressRequest is the embedded service address on connection requests
type AddressRequest struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Street    string `json:"street" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	Pincode   string `json:"pincode" validate:"required"`
	Country   string `json:"country" validate:"required"`
	IsDefault bool   `json:"is_default"`
}

func (r *AddressRequest) ToAddress() connection.Address {
	return connection.Address(*r)
}

// CreateConnectionRequest represents the request to register a new connection
type CreateConnectionRequest struct {
	Name    string               `json:"name" validate:"required"`
	Type    types.ConnectionType `json:"type" validate:"required"`
	Address AddressRequest       `json:"address" validate:"required"`
}

// Validate validates the CreateConnectionRequest
func (r *CreateConnectionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Type.Validate()
}

// UpdateConnectionRequest represents the request to update a connection.
// Subscription references are never user-editable and so never appear here.
type UpdateConnectionRequest struct {
	Name    *string                 `json:"name,omitempty"`
	Type    *types.ConnectionType   `json:"type,omitempty"`
	Address *AddressRequest         `json:"address,omitempty"`
	Status  *types.ConnectionStatus `json:"status,omitempty"`
}

// Validate validates the UpdateConnectionRequest
func (r *UpdateConnectionRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ierr.NewError("name cannot be empty").
			WithHint("Please provide a connection name").
			Mark(ierr.ErrValidation)
	}
	if r.Type != nil {
		if err := r.Type.Validate(); err != nil {
			return err
		}
	}
	if r.Status != nil {
		if err := r.Status.Validate(); err != nil {
			return err
		}
	}
	if r.Address != nil {
		if err := validator.ValidateRequest(r.Address); err != nil {
			return err
		}
	}
	return nil
}

// ConnectionResponse represents a connection in API responses. The referenced
// subscriptions are expanded so clients do not need follow-up reads.
type ConnectionResponse struct {
	*connection.Connection
	CurrentSubscription *SubscriptionResponse `json:"current_subscription,omitempty"`
	QueuedSubscription  *SubscriptionResponse `json:"queued_subscription,omitempty"`
}

// ListConnectionsResponse represents a connection listing
type ListConnectionsResponse struct {
	Items []*ConnectionResponse `json:"items"`
	Total int                   `json:"total"`
}
