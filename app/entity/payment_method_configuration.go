package entity

import "time"

type PaymentMethodConfigurationState string

const (
	PaymentMethodConfigurationStateActive   PaymentMethodConfigurationState = "ACTIVE"
	PaymentMethodConfigurationStateInactive PaymentMethodConfigurationState = "INACTIVE"
	PaymentMethodConfigurationStateDeleted  PaymentMethodConfigurationState = "DELETED"
)

// PaymentMethodConfiguration is the local mirror of a gateway payment method
// configuration, kept in sync via webhook notifications. ID is the
// gateway-assigned configuration id.
type PaymentMethodConfiguration struct {
	ID      uint64
	SpaceID uint64

	Name           string
	State          PaymentMethodConfigurationState
	SupportsRefund bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
