package models

type UserStatus string
type UserRole string
type Availability string
type SubscriptionStatus string
type PaymentStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	AvailabilityAvailable   Availability = "available"
	AvailabilityBusy        Availability = "busy"
	AvailabilityUnavailable Availability = "unavailable"

	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// CreatorRoles are the profile categories shown in discovery filters.
var CreatorRoles = []string{"YouTuber", "Editor", "Designer", "Developer", "Writer", "Other"}

func IsValidCreatorRole(role string) bool {
	for _, r := range CreatorRoles {
		if r == role {
			return true
		}
	}
	return false
}

func IsValidAvailability(a Availability) bool {
	switch a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable:
		return true
	}
	return false
}
