package dto

type PlatformStats struct {
	TotalUsers          int64 `json:"total_users"`
	TotalProfiles       int64 `json:"total_profiles"`
	PremiumProfiles     int64 `json:"premium_profiles"`
	FeaturedProfiles    int64 `json:"featured_profiles"`
	ActiveSubscriptions int64 `json:"active_subscriptions"`
	// MonthlyRevenue is the recurring revenue of currently active
	// subscriptions at the configured premium price.
	MonthlyRevenue float64 `json:"monthly_revenue"`
	TotalMessages  int64   `json:"total_messages"`
	TotalReviews   int64   `json:"total_reviews"`
	PendingReviews int64   `json:"pending_reviews"`
}

type ToggleFlagRequest struct {
	Value bool `json:"value"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type AdminUserDTO struct {
	User    UserDTO     `json:"user"`
	Profile *ProfileDTO `json:"profile,omitempty"`
}

type AdminUserListResponse struct {
	Users      []AdminUserDTO `json:"users"`
	Pagination Pagination     `json:"pagination"`
}
