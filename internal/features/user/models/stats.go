package models

// DashboardStats are the aggregate counters shown on the dashboard, produced
// by one full collection scan.
type DashboardStats struct {
	TotalUsers             int     `json:"total_users"`
	DeliveredUsers         int     `json:"delivered_users"`
	TotalMntcPaid          float64 `json:"total_mntc_paid"`
	PendingReferralRewards int     `json:"pending_referral_rewards"`
}

// GrowthPoint is one calendar day of the user growth series.
type GrowthPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Users int    `json:"users"`
}
