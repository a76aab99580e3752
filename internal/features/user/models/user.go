package models

import "time"

// RewardStatus is the lifecycle of a user's primary (non-referral) reward.
type RewardStatus string

const (
	RewardStatusNotCompleted RewardStatus = "not_completed"
	RewardStatusPending      RewardStatus = "pending"
	RewardStatusPaid         RewardStatus = "paid"
)

// RewardType distinguishes users rewarded through a referral link.
type RewardType string

const (
	RewardTypeNormal   RewardType = "normal"
	RewardTypeReferred RewardType = "referred"
)

// ReferralRewardMntc is the MNTC amount credited per referral unit. Display
// amounts multiply by it; the pending-referral check never does.
const ReferralRewardMntc = 2

// UserDocument is the stored shape of a user, written by the Telegram bot.
// Every field beyond the id may be absent on legacy or partially written
// records, so everything is optional here and defaulted in the mapper.
// FirstName is a pointer so a stored empty string stays distinct from a
// missing field; the name sort cursor depends on that distinction.
type UserDocument struct {
	ID           string     `bson:"_id,omitempty" json:"id"`
	FirstName    *string    `bson:"first_name,omitempty" json:"first_name,omitempty"`
	Username     string     `bson:"username,omitempty" json:"username,omitempty"`
	UserID       int64      `bson:"user_id,omitempty" json:"user_id,omitempty"`
	CreatedAt    *time.Time `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt    *time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	Bep20Address string     `bson:"bep20_address,omitempty" json:"bep20_address,omitempty"`

	CurrentStep        int                         `bson:"current_step,omitempty" json:"current_step,omitempty"`
	SocialUsernames    *SocialUsernamesDocument    `bson:"social_usernames,omitempty" json:"social_usernames,omitempty"`
	Screenshots        []string                    `bson:"screenshots,omitempty" json:"screenshots,omitempty"`
	StepsCompleted     map[string]bool             `bson:"steps_completed,omitempty" json:"steps_completed,omitempty"`
	VerificationStatus *VerificationStatusDocument `bson:"verification_status,omitempty" json:"verification_status,omitempty"`
	IsReferred         bool                        `bson:"is_referred,omitempty" json:"is_referred,omitempty"`
	ReferralCode       string                      `bson:"referral_code,omitempty" json:"referral_code,omitempty"`
	ReferredBy         string                      `bson:"referred_by,omitempty" json:"referred_by,omitempty"`

	RewardInfo    *RewardInfoDocument    `bson:"reward_info,omitempty" json:"reward_info,omitempty"`
	ReferralStats *ReferralStatsDocument `bson:"referral_stats,omitempty" json:"referral_stats,omitempty"`
}

type SocialUsernamesDocument struct {
	Twitter       string `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram     string `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Coinmarketcap string `bson:"coinmarketcap,omitempty" json:"coinmarketcap,omitempty"`
}

type VerificationStatusDocument struct {
	Telegram      bool `bson:"telegram,omitempty" json:"telegram,omitempty"`
	Twitter       bool `bson:"twitter,omitempty" json:"twitter,omitempty"`
	Instagram     bool `bson:"instagram,omitempty" json:"instagram,omitempty"`
	Coinmarketcap bool `bson:"coinmarketcap,omitempty" json:"coinmarketcap,omitempty"`
}

type RewardInfoDocument struct {
	MntcEarned      float64    `bson:"mntc_earned,omitempty" json:"mntc_earned,omitempty"`
	RewardStatus    string     `bson:"reward_status,omitempty" json:"reward_status,omitempty"`
	RewardType      string     `bson:"reward_type,omitempty" json:"reward_type,omitempty"`
	CompletionDate  *time.Time `bson:"completion_date,omitempty" json:"completion_date,omitempty"`
	StatusUpdatedAt *time.Time `bson:"status_updated_at,omitempty" json:"status_updated_at,omitempty"`
}

type ReferralStatsDocument struct {
	TotalReferrals int `bson:"total_referrals,omitempty" json:"total_referrals,omitempty"`
	TotalRewards   int `bson:"total_rewards,omitempty" json:"total_rewards,omitempty"`
}

// User is the display-ready projection of a UserDocument with all defaults
// resolved. CreatedAt keeps the raw timestamp for sort comparisons.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Username     string     `json:"username"`
	UserID       int64      `json:"user_id,omitempty"`
	JoinDate     string     `json:"join_date"`
	LastSeen     string     `json:"last_seen"`
	CreatedAt    *time.Time `json:"-"`
	Bep20Address string     `json:"bep20_address,omitempty"`

	CurrentStep        int                `json:"current_step"`
	SocialUsernames    SocialUsernames    `json:"social_usernames"`
	Screenshots        []string           `json:"screenshots"`
	StepsCompleted     map[string]bool    `json:"steps_completed"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	IsReferred         bool               `json:"is_referred"`
	ReferralCode       string             `json:"referral_code,omitempty"`
	ReferredBy         string             `json:"referred_by,omitempty"`

	RewardInfo    RewardInfo    `json:"reward_info"`
	ReferralStats ReferralStats `json:"referral_stats"`
}

type SocialUsernames struct {
	Twitter       string `json:"twitter,omitempty"`
	Instagram     string `json:"instagram,omitempty"`
	Coinmarketcap string `json:"coinmarketcap,omitempty"`
}

type VerificationStatus struct {
	Telegram      bool `json:"telegram"`
	Twitter       bool `json:"twitter"`
	Instagram     bool `json:"instagram"`
	Coinmarketcap bool `json:"coinmarketcap"`
}

type RewardInfo struct {
	MntcEarned     float64      `json:"mntc_earned"`
	RewardStatus   RewardStatus `json:"reward_status"`
	RewardType     RewardType   `json:"reward_type"`
	CompletionDate string       `json:"completion_date"`
}

type ReferralStats struct {
	TotalReferrals int `json:"total_referrals"`
	TotalRewards   int `json:"total_rewards"`
}

// PendingReferral reports whether the user has referral rewards not yet
// released. The comparison is in raw referral-count units.
func (u *User) PendingReferral() bool {
	return u.ReferralStats.TotalReferrals != u.ReferralStats.TotalRewards
}

// TotalPayout is the display amount for a user: the primary reward plus the
// released referral units converted to MNTC.
func (u *User) TotalPayout() float64 {
	return u.RewardInfo.MntcEarned + float64(u.ReferralStats.TotalRewards)*ReferralRewardMntc
}
