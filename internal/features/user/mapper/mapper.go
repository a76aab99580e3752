package mapper

import (
	"strconv"
	"time"

	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
)

// TimeLayout is the display format of user timestamps.
const TimeLayout = "01/02/2006, 3:04 PM"

// NA is rendered wherever a record carries no usable value.
const NA = "N/A"

// FromDocument projects a stored document into the display model. Absent or
// malformed fields degrade to defaults, never to an error: the bot writes
// records incrementally and legacy documents miss whole sub-objects.
func FromDocument(doc models.UserDocument) models.User {
	rewardInfo := doc.RewardInfo
	if rewardInfo == nil {
		rewardInfo = &models.RewardInfoDocument{}
	}
	referralStats := doc.ReferralStats
	if referralStats == nil {
		referralStats = &models.ReferralStatsDocument{}
	}
	social := doc.SocialUsernames
	if social == nil {
		social = &models.SocialUsernamesDocument{}
	}
	verification := doc.VerificationStatus
	if verification == nil {
		verification = &models.VerificationStatusDocument{}
	}
	screenshots := doc.Screenshots
	if screenshots == nil {
		screenshots = []string{}
	}
	steps := doc.StepsCompleted
	if steps == nil {
		steps = map[string]bool{}
	}

	return models.User{
		ID:           doc.ID,
		Name:         fallback(firstName(doc), NA),
		Username:     username(doc),
		UserID:       doc.UserID,
		JoinDate:     formatTime(doc.CreatedAt),
		LastSeen:     formatTime(doc.UpdatedAt),
		CreatedAt:    doc.CreatedAt,
		Bep20Address: doc.Bep20Address,
		CurrentStep:  doc.CurrentStep,
		SocialUsernames: models.SocialUsernames{
			Twitter:       social.Twitter,
			Instagram:     social.Instagram,
			Coinmarketcap: social.Coinmarketcap,
		},
		Screenshots:    screenshots,
		StepsCompleted: steps,
		VerificationStatus: models.VerificationStatus{
			Telegram:      verification.Telegram,
			Twitter:       verification.Twitter,
			Instagram:     verification.Instagram,
			Coinmarketcap: verification.Coinmarketcap,
		},
		IsReferred:   doc.IsReferred,
		ReferralCode: doc.ReferralCode,
		ReferredBy:   doc.ReferredBy,
		RewardInfo: models.RewardInfo{
			MntcEarned:     rewardInfo.MntcEarned,
			RewardStatus:   rewardStatus(rewardInfo.RewardStatus),
			RewardType:     rewardType(rewardInfo.RewardType),
			CompletionDate: formatTime(rewardInfo.CompletionDate),
		},
		ReferralStats: models.ReferralStats{
			TotalReferrals: referralStats.TotalReferrals,
			TotalRewards:   referralStats.TotalRewards,
		},
	}
}

// FromDocuments maps a batch, preserving order.
func FromDocuments(docs []models.UserDocument) []models.User {
	users := make([]models.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, FromDocument(doc))
	}
	return users
}

func firstName(doc models.UserDocument) string {
	if doc.FirstName == nil {
		return ""
	}
	return *doc.FirstName
}

func username(doc models.UserDocument) string {
	if doc.Username != "" {
		return doc.Username
	}
	if doc.UserID != 0 {
		return strconv.FormatInt(doc.UserID, 10)
	}
	return NA
}

func rewardStatus(raw string) models.RewardStatus {
	switch models.RewardStatus(raw) {
	case models.RewardStatusPending, models.RewardStatusPaid:
		return models.RewardStatus(raw)
	default:
		return models.RewardStatusNotCompleted
	}
}

func rewardType(raw string) models.RewardType {
	if models.RewardType(raw) == models.RewardTypeReferred {
		return models.RewardTypeReferred
	}
	return models.RewardTypeNormal
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return NA
	}
	return t.Format(TimeLayout)
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
