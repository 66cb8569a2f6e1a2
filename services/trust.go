package services

import (
	"sort"
	"time"

	"vkconnect/models"
)

const (
	TrustBadgeExpert    = "expert"
	TrustBadgeVerified  = "verified"
	TrustBadgeCommunity = "community"
	TrustBadgeOutdated  = "outdated"

	// Posts older than this many fractional months are down-weighted
	// regardless of author status.
	outdatedAfterMonths = 12.0

	// Average Gregorian month in days
	daysPerMonth = 30.4375
)

// expertBadgeTypes are the badge kinds that count as expert status even when
// is_expert is not set on the user row.
var expertBadgeTypes = map[string]bool{
	"expert":          true,
	"lawyer":          true,
	"doctor":          true,
	"accountant":      true,
	"visa-consultant": true,
}

type AuthorTrust struct {
	IsVerified bool
	IsExpert   bool
	BadgeType  string
}

// ResolveTrust maps author attributes and post age to a trust badge and the
// weight applied by the popularity ranker. Content age wins over any author
// signal.
func ResolveTrust(author AuthorTrust, createdAt, now time.Time) (string, float64) {
	ageMonths := now.Sub(createdAt).Hours() / 24 / daysPerMonth
	if ageMonths >= outdatedAfterMonths {
		return TrustBadgeOutdated, 0.5
	}
	if author.IsExpert || expertBadgeTypes[author.BadgeType] {
		return TrustBadgeExpert, 1.3
	}
	if author.IsVerified || author.BadgeType != "" {
		return TrustBadgeVerified, 1.0
	}
	return TrustBadgeCommunity, 0.7
}

// PopularityScore is the composite engagement score used by sort=popular.
func PopularityScore(post *models.DecoratedPost) float64 {
	base := float64(post.Likes)*2 +
		float64(post.Views) +
		float64(post.AnswersCount)*1.5 +
		float64(post.PostCommentsCount)
	return base * post.TrustWeight
}

// RankByPopularity re-sorts the decorated page in place by trust-weighted
// engagement. The sort is stable: equal scores keep their incoming order.
// Ranking is page-local, it never reorders across pages.
func RankByPopularity(posts []models.DecoratedPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return PopularityScore(&posts[i]) > PopularityScore(&posts[j])
	})
}
