package services

import (
	"testing"
	"time"

	"vkconnect/models"

	"github.com/stretchr/testify/require"
)

func TestResolveTrustOutdatedOverridesAuthorStatus(t *testing.T) {
	now := time.Now()
	old := now.AddDate(-1, -1, 0)

	badge, weight := ResolveTrust(AuthorTrust{IsExpert: true}, old, now)
	require.Equal(t, TrustBadgeOutdated, badge)
	require.Equal(t, 0.5, weight)
}

func TestResolveTrustExpert(t *testing.T) {
	now := time.Now()
	recent := now.AddDate(0, -1, 0)

	badge, weight := ResolveTrust(AuthorTrust{IsExpert: true}, recent, now)
	require.Equal(t, TrustBadgeExpert, badge)
	require.Equal(t, 1.3, weight)

	// Professional badge types count as expert without the flag
	for _, badgeType := range []string{"lawyer", "doctor", "accountant", "visa-consultant"} {
		badge, weight = ResolveTrust(AuthorTrust{BadgeType: badgeType}, recent, now)
		require.Equal(t, TrustBadgeExpert, badge, badgeType)
		require.Equal(t, 1.3, weight)
	}
}

func TestResolveTrustVerified(t *testing.T) {
	now := time.Now()
	recent := now.AddDate(0, -1, 0)

	badge, weight := ResolveTrust(AuthorTrust{IsVerified: true}, recent, now)
	require.Equal(t, TrustBadgeVerified, badge)
	require.Equal(t, 1.0, weight)

	// A non-expert badge also counts as verified
	badge, weight = ResolveTrust(AuthorTrust{BadgeType: "contributor"}, recent, now)
	require.Equal(t, TrustBadgeVerified, badge)
	require.Equal(t, 1.0, weight)
}

func TestResolveTrustCommunityDefault(t *testing.T) {
	now := time.Now()
	badge, weight := ResolveTrust(AuthorTrust{}, now.AddDate(0, -1, 0), now)
	require.Equal(t, TrustBadgeCommunity, badge)
	require.Equal(t, 0.7, weight)
}

func TestResolveTrustBoundary(t *testing.T) {
	now := time.Now()

	monthsAgo := func(months float64) time.Time {
		return now.Add(-time.Duration(months * daysPerMonth * 24 * float64(time.Hour)))
	}

	// Just under twelve average months must not be outdated yet
	badge, _ := ResolveTrust(AuthorTrust{}, monthsAgo(11.9), now)
	require.Equal(t, TrustBadgeCommunity, badge)

	badge, _ = ResolveTrust(AuthorTrust{}, monthsAgo(12.1), now)
	require.Equal(t, TrustBadgeOutdated, badge)
}

func TestPopularityScore(t *testing.T) {
	post := models.DecoratedPost{
		Likes:             10,
		Views:             100,
		AnswersCount:      4,
		PostCommentsCount: 6,
		TrustWeight:       1.3,
	}
	// (10*2 + 100 + 4*1.5 + 6) * 1.3
	require.InDelta(t, 132*1.3, PopularityScore(&post), 1e-9)
}

func TestRankByPopularityTrustWeightedAndStable(t *testing.T) {
	posts := []models.DecoratedPost{
		{ID: 1, Likes: 50, TrustWeight: 0.5},  // 100*0.5 = 50
		{ID: 2, Likes: 40, TrustWeight: 1.3},  // 80*1.3 = 104
		{ID: 3, Likes: 52, TrustWeight: 1.0},  // 104
		{ID: 4, Likes: 100, TrustWeight: 0.7}, // 140
	}
	RankByPopularity(posts)

	require.Equal(t, int64(4), posts[0].ID)
	// Equal scores keep their incoming order
	require.Equal(t, int64(2), posts[1].ID)
	require.Equal(t, int64(3), posts[2].ID)
	require.Equal(t, int64(1), posts[3].ID)
}
