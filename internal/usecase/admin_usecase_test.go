package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blazerider/internal/domain/entity"
)

func TestConfirmUserSetsCanonicalFlag(t *testing.T) {
	users := newFakeUserRepo("rider-1")
	users.users["rider-1"].VerificationStatus = entity.VerificationPending
	uc := NewAdminUseCase(users, nil)
	ctx := context.Background()

	user, err := uc.ConfirmUser(ctx, "rider-1")
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.True(t, user.VerifiedRecent)
	assert.Equal(t, entity.VerificationAccepted, user.VerificationStatus)

	// Confirming twice changes nothing.
	again, err := uc.ConfirmUser(ctx, "rider-1")
	require.NoError(t, err)
	assert.True(t, again.Verified)
}

func TestRejectUserClearsVerified(t *testing.T) {
	users := newFakeUserRepo("rider-1")
	users.users["rider-1"].Verified = true
	users.users["rider-1"].VerificationStatus = entity.VerificationAccepted
	uc := NewAdminUseCase(users, nil)

	user, err := uc.RejectUser(context.Background(), "rider-1", "blurry photo")
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.False(t, user.VerifiedRecent)
	assert.Equal(t, entity.VerificationRejected, user.VerificationStatus)
}

func TestDashboardStatsZeroFillsDays(t *testing.T) {
	users := newFakeUserRepo("a", "b", "c")
	now := time.Now()
	users.users["a"].CreatedAt = now
	users.users["a"].VerificationStatus = entity.VerificationPending
	users.users["b"].CreatedAt = now.AddDate(0, 0, -2)
	users.users["b"].VerificationStatus = entity.VerificationAccepted
	users.users["c"].CreatedAt = now.AddDate(0, 0, -30) // outside the window
	users.users["c"].VerificationStatus = entity.VerificationAccepted

	uc := NewAdminUseCase(users, nil)

	stats, err := uc.GetDashboardStats(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, int64(1), stats.PendingCount)
	assert.Equal(t, int64(2), stats.AcceptedCount)
	assert.Len(t, stats.NewByDay, 7, "every day appears even with zero signups")

	var totalNew int
	for _, day := range stats.NewByDay {
		totalNew += day.Count
	}
	assert.Equal(t, 2, totalNew)
}

func TestDashboardViewConsumesRecentBadge(t *testing.T) {
	users := newFakeUserRepo("rider-1")
	users.users["rider-1"].VerificationStatus = entity.VerificationPending
	uc := NewAdminUseCase(users, nil)
	ctx := context.Background()

	_, err := uc.ConfirmUser(ctx, "rider-1")
	require.NoError(t, err)

	stats, err := uc.GetDashboardStats(ctx, 7)
	require.NoError(t, err)
	require.Len(t, stats.RecentlyVerified, 1)

	// The badge is consumed by viewing.
	stats, err = uc.GetDashboardStats(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, stats.RecentlyVerified)
}
