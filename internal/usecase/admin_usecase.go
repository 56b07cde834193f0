package usecase

import (
	"context"
	"log"
	"time"

	"blazerider/internal/domain/entity"
	"blazerider/internal/domain/repository"
	"blazerider/pkg/errors"
)

// AdminUseCase covers the moderation surface: confirming or rejecting new
// rider accounts and the dashboard stats. Verified is the single canonical
// flag; VerifiedRecent only drives the dashboard badge and is cleared when
// the admin views the dashboard.
type AdminUseCase struct {
	userRepo repository.UserRepository
	notifier *NotificationUseCase
}

func NewAdminUseCase(userRepo repository.UserRepository, notifier *NotificationUseCase) *AdminUseCase {
	return &AdminUseCase{
		userRepo: userRepo,
		notifier: notifier,
	}
}

type DashboardStats struct {
	PendingCount     int64          `json:"pending_count"`
	AcceptedCount    int64          `json:"accepted_count"`
	RejectedCount    int64          `json:"rejected_count"`
	NewByDay         []DayCount     `json:"new_by_day"`
	RecentlyVerified []*entity.User `json:"recently_verified"`
}

type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ListPendingUsers returns accounts awaiting confirmation.
func (uc *AdminUseCase) ListPendingUsers(ctx context.Context, limit, offset int) ([]*entity.User, int64, error) {
	return uc.userRepo.ListByVerificationStatus(ctx, entity.VerificationPending, limit, offset)
}

// ConfirmUser accepts a pending rider. Confirming an already-accepted user
// is a no-op.
func (uc *AdminUseCase) ConfirmUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User not found", err)
	}

	if user.VerificationStatus == entity.VerificationAccepted {
		return user, nil
	}

	user.Verified = true
	user.VerifiedRecent = true
	user.VerificationStatus = entity.VerificationAccepted

	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("ConfirmUser Error: Failed for user %s: %v", userID, err)
		return nil, err
	}

	if uc.notifier != nil {
		uc.notifier.Relay(ctx, &entity.Notification{
			UserID: userID,
			Type:   entity.NotificationTypeSystem,
			Title:  "Account confirmed",
			Body:   "Your account has been verified. Welcome aboard!",
		})
	}

	return user, nil
}

// RejectUser declines a pending rider and clears any verified state.
func (uc *AdminUseCase) RejectUser(ctx context.Context, userID, reason string) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("User not found", err)
	}

	user.Verified = false
	user.VerifiedRecent = false
	user.VerificationStatus = entity.VerificationRejected

	if err := uc.userRepo.Update(ctx, user); err != nil {
		log.Printf("RejectUser Error: Failed for user %s: %v", userID, err)
		return nil, err
	}

	if uc.notifier != nil {
		body := "Your account verification was declined."
		if reason != "" {
			body = body + " Reason: " + reason
		}
		uc.notifier.Relay(ctx, &entity.Notification{
			UserID: userID,
			Type:   entity.NotificationTypeSystem,
			Title:  "Verification declined",
			Body:   body,
		})
	}

	return user, nil
}

// GetDashboardStats builds the admin dashboard: status counts, a
// zero-filled signups-per-day series for the window, and the riders
// verified since the dashboard was last viewed. Viewing the dashboard
// consumes the recently-verified badge.
func (uc *AdminUseCase) GetDashboardStats(ctx context.Context, days int) (*DashboardStats, error) {
	if days <= 0 {
		days = 7
	}

	pending, err := uc.userRepo.CountByVerificationStatus(ctx, entity.VerificationPending)
	if err != nil {
		return nil, err
	}
	accepted, err := uc.userRepo.CountByVerificationStatus(ctx, entity.VerificationAccepted)
	if err != nil {
		return nil, err
	}
	rejected, err := uc.userRepo.CountByVerificationStatus(ctx, entity.VerificationRejected)
	if err != nil {
		return nil, err
	}

	since := time.Now().AddDate(0, 0, -days+1).Truncate(24 * time.Hour)
	recent, err := uc.userRepo.ListCreatedAfter(ctx, since)
	if err != nil {
		return nil, err
	}

	// Every day in the window appears, zero or not, so charts have no gaps.
	counts := make(map[string]int, days)
	var order []string
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		counts[day] = 0
		order = append(order, day)
	}
	for _, user := range recent {
		day := user.CreatedAt.Format("2006-01-02")
		if _, ok := counts[day]; ok {
			counts[day]++
		}
	}

	series := make([]DayCount, 0, len(order))
	for _, day := range order {
		series = append(series, DayCount{Date: day, Count: counts[day]})
	}

	recentlyVerified, err := uc.userRepo.ListVerifiedRecent(ctx)
	if err != nil {
		log.Printf("Dashboard: failed to list recently verified users: %v", err)
	}

	if err := uc.userRepo.ClearVerifiedRecent(ctx); err != nil {
		log.Printf("Dashboard: failed to clear recently-verified badges: %v", err)
	}

	return &DashboardStats{
		PendingCount:     pending,
		AcceptedCount:    accepted,
		RejectedCount:    rejected,
		NewByDay:         series,
		RecentlyVerified: recentlyVerified,
	}, nil
}
