package service

import (
	"testing"
	"time"

	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestActivatePendingMembership(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "activate@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusPending, 20, 0, 0)

	require.NoError(t, env.membership.Activate(user.ID))

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusActive, membership.Status)
}

func TestActivateAlreadyActiveFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "twice@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	err := env.membership.Activate(user.ID)
	require.Error(t, err)
	require.True(t, IsValidationError(err))
	require.EqualError(t, err, "Membership is already active.")
}

func TestActivateWithoutMembershipFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "missing@example.com")

	err := env.membership.Activate(user.ID)
	require.Error(t, err)
	require.EqualError(t, err, "No membership found.")
}

func TestActivateCancelledMembershipFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cancelled@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusCancelled, 0, 0, 0)

	err := env.membership.Activate(user.ID)
	require.Error(t, err)
	require.EqualError(t, err, "Membership cannot be activated from its current state.")
}

func TestRenewResetsAnnualAllotmentKeepsPurchased(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "renew@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 7, 15)

	require.NoError(t, env.membership.Renew(user.ID))

	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusActive, membership.Status)
	require.Equal(t, 20, membership.InitialCredits)
	require.Equal(t, 7, membership.PurchasedCredits, "purchased credits never expire")
	require.Equal(t, 0, membership.UsedCredits, "used counter resets on renewal")
	require.Equal(t, 27, membership.CreditsRemaining())
	require.True(t, membership.ExpiryDate.After(time.Now().UTC()))
}

func TestRenewCancelledMembershipFails(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "renewcancelled@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusCancelled, 0, 3, 0)

	err := env.membership.Renew(user.ID)
	require.Error(t, err)
	require.EqualError(t, err, "A cancelled membership cannot be renewed.")
}

func TestCancelMembership(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "cancel@example.com")
	env.seedMembership(t, user.ID, models.MembershipStatusActive, 20, 0, 0)

	require.NoError(t, env.membership.Cancel(user.ID))
	membership := env.reloadMembership(t, user.ID)
	require.Equal(t, models.MembershipStatusCancelled, membership.Status)

	err := env.membership.Cancel(user.ID)
	require.Error(t, err)
	require.EqualError(t, err, "Membership is already cancelled.")
}

func TestYearEndRolloverForfeitsInitialCreditsOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "yearend@example.com")
	membership := env.seedMembership(t, user.ID, models.MembershipStatusActive, 12, 4, 6)
	membership.ExpiryDate = time.Now().UTC().AddDate(0, 0, -1)
	require.NoError(t, env.db.Save(membership).Error)

	fresh := env.seedUser(t, "fresh@example.com")
	env.seedMembership(t, fresh.ID, models.MembershipStatusActive, 20, 0, 0)

	count, err := env.membership.ExpireInitialCreditsForYearEnd()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	expired := env.reloadMembership(t, user.ID)
	require.Equal(t, 0, expired.InitialCredits)
	require.Equal(t, 4, expired.PurchasedCredits)
	require.Equal(t, 6, expired.UsedCredits)
	require.Equal(t, models.MembershipStatusActive, expired.Status)

	untouched := env.reloadMembership(t, fresh.ID)
	require.Equal(t, 20, untouched.InitialCredits)
}

func TestYearEndRolloverPreservesConcurrentCreditUse(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "interleave@example.com")
	membership := env.seedMembership(t, user.ID, models.MembershipStatusActive, 12, 0, 5)
	membership.ExpiryDate = time.Now().UTC().AddDate(0, 0, -1)
	require.NoError(t, env.db.Save(membership).Error)

	// Simulate a booking committing between any read the rollover makes and
	// its write: every load of a membership row bumps used_credits underneath.
	// The rollover must only ever touch initial_credits, so the bump survives.
	bumps := 0
	err := env.db.Callback().Query().After("gorm:query").Register("booking_interleave", func(tx *gorm.DB) {
		if tx.Statement.Table == "memberships" {
			bumps++
			tx.Session(&gorm.Session{NewDB: true}).
				Exec("UPDATE memberships SET used_credits = used_credits + 1 WHERE id = ?", membership.ID)
		}
	})
	require.NoError(t, err)

	count, rolloverErr := env.membership.ExpireInitialCreditsForYearEnd()
	require.NoError(t, env.db.Callback().Query().Remove("booking_interleave"))
	require.NoError(t, rolloverErr)
	require.Equal(t, 1, count)

	after := env.reloadMembership(t, user.ID)
	require.Equal(t, 0, after.InitialCredits)
	require.Equal(t, 5+bumps, after.UsedCredits, "concurrent credit use must never be overwritten")
	require.Equal(t, 0, after.PurchasedCredits)
}

func TestYearEndRolloverIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "yearendtwice@example.com")
	membership := env.seedMembership(t, user.ID, models.MembershipStatusActive, 12, 0, 0)
	membership.ExpiryDate = time.Now().UTC().AddDate(0, 0, -1)
	require.NoError(t, env.db.Save(membership).Error)

	count, err := env.membership.ExpireInitialCreditsForYearEnd()
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = env.membership.ExpireInitialCreditsForYearEnd()
	require.NoError(t, err)
	require.Equal(t, 0, count)
}

func TestMembershipIsActive(t *testing.T) {
	now := time.Now().UTC()

	membership := &models.Membership{Status: models.MembershipStatusActive, ExpiryDate: now.Add(time.Hour)}
	require.True(t, membership.IsActive(now))

	membership.ExpiryDate = now.Add(-time.Hour)
	require.False(t, membership.IsActive(now), "expired memberships are not active")

	membership = &models.Membership{Status: models.MembershipStatusPending, ExpiryDate: now.Add(time.Hour)}
	require.False(t, membership.IsActive(now))
}

func TestGetExpiringSoon(t *testing.T) {
	env := newTestEnv(t)
	soon := env.seedUser(t, "soon@example.com")
	membership := env.seedMembership(t, soon.ID, models.MembershipStatusActive, 20, 0, 0)
	membership.ExpiryDate = time.Now().UTC().AddDate(0, 0, 10)
	require.NoError(t, env.db.Save(membership).Error)

	later := env.seedUser(t, "later@example.com")
	env.seedMembership(t, later.ID, models.MembershipStatusActive, 20, 0, 0)

	expiring, err := env.membership.GetExpiringSoon(30)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	require.Equal(t, soon.ID, expiring[0].UserID)
}
