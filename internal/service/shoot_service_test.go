package service

import (
	"testing"

	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestCreateShootSpendsCredits(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice@example.com")
	env.seedMembership(t, alice.ID, models.MembershipStatusActive, 20, 0, 0)
	bob := env.seedUser(t, "bob@example.com")
	env.seedMembership(t, bob.ID, models.MembershipStatusActive, 20, 0, 5)

	shoot, warnings, err := env.shoots.CreateShoot(models.ShootRequest{
		Date:        "2026-08-20",
		Location:    "Main field",
		AttendeeIDs: []uint{alice.ID, bob.ID},
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NotZero(t, shoot.ID)

	require.Equal(t, 1, env.reloadMembership(t, alice.ID).UsedCredits)
	require.Equal(t, 6, env.reloadMembership(t, bob.ID).UsedCredits)

	loaded, err := env.shoots.GetShootByID(shoot.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attendees, 2)
}

func TestCreateShootSkipsBrokeMemberWithWarning(t *testing.T) {
	env := newTestEnv(t)
	broke := env.seedUser(t, "broke@example.com")
	env.seedMembership(t, broke.ID, models.MembershipStatusActive, 20, 0, 20)

	shoot, warnings, err := env.shoots.CreateShoot(models.ShootRequest{
		Date:        "2026-08-20",
		Location:    "Main field",
		AttendeeIDs: []uint{broke.ID},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "has no credits remaining")

	// Skipped, not booked: the counter is unchanged and the attendee list
	// is empty.
	require.Equal(t, 20, env.reloadMembership(t, broke.ID).UsedCredits)
	loaded, err := env.shoots.GetShootByID(shoot.ID)
	require.NoError(t, err)
	require.Empty(t, loaded.Attendees)
}

func TestCreateShootAllowNegativeBooksWithWarning(t *testing.T) {
	env := newTestEnv(t)
	broke := env.seedUser(t, "negativebooking@example.com")
	env.seedMembership(t, broke.ID, models.MembershipStatusActive, 20, 0, 20)

	shoot, warnings, err := env.shoots.CreateShoot(models.ShootRequest{
		Date:          "2026-08-20",
		Location:      "Main field",
		AttendeeIDs:   []uint{broke.ID},
		AllowNegative: true,
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "negative credit balance")

	require.Equal(t, -1, env.reloadMembership(t, broke.ID).CreditsRemaining())
	loaded, err := env.shoots.GetShootByID(shoot.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attendees, 1)
}

func TestCreateShootWarnsOnUnknownAttendee(t *testing.T) {
	env := newTestEnv(t)

	_, warnings, err := env.shoots.CreateShoot(models.ShootRequest{
		Date:        "2026-08-20",
		Location:    "Main field",
		AttendeeIDs: []uint{9999},
	})
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], "not found")
}

func TestUpdateShootRestoresRemovedAttendeeCredit(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "updalice@example.com")
	env.seedMembership(t, alice.ID, models.MembershipStatusActive, 20, 0, 0)
	bob := env.seedUser(t, "updbob@example.com")
	env.seedMembership(t, bob.ID, models.MembershipStatusActive, 20, 0, 0)

	shoot, _, err := env.shoots.CreateShoot(models.ShootRequest{
		Date:        "2026-08-20",
		Location:    "Main field",
		AttendeeIDs: []uint{alice.ID},
	})
	require.NoError(t, err)
	require.Equal(t, 1, env.reloadMembership(t, alice.ID).UsedCredits)

	updated, warnings, err := env.shoots.UpdateShoot(shoot.ID, models.ShootRequest{
		Date:        "2026-08-21",
		Location:    "Indoor range",
		AttendeeIDs: []uint{bob.ID},
	})
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, "Indoor range", updated.Location)

	require.Equal(t, 0, env.reloadMembership(t, alice.ID).UsedCredits, "removed attendee gets the credit back")
	require.Equal(t, 1, env.reloadMembership(t, bob.ID).UsedCredits)
	require.Len(t, updated.Attendees, 1)
	require.Equal(t, bob.ID, updated.Attendees[0].ID)
}

func TestUpdateShootKeepsUnchangedAttendees(t *testing.T) {
	env := newTestEnv(t)
	alice := env.seedUser(t, "stayalice@example.com")
	env.seedMembership(t, alice.ID, models.MembershipStatusActive, 20, 0, 0)

	shoot, _, err := env.shoots.CreateShoot(models.ShootRequest{
		Date:        "2026-08-20",
		Location:    "Main field",
		AttendeeIDs: []uint{alice.ID},
	})
	require.NoError(t, err)

	_, _, err = env.shoots.UpdateShoot(shoot.ID, models.ShootRequest{
		Date:        "2026-08-20",
		Location:    "Main field",
		AttendeeIDs: []uint{alice.ID},
	})
	require.NoError(t, err)

	// Staying on the list must not charge a second credit.
	require.Equal(t, 1, env.reloadMembership(t, alice.ID).UsedCredits)
}

func TestUpdateMissingShootFails(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.shoots.UpdateShoot(424242, models.ShootRequest{
		Date:     "2026-08-20",
		Location: "Nowhere",
	})
	require.Error(t, err)
	require.EqualError(t, err, "Shoot not found.")
}
