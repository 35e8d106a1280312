package service

import (
	"time"

	"github.com/southeastarchers/club-backend/internal/models"
	"github.com/southeastarchers/club-backend/internal/repository"
	"github.com/southeastarchers/club-backend/pkg/utils"
)

type SettingsService struct {
	settingsRepo *repository.SettingsRepository
	validator    *utils.Validator
}

func NewSettingsService(settingsRepo *repository.SettingsRepository, validator *utils.Validator) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		validator:    validator,
	}
}

func (s *SettingsService) Get() (*models.ApplicationSettings, error) {
	return s.settingsRepo.Get()
}

// Update validates and saves the settings. Malformed month/day combinations
// are rejected here, so CalculateMembershipExpiry can assume its inputs are
// well-formed.
func (s *SettingsService) Update(req models.UpdateSettingsRequest) (*models.ApplicationSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, NewValidationError("Invalid settings: " + err.Error())
	}
	if req.MembershipYearStartDay > daysInMonth(time.Month(req.MembershipYearStartMonth), 2000) {
		// Year 2000 is a leap year, so Feb 29 is allowed as a boundary.
		return nil, NewValidationError("Membership year start day is not valid for the chosen month.")
	}

	settings, err := s.settingsRepo.Get()
	if err != nil {
		return nil, err
	}

	settings.MembershipYearStartMonth = req.MembershipYearStartMonth
	settings.MembershipYearStartDay = req.MembershipYearStartDay
	settings.AnnualMembershipCost = req.AnnualMembershipCost
	settings.MembershipShootsIncluded = req.MembershipShootsIncluded
	settings.AdditionalShootCost = req.AdditionalShootCost
	settings.VisitorShootFee = req.VisitorShootFee
	if req.CashPaymentInstructions != "" {
		settings.CashPaymentInstructions = req.CashPaymentInstructions
	}
	settings.StripeFeePercentage = req.StripeFeePercentage

	if err := s.settingsRepo.Save(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// CalculateMembershipExpiry maps a start date to the last instant (23:59:59)
// of the day before the next membership-year boundary. A start date strictly
// before this year's boundary expires just before this year's boundary;
// anything on or after it expires just before next year's.
func CalculateMembershipExpiry(startDate time.Time, settings *models.ApplicationSettings) time.Time {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.UTC)

	thisYearStart := membershipYearStart(start.Year(), settings)
	if start.Before(thisYearStart) {
		return thisYearStart.Add(-time.Second)
	}
	return membershipYearStart(start.Year()+1, settings).Add(-time.Second)
}

// membershipYearStart resolves the configured (month, day) boundary in the
// given year. A day past the month's end (Feb 29 in a non-leap year) falls
// back to the last day of that month rather than rolling into the next.
func membershipYearStart(year int, settings *models.ApplicationSettings) time.Time {
	month := time.Month(settings.MembershipYearStartMonth)
	day := settings.MembershipYearStartDay
	if max := daysInMonth(month, year); day > max {
		day = max
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(month time.Month, year int) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
