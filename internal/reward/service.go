package reward

import (
	"context"

	"go.uber.org/zap"

	"givepoint/internal/models"
	"givepoint/internal/repository"
)

// Accrual is the reward outcome attached to a freshly recorded donation.
type Accrual struct {
	PointsEarned int `json:"points_earned"`
	TotalPoints  int `json:"total_points"`
}

// Summary is the current reward state for a donor.
type Summary struct {
	Points             int                        `json:"points"`
	Tier               Tier                       `json:"tier"`
	TierProgress       *float64                   `json:"tier_progress,omitempty"`
	TotalDonations     int64                      `json:"total_donations"`
	RecentTransactions []models.RewardTransaction `json:"recent_transactions"`
}

// Service owns point accrual and the reward summary read path.
type Service struct {
	users         *repository.UserRepository
	rewards       *repository.RewardRepository
	donations     *repository.DonationRepository
	pointsPerUnit int
	logger        *zap.Logger
}

func NewService(
	users *repository.UserRepository,
	rewards *repository.RewardRepository,
	donations *repository.DonationRepository,
	pointsPerUnit int,
	logger *zap.Logger,
) *Service {
	if pointsPerUnit <= 0 {
		pointsPerUnit = 10
	}
	return &Service{
		users:         users,
		rewards:       rewards,
		donations:     donations,
		pointsPerUnit: pointsPerUnit,
		logger:        logger,
	}
}

// PointsFor converts a donation amount to earned points.
func (s *Service) PointsFor(amount float64) int {
	if amount <= 0 {
		return 0
	}
	return int(amount) / s.pointsPerUnit
}

// Accrue credits points for a recorded donation and writes the ledger row.
// Anonymous donations (empty user ID) earn nothing.
func (s *Service) Accrue(ctx context.Context, userID, donationID string, amount float64) (*Accrual, error) {
	if userID == "" {
		return &Accrual{}, nil
	}

	earned := s.PointsFor(amount)
	if earned == 0 {
		user, err := s.users.FindByID(userID)
		if err != nil {
			return nil, err
		}
		return &Accrual{TotalPoints: user.Points}, nil
	}

	if err := s.users.EnsureExists(userID); err != nil {
		return nil, err
	}
	total, err := s.users.AddPoints(userID, earned)
	if err != nil {
		return nil, err
	}

	ledger := &models.RewardTransaction{
		UserID:     userID,
		DonationID: donationID,
		Points:     earned,
		Balance:    total,
	}
	if err := s.rewards.Create(ledger); err != nil {
		// The balance already moved; a missing ledger row is log-worthy but
		// must not fail the donation.
		s.logger.Error("reward ledger write failed",
			zap.String("user_id", userID),
			zap.String("donation_id", donationID),
			zap.Error(err))
	}

	return &Accrual{PointsEarned: earned, TotalPoints: total}, nil
}

// Summary fetches the donor's current points, tier and recent activity.
func (s *Service) Summary(ctx context.Context, userID string) (*Summary, error) {
	user, err := s.users.FindByID(userID)
	if err != nil {
		return nil, err
	}

	totalDonations, err := s.donations.CountByUserID(userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.rewards.FindRecentByUserID(userID, 10)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Points:             user.Points,
		Tier:               Lookup(user.Points),
		TotalDonations:     totalDonations,
		RecentTransactions: recent,
	}
	if pct, ok := Progress(user.Points); ok {
		summary.TierProgress = &pct
	}
	return summary, nil
}
