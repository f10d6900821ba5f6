package donation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"givepoint/internal/callback"
	"givepoint/internal/models"
	"givepoint/internal/pkg/utils"
	"givepoint/internal/repository"
	"givepoint/internal/reward"
)

// Notifier reports recorded donations to an operator channel.
type Notifier interface {
	DonationReceived(campaignTitle string, amount float64, method string)
}

// Service persists donations exactly once per verified transaction and
// applies the post-recording side effects (campaign totals, reward accrual,
// channel report).
type Service struct {
	donations *repository.DonationRepository
	campaigns *repository.CampaignRepository
	rewards   *reward.Service
	notifier  Notifier
	logger    *zap.Logger
}

func NewService(
	donations *repository.DonationRepository,
	campaigns *repository.CampaignRepository,
	rewards *reward.Service,
	notifier Notifier,
	logger *zap.Logger,
) *Service {
	return &Service{
		donations: donations,
		campaigns: campaigns,
		rewards:   rewards,
		notifier:  notifier,
		logger:    logger,
	}
}

// Record implements callback.Recorder. A duplicate transaction reference,
// whether reported by the insert or raced in by a concurrent instance, is
// success-with-duplicate: the payment was already verified and captured once.
func (s *Service) Record(ctx context.Context, req *callback.RecordRequest) (*callback.RecordOutcome, error) {
	if req.CampaignID == "" {
		return nil, fmt.Errorf("record donation: campaign id is required")
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("record donation: non-positive amount %v", req.Amount)
	}

	row := &models.Donation{
		ID:            utils.GenerateUUID(),
		CampaignID:    req.CampaignID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PaymentID:     req.TransactionRef,
		Status:        models.DonationCompleted,
		IsAnonymous:   req.IsAnonymous,
		Message:       req.Message,
	}

	stored, created, err := s.donations.CreateIdempotent(row)
	if err != nil {
		return nil, fmt.Errorf("record donation: %w", err)
	}

	outcome := &callback.RecordOutcome{
		DonationID: stored.ID,
		Duplicate:  !created,
	}
	if !created {
		// Side effects already ran when the row was first written.
		return outcome, nil
	}

	if err := s.campaigns.AddDonation(req.CampaignID, req.Amount); err != nil {
		s.logger.Error("campaign total update failed",
			zap.String("campaign_id", req.CampaignID),
			zap.Error(err))
	}

	accrual, err := s.rewards.Accrue(ctx, req.UserID, stored.ID, req.Amount)
	if err != nil {
		s.logger.Error("reward accrual failed",
			zap.String("user_id", req.UserID),
			zap.String("donation_id", stored.ID),
			zap.Error(err))
	} else {
		outcome.Reward = accrual
	}

	if s.notifier != nil {
		title := req.CampaignID
		if campaign, err := s.campaigns.FindByID(req.CampaignID); err == nil {
			title = campaign.Title
		}
		go s.notifier.DonationReceived(title, req.Amount, req.PaymentMethod)
	}

	return outcome, nil
}
