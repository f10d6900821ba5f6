package donation

import (
	"context"

	"givepoint/internal/callback"
	"givepoint/internal/models"
	"givepoint/internal/repository"
)

// Audit implements callback.Auditor on top of the payment-event table.
type Audit struct {
	events *repository.PaymentEventRepository
}

func NewAudit(events *repository.PaymentEventRepository) *Audit {
	return &Audit{events: events}
}

func (a *Audit) Verified(ctx context.Context, req *callback.RecordRequest) error {
	return a.events.Upsert(&models.PaymentEvent{
		TransactionRef: req.TransactionRef,
		GatewayOrderID: req.GatewayOrderID,
		Gateway:        req.PaymentMethod,
		CampaignID:     req.CampaignID,
		UserID:         req.UserID,
		Amount:         req.Amount,
		Status:         models.PaymentEventVerified,
	})
}

func (a *Audit) Recorded(ctx context.Context, transactionRef string) error {
	return a.events.SetStatus(transactionRef, models.PaymentEventRecorded, "")
}

func (a *Audit) Unrecorded(ctx context.Context, transactionRef string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return a.events.SetStatus(transactionRef, models.PaymentEventUnrecorded, msg)
}
