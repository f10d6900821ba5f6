package donation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"givepoint/internal/callback"
)

func TestRecordRejectsInvalidInput(t *testing.T) {
	s := NewService(nil, nil, nil, nil, zap.NewNop())

	_, err := s.Record(context.Background(), &callback.RecordRequest{
		Amount:         100,
		TransactionRef: "TXN1",
	})
	assert.ErrorContains(t, err, "campaign id")

	_, err = s.Record(context.Background(), &callback.RecordRequest{
		CampaignID:     "c1",
		Amount:         0,
		TransactionRef: "TXN1",
	})
	assert.ErrorContains(t, err, "amount")

	_, err = s.Record(context.Background(), &callback.RecordRequest{
		CampaignID:     "c1",
		Amount:         -10,
		TransactionRef: "TXN1",
	})
	assert.ErrorContains(t, err, "amount")
}
