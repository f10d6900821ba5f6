package notify

import (
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"givepoint/internal/pkg/utils"
)

// TelegramReporter posts donation reports to a Telegram channel via the Bot
// API. A reporter with an empty token is a no-op.
type TelegramReporter struct {
	token     string
	channelID string
	client    *resty.Client
	logger    *zap.Logger
}

func NewTelegramReporter(token, channelID string, logger *zap.Logger) *TelegramReporter {
	return &TelegramReporter{
		token:     token,
		channelID: channelID,
		client:    resty.New().SetBaseURL("https://api.telegram.org/bot" + token),
		logger:    logger,
	}
}

// DonationReceived reports a freshly recorded donation.
func (t *TelegramReporter) DonationReceived(campaignTitle string, amount float64, method string) {
	if t.token == "" || t.channelID == "" {
		return
	}

	text := "💝 New donation\n" +
		"Campaign: " + campaignTitle + "\n" +
		"Amount: " + utils.FormatAmount(amount) + "\n" +
		"Method: " + method

	params := map[string]interface{}{
		"chat_id":    t.channelID,
		"text":       text,
		"parse_mode": "HTML",
	}
	_, err := t.client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/sendMessage")
	if err != nil {
		t.logger.Warn("donation report failed", zap.Error(err))
	}
}
