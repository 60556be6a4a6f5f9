package alerts

import (
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"darkflow/internal/domain/models"
	"darkflow/pkg/logger"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeBot) last() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func testNotifier(t *testing.T, bot sender, minNotional float64, cooldown time.Duration) *Notifier {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	return newWithSender(bot, 42, minNotional, cooldown, log)
}

func whale(symbol string, usd float64) *models.FlowEvent {
	return &models.FlowEvent{
		ID:          "w-" + symbol,
		Type:        models.EventWhaleTransfer,
		Symbol:      symbol,
		Side:        "buy",
		NotionalUSD: usd,
		Wallet:      "0x9f8a3b2c4d5e6f708192a3b4c5d6e7f8090a1f0a",
		Timestamp:   time.Now(),
	}
}

func TestNotifierSendsWhaleAlerts(t *testing.T) {
	bot := &fakeBot{}
	n := testNotifier(t, bot, 1_000_000, time.Minute)

	n.Publish(whale("BTC-USD", 2_500_000))
	assert.Eventually(t, func() bool { return bot.count() == 1 }, time.Second, 10*time.Millisecond)

	msg := bot.last()
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "BTC-USD")
	assert.Contains(t, msg.Text, "$2.50M")
	assert.Contains(t, msg.Text, "0x9f8a")
}

func TestNotifierIgnoresSmallEvents(t *testing.T) {
	bot := &fakeBot{}
	n := testNotifier(t, bot, 1_000_000, time.Minute)

	n.Publish(whale("BTC-USD", 500))
	n.Publish(&models.FlowEvent{ID: "x", Type: models.EventDarkFlow, NotionalUSD: 2_000_000})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, bot.count())
}

func TestNotifierCooldownPerSymbol(t *testing.T) {
	bot := &fakeBot{}
	n := testNotifier(t, bot, 1_000_000, time.Hour)

	n.Publish(whale("BTC-USD", 2_000_000))
	n.Publish(whale("BTC-USD", 3_000_000))
	n.Publish(whale("ETH-USD", 4_000_000))

	assert.Eventually(t, func() bool { return bot.count() == 2 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 2, bot.count())
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *Notifier
	n.Publish(whale("BTC-USD", 2_000_000))
}
