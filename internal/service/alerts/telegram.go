package alerts

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"darkflow/internal/domain/models"
	"darkflow/pkg/format"
	"darkflow/pkg/logger"
)

// sender is the subset of the bot API the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes large-transfer alerts to a Telegram chat. Events
// below the notional threshold or inside the per-symbol cooldown are
// ignored.
type Notifier struct {
	bot         sender
	chatID      int64
	minNotional float64
	cooldown    time.Duration
	limiter     *rate.Limiter
	log         *logger.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
}

// New connects the bot. A missing token disables notifications and
// returns a nil Notifier, which is safe to use.
func New(token string, chatID int64, minNotional float64, cooldown time.Duration, log *logger.Logger) (*Notifier, error) {
	if token == "" || chatID == 0 {
		log.Info("telegram notifications disabled")
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	log.Info("telegram notifier ready", logger.String("account", bot.Self.UserName))
	return newWithSender(bot, chatID, minNotional, cooldown, log), nil
}

func newWithSender(bot sender, chatID int64, minNotional float64, cooldown time.Duration, log *logger.Logger) *Notifier {
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Notifier{
		bot:         bot,
		chatID:      chatID,
		minNotional: minNotional,
		cooldown:    cooldown,
		// telegram caps bots around 30 msg/s, stay well below
		limiter:  rate.NewLimiter(rate.Limit(1), 5),
		log:      log,
		lastSent: make(map[string]time.Time),
	}
}

// Publish sends an alert for whale-sized events. Nil receivers drop
// everything so the notifier can be wired unconditionally.
func (n *Notifier) Publish(ev *models.FlowEvent) {
	if n == nil || ev == nil {
		return
	}
	if !ev.IsWhale(n.minNotional) {
		return
	}
	if !n.allowSymbol(ev.Symbol) {
		return
	}
	if !n.limiter.Allow() {
		n.log.Debug("telegram rate limited", logger.String("symbol", ev.Symbol))
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, formatAlert(ev))
	msg.ParseMode = tgbotapi.ModeMarkdown
	go func() {
		if _, err := n.bot.Send(msg); err != nil {
			n.log.Warn("telegram send failed", logger.Error(err))
		}
	}()
}

func (n *Notifier) allowSymbol(symbol string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := time.Now()
	if last, ok := n.lastSent[symbol]; ok && now.Sub(last) < n.cooldown {
		return false
	}
	n.lastSent[symbol] = now
	return true
}

func formatAlert(ev *models.FlowEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Whale transfer* %s\n", ev.Symbol)
	fmt.Fprintf(&b, "Notional: %s\n", format.USD(ev.NotionalUSD))
	if ev.Side != "" {
		fmt.Fprintf(&b, "Side: %s\n", strings.ToUpper(ev.Side))
	}
	if ev.Exchange != "" {
		fmt.Fprintf(&b, "Exchange: %s\n", ev.Exchange)
	}
	if ev.Wallet != "" {
		fmt.Fprintf(&b, "Wallet: `%s`\n", format.ShortAddr(ev.Wallet))
	}
	if !ev.Timestamp.IsZero() {
		fmt.Fprintf(&b, "Seen: %s", format.TimeAgo(ev.Timestamp))
	}
	return b.String()
}
