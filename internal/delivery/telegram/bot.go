package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	domsvc "CoinPulse/internal/domain/service"
	"CoinPulse/pkg/logger"
)

const (
	pollTimeoutSec = 30
	pollRetryDelay = 3 * time.Second
	quoteFreshFor  = 10 * time.Second
)

// QuoteSource serves last streamed prices, if a stream is running.
type QuoteSource interface {
	Latest(symbol string) (models.Quote, bool)
}

// Bot is the Telegram front end: it long-polls getUpdates and answers the
// prediction, price, analysis, sentiment, news and train commands.
type Bot struct {
	api       *API
	trainer   domsvc.Trainer
	predictor domsvc.Predictor
	news      domsvc.NewsProvider
	source    drepo.MarketDataSource
	quotes    QuoteSource
	watchlist []string
	log       *logger.Logger
}

// NewBot wires the bot against the domain services. quotes may be nil
// when no live stream is configured.
func NewBot(
	api *API,
	trainer domsvc.Trainer,
	predictor domsvc.Predictor,
	news domsvc.NewsProvider,
	source drepo.MarketDataSource,
	quotes QuoteSource,
	watchlist []string,
	log *logger.Logger,
) *Bot {
	return &Bot{
		api:       api,
		trainer:   trainer,
		predictor: predictor,
		news:      news,
		source:    source,
		quotes:    quotes,
		watchlist: watchlist,
		log:       log,
	}
}

// Run long-polls until the context is canceled. Poll errors back off and
// retry; a dead Telegram connection must not take the process down.
func (b *Bot) Run(ctx context.Context) error {
	b.log.Info("telegram bot polling started")
	var offset int64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		updates, err := b.api.GetUpdates(ctx, offset, pollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			b.log.Warn("telegram poll failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(pollRetryDelay):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			b.handleMessage(ctx, u.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *Message) {
	command, args := parseCommand(msg.Text)
	if command == "" {
		return
	}
	b.log.Debug("telegram command",
		logger.String("command", command),
		logger.Strings("args", args),
		logger.Int64("chat_id", msg.Chat.ID))

	var reply string
	switch command {
	case "start", "help":
		reply = helpText
	case "predict":
		reply = b.handlePredict(ctx, args)
	case "price":
		reply = b.handlePrice(ctx, args)
	case "analysis":
		reply = b.handleAnalysis(ctx, args)
	case "sentiment":
		reply = b.handleSentiment(ctx)
	case "news":
		reply = b.handleNews(ctx)
	case "train":
		reply = b.handleTrain(ctx, args)
	default:
		reply = "Unknown command. Try /help."
	}

	if err := b.api.SendMessage(ctx, msg.Chat.ID, reply); err != nil {
		b.log.Error("telegram reply failed",
			logger.Int64("chat_id", msg.Chat.ID), logger.Error(err))
	}
}

func (b *Bot) handlePredict(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /predict <symbol> [hours]"
	}
	symbol := drepo.NormalizeSymbol(args[0])
	horizon := 0
	if len(args) > 1 {
		h, err := strconv.Atoi(args[1])
		if err != nil || h <= 0 || h > 168 {
			return "Horizon must be 1-168 hours."
		}
		horizon = h
	}

	pred, err := b.predictor.Predict(ctx, symbol, horizon)
	if err != nil {
		return errorReply(symbol, err)
	}
	return PredictionMessage(pred)
}

func (b *Bot) handlePrice(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /price <symbol>"
	}
	symbol := drepo.NormalizeSymbol(args[0])

	ticker, err := b.source.GetTicker24h(ctx, symbol)
	if err != nil {
		return errorReply(symbol, err)
	}
	// Prefer the streamed price when it is fresher than the REST snapshot.
	if b.quotes != nil {
		if q, ok := b.quotes.Latest(symbol); ok && time.Since(q.Timestamp) < quoteFreshFor {
			ticker.LastPrice = q.Price
		}
	}
	return PriceMessage(ticker)
}

func (b *Bot) handleAnalysis(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /analysis <symbol>"
	}
	symbol := drepo.NormalizeSymbol(args[0])

	summary, err := b.predictor.Analyze(ctx, symbol)
	if err != nil {
		return errorReply(symbol, err)
	}
	return AnalysisMessage(summary)
}

func (b *Bot) handleSentiment(ctx context.Context) string {
	sentiment, err := b.predictor.MarketSentiment(ctx, b.watchlist)
	if err != nil {
		return errorReply("market", err)
	}
	return SentimentMessage(sentiment)
}

func (b *Bot) handleNews(ctx context.Context) string {
	articles, err := b.news.LatestNews(ctx, 5)
	if err != nil {
		return errorReply("news", err)
	}
	return NewsMessage(articles)
}

func (b *Bot) handleTrain(ctx context.Context, args []string) string {
	if len(args) == 0 {
		return "Usage: /train <symbol>"
	}
	symbol := drepo.NormalizeSymbol(args[0])

	report, err := b.trainer.Train(ctx, symbol, true)
	if err != nil {
		return errorReply(symbol, err)
	}
	return TrainingMessage(report)
}

// errorReply maps pipeline errors to user-facing messages.
func errorReply(subject string, err error) string {
	switch {
	case errors.Is(err, models.ErrDataUnavailable):
		return fmt.Sprintf("⚠️ Not enough market data for %s right now. Try again later.", subject)
	case errors.Is(err, models.ErrInsufficientData):
		return fmt.Sprintf("⚠️ %s has too little usable history to model.", subject)
	case errors.Is(err, models.ErrModelUnavailable):
		return fmt.Sprintf("⚠️ No model available for %s yet. Run /train %s first.", subject, subject)
	default:
		return fmt.Sprintf("❌ Something went wrong handling %s.", subject)
	}
}

// parseCommand splits "/predict@SomeBot BTC 12" into "predict" and its args.
func parseCommand(text string) (string, []string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil
	}
	fields := strings.Fields(text)
	command := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(command, '@'); at >= 0 {
		command = command[:at]
	}
	return strings.ToLower(command), fields[1:]
}
