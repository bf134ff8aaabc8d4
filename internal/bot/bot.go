package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"jokebot/internal/config"
	"jokebot/internal/database"
	"jokebot/internal/jokeapi"
	"jokebot/internal/models"
	"jokebot/internal/queue"
	"jokebot/pkg/logger"

	"gopkg.in/telebot.v4"
)

var ErrRateLimited = errors.New("telegram rate limited")

// maxBatch is the most jokes the API hands out per request.
const maxBatch = 10

type Bot struct {
	settings telebot.Settings
	jokes    *jokeapi.Client
	userDB   *database.UserRepository
	prefDB   *database.PreferenceRepository
	q        *queue.NATS
	tbot     *telebot.Bot
	cfg      config.BotConfig
}

func New(cfg config.BotConfig, jokes *jokeapi.Client, userDB *database.UserRepository, prefDB *database.PreferenceRepository, q *queue.NATS) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	return &Bot{
		cfg:    cfg,
		jokes:  jokes,
		userDB: userDB,
		prefDB: prefDB,
		q:      q,
		settings: telebot.Settings{
			Token:  cfg.Token,
			Poller: &telebot.LongPoller{Timeout: 10},
		},
	}, nil
}

func (b *Bot) Start() (*telebot.Bot, error) {
	tbot, err := telebot.NewBot(b.settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.tbot = tbot
	b.setupHandlers(tbot)

	go b.startDeliveryConsumer(context.Background())

	go tbot.Start()

	return tbot, nil
}

func (b *Bot) setupHandlers(bot *telebot.Bot) {
	bot.Handle(telebot.OnText, func(c telebot.Context) error {
		logger.Info("Incoming text message",
			logger.Int64("user_id", c.Sender().ID),
			logger.String("username", c.Sender().Username),
			logger.String("text", c.Text()),
		)
		return b.handleText(c)
	})

	bot.Handle("/start", b.handleStart)
	bot.Handle("/joke", b.handleJoke)
	bot.Handle("/jokes", b.handleJokes)
	bot.Handle("/setlang", b.handleSetLang)
	bot.Handle("/safe", b.handleSafe)
	bot.Handle("/blacklist", b.handleBlacklist)
	bot.Handle("/subscribe", b.handleSubscribe)
	bot.Handle("/unsubscribe", b.handleUnsubscribe)
	bot.Handle("/settings", b.handleSettings)
	bot.Handle("/stats", b.handleStats)
	bot.Handle("/help", b.handleHelp)
}

func (b *Bot) startDeliveryConsumer(ctx context.Context) {
	if b.q == nil {
		return
	}

	go func() {
		err := b.q.ConsumeDeliveries(ctx, func(msg *queue.DeliveryMessage) error {
			return b.sendMessageWithRetry(msg.ChatID, msg.Text)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Delivery consumer error", logger.Err(err))
		}
	}()
}

func (b *Bot) sendMessageWithRetry(chatID int64, text string) error {
	maxRetries := 3
	retryDelay := time.Second

	for i := 0; i < maxRetries; i++ {
		_, err := b.tbot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
			ParseMode: telebot.ModeMarkdown,
		})

		if err != nil {
			errStr := err.Error()
			if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "rate") {
				logger.Warn("Rate limited, retrying...",
					logger.Int("retry", i+1),
					logger.Int("max_retries", maxRetries),
				)
				time.Sleep(retryDelay)
				retryDelay *= 2
				continue
			}
			return fmt.Errorf("failed to send message: %w", err)
		}
		return nil
	}

	return ErrRateLimited
}

func (b *Bot) handleStart(c telebot.Context) error {
	user := &models.User{
		TelegramID: c.Sender().ID,
		Username:   c.Sender().Username,
		FirstName:  c.Sender().FirstName,
		LastName:   c.Sender().LastName,
	}

	ctx := context.Background()
	if err := b.userDB.Upsert(ctx, user); err != nil {
		logger.Error("Failed to save user", logger.Err(err))
	}

	if _, err := b.prefDB.Get(ctx, c.Chat().ID); errors.Is(err, database.ErrNoPreferences) {
		if err := b.prefDB.Save(ctx, models.DefaultPreferences(c.Chat().ID)); err != nil {
			logger.Error("Failed to save default preferences", logger.Err(err))
		}
	}

	welcome := "*Welcome to Joke Bot!*\n\n" +
		"I fetch jokes from JokeAPI (v2.jokeapi.dev).\n\n" +
		"Commands:\n" +
		"- /joke - Get a joke with your saved filters\n" +
		"- /joke Programming - Get a joke from one category\n" +
		"- /jokes 5 - Get several jokes at once\n" +
		"- /setlang de - Switch joke language\n" +
		"- /safe on|off - Toggle safe mode\n" +
		"- /blacklist nsfw,political - Exclude content\n" +
		"- /subscribe - Daily joke digest\n" +
		"- /settings - Show your filters\n" +
		"- /help - Show this help message"

	return b.queueOrSend(c.Chat().ID, welcome)
}

// preferences loads the chat's saved filters, falling back to the
// defaults when nothing is stored yet or the database is down.
func (b *Bot) preferences(ctx context.Context, chatID int64) *models.ChatPreferences {
	prefs, err := b.prefDB.Get(ctx, chatID)
	if err != nil {
		if !errors.Is(err, database.ErrNoPreferences) {
			logger.Error("Failed to load preferences", logger.Err(err))
		}
		return models.DefaultPreferences(chatID)
	}
	return prefs
}

func (b *Bot) handleJoke(c telebot.Context) error {
	ctx := context.Background()
	prefs := b.preferences(ctx, c.Chat().ID)
	opts := prefs.Options()

	if args := c.Args(); len(args) > 0 {
		cat, ok := parseCategoryArg(args[0])
		if !ok {
			return b.queueOrSend(c.Chat().ID,
				"Unknown category. Pick one of: Misc, Programming, Dark, Pun, Spooky, Christmas")
		}
		opts.Categories = []jokeapi.Category{cat}
	}

	joke, err := b.jokes.FetchOne(ctx, opts)
	if err != nil {
		logger.Error("Failed to fetch joke", logger.Err(err))
		return b.queueOrSend(c.Chat().ID, fetchFailureText(err))
	}

	return b.queueOrSend(c.Chat().ID, formatJoke(joke))
}

func (b *Bot) handleJokes(c telebot.Context) error {
	ctx := context.Background()

	count := 3
	if args := c.Args(); len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return b.queueOrSend(c.Chat().ID, "Usage: /jokes <1-10>")
		}
		count = n
	}
	if count > maxBatch {
		count = maxBatch
	}

	prefs := b.preferences(ctx, c.Chat().ID)
	jokes, err := b.jokes.FetchMany(ctx, count, prefs.Options())
	if err != nil {
		logger.Error("Failed to fetch jokes", logger.Err(err))
		return b.queueOrSend(c.Chat().ID, fetchFailureText(err))
	}

	for _, joke := range jokes {
		if err := b.queueOrSend(c.Chat().ID, formatJoke(joke)); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) handleSetLang(c telebot.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return b.queueOrSend(c.Chat().ID, "Usage: /setlang <en|cs|de|es|fr|pt>")
	}

	lang := jokeapi.ParseLanguage(strings.ToLower(args[0]))
	if lang == jokeapi.LanguageUnknown {
		return b.queueOrSend(c.Chat().ID, "Unknown language code. Supported: en, cs, de, es, fr, pt")
	}

	ctx := context.Background()
	prefs := b.preferences(ctx, c.Chat().ID)
	prefs.Language = lang
	if err := b.prefDB.Save(ctx, prefs); err != nil {
		logger.Error("Failed to save preferences", logger.Err(err))
		return b.queueOrSend(c.Chat().ID, "Failed to save your settings, try again later")
	}

	return b.queueOrSend(c.Chat().ID, fmt.Sprintf("Language set to %s", lang.Code()))
}

func (b *Bot) handleSafe(c telebot.Context) error {
	args := c.Args()
	if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
		return b.queueOrSend(c.Chat().ID, "Usage: /safe on|off")
	}

	ctx := context.Background()
	prefs := b.preferences(ctx, c.Chat().ID)
	prefs.SafeMode = args[0] == "on"
	if err := b.prefDB.Save(ctx, prefs); err != nil {
		logger.Error("Failed to save preferences", logger.Err(err))
		return b.queueOrSend(c.Chat().ID, "Failed to save your settings, try again later")
	}

	if prefs.SafeMode {
		return b.queueOrSend(c.Chat().ID, "Safe mode is on")
	}
	return b.queueOrSend(c.Chat().ID, "Safe mode is off")
}

func (b *Bot) handleBlacklist(c telebot.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return b.queueOrSend(c.Chat().ID,
			"Usage: /blacklist <flags> or /blacklist clear\n"+
				"Flags: nsfw, religious, political, racist, sexist, explicit")
	}

	ctx := context.Background()
	prefs := b.preferences(ctx, c.Chat().ID)

	if args[0] == "clear" {
		prefs.Blacklist = 0
	} else {
		flags := jokeapi.ParseFlags(strings.ToLower(strings.Join(args, ",")))
		if flags == 0 {
			return b.queueOrSend(c.Chat().ID,
				"No recognized flags. Use: nsfw, religious, political, racist, sexist, explicit")
		}
		prefs.Blacklist = flags
	}

	if err := b.prefDB.Save(ctx, prefs); err != nil {
		logger.Error("Failed to save preferences", logger.Err(err))
		return b.queueOrSend(c.Chat().ID, "Failed to save your settings, try again later")
	}

	if prefs.Blacklist == 0 {
		return b.queueOrSend(c.Chat().ID, "Blacklist cleared")
	}
	return b.queueOrSend(c.Chat().ID, "Blacklist set to: "+prefs.Blacklist.String())
}

func (b *Bot) handleSubscribe(c telebot.Context) error {
	return b.setSubscribed(c, true, "Subscribed! You'll get a joke every digest run.")
}

func (b *Bot) handleUnsubscribe(c telebot.Context) error {
	return b.setSubscribed(c, false, "Unsubscribed from the joke digest.")
}

func (b *Bot) setSubscribed(c telebot.Context, subscribed bool, reply string) error {
	ctx := context.Background()
	prefs := b.preferences(ctx, c.Chat().ID)
	prefs.Subscribed = subscribed
	if err := b.prefDB.Save(ctx, prefs); err != nil {
		logger.Error("Failed to save preferences", logger.Err(err))
		return b.queueOrSend(c.Chat().ID, "Failed to save your settings, try again later")
	}
	return b.queueOrSend(c.Chat().ID, reply)
}

func (b *Bot) handleSettings(c telebot.Context) error {
	prefs := b.preferences(context.Background(), c.Chat().ID)

	categories := prefs.CategoriesString()
	if categories == "" {
		categories = "Any"
	}
	lang := prefs.Language.Code()
	if lang == "" {
		lang = "en"
	}
	blacklist := prefs.Blacklist.String()
	if blacklist == "" {
		blacklist = "none"
	}

	text := fmt.Sprintf(
		"*Your settings*\n\n"+
			"Categories: %s\n"+
			"Language: %s\n"+
			"Blacklist: %s\n"+
			"Safe mode: %s\n"+
			"Digest: %s",
		categories, lang, blacklist,
		onOff(prefs.SafeMode), onOff(prefs.Subscribed),
	)
	return b.queueOrSend(c.Chat().ID, text)
}

func (b *Bot) handleStats(c telebot.Context) error {
	ctx := context.Background()
	totalUsers, err := b.userDB.Count(ctx)
	if err != nil {
		return b.queueOrSend(c.Chat().ID, "Failed to get statistics")
	}

	subscribers, _ := b.prefDB.CountSubscribers(ctx)

	stats := fmt.Sprintf(
		"*Bot Statistics*\n\n"+
			"Total users: %d\n"+
			"Digest subscribers: %d",
		totalUsers, subscribers,
	)

	return b.queueOrSend(c.Chat().ID, stats)
}

func (b *Bot) handleHelp(c telebot.Context) error {
	help := "*Help*\n\n" +
		"Commands:\n" +
		"- /start - Start the bot\n" +
		"- /joke [category] - Get a joke\n" +
		"- /jokes <n> - Get up to 10 jokes\n" +
		"- /setlang <code> - Joke language (en, cs, de, es, fr, pt)\n" +
		"- /safe on|off - Toggle safe mode\n" +
		"- /blacklist <flags> - Exclude content, or clear\n" +
		"- /subscribe, /unsubscribe - Joke digest\n" +
		"- /settings - Show your filters\n" +
		"- /stats - Show bot statistics\n" +
		"- /help - Show this help message"

	return b.queueOrSend(c.Chat().ID, help)
}

func (b *Bot) handleText(c telebot.Context) error {
	return b.queueOrSend(c.Chat().ID, "Use /joke to get a joke!")
}

func (b *Bot) queueOrSend(chatID int64, text string) error {
	if b.q != nil {
		msg := &queue.DeliveryMessage{
			ChatID: chatID,
			Text:   text,
		}
		if err := b.q.PublishDelivery(context.Background(), msg); err != nil {
			logger.Error("Failed to queue delivery", logger.Err(err))
		}
		return nil
	}

	_, err := b.tbot.Send(&telebot.Chat{ID: chatID}, text, &telebot.SendOptions{
		ParseMode: telebot.ModeMarkdown,
	})
	return err
}

// parseCategoryArg is forgiving about case, unlike the API itself.
func parseCategoryArg(arg string) (jokeapi.Category, bool) {
	if len(arg) == 0 {
		return 0, false
	}
	name := strings.ToUpper(arg[:1]) + strings.ToLower(arg[1:])
	return jokeapi.ParseCategory(name)
}

func formatJoke(j *jokeapi.Joke) string {
	switch content := j.Content.(type) {
	case jokeapi.Single:
		return fmt.Sprintf("*%s*\n\n%s", j.Category, content.Text)
	case jokeapi.TwoPart:
		return fmt.Sprintf("*%s*\n\n%s\n\n%s", j.Category, content.Setup, content.Delivery)
	default:
		return j.Content.String()
	}
}

func fetchFailureText(err error) string {
	var apiErr *jokeapi.APIError
	if errors.As(err, &apiErr) {
		return "No joke matches your filters. Try /settings or /blacklist clear"
	}
	return "Sorry, no jokes available right now. Try again later!"
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
