package main

import (
	"flag"
	"log/slog"

	"ShopDesk/entity"
	"ShopDesk/impl/core"
	"ShopDesk/internal/chat"
	"ShopDesk/internal/config"
	repository "ShopDesk/internal/database"
	"ShopDesk/internal/http-server/api"
	"ShopDesk/internal/lib/logger"
	"ShopDesk/internal/lib/sl"
	"ShopDesk/internal/service/assist"
	"ShopDesk/internal/service/notify"
	"ShopDesk/internal/ws"
)

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	notifier, err := notify.NewTelegramNotifier(conf, lg)
	if err != nil {
		lg.Error("failed to initialize telegram notifier", sl.Err(err))
	}
	if notifier != nil {
		// forward error-level log records to the admin chat
		lg = logger.SetupTelegramHandler(lg, notifier, slog.LevelError)
		lg.With(
			slog.String("bot_name", conf.Telegram.BotName),
		).Info("telegram notifier initialized")
	}

	lg.Info("starting shopdesk", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(sl.Err(err)).Error("mongo client")
	}
	if db == nil {
		lg.Error("mongo is required, enable it in config")
		return
	}
	if err := db.EnsureConversationIndexes(); err != nil {
		lg.With(sl.Err(err)).Error("ensure conversation indexes")
	}
	if err := db.EnsureMessageIndexes(); err != nil {
		lg.With(sl.Err(err)).Error("ensure message indexes")
	}
	lg.With(
		slog.String("host", conf.Mongo.Host),
		slog.String("port", conf.Mongo.Port),
		slog.String("user", conf.Mongo.User),
		slog.String("database", conf.Mongo.Database),
	).Info("mongo client initialized")

	messages := chat.NewMessageStore(db, lg)
	conversations := chat.NewConversationStore(db, messages, lg)
	presence := chat.NewPresenceTracker()
	typing := chat.NewTypingChannel()

	autoReplyDefaults := entity.AutoReplySettings{
		Enabled:                 conf.Chat.AutoReply.Enabled,
		Message:                 conf.Chat.AutoReply.Message,
		DelaySeconds:            conf.Chat.AutoReply.DelaySeconds,
		SuppressAfterAgentReply: conf.Chat.AutoReply.SuppressAfterAgentReply,
	}
	autoReply := chat.NewAutoReplyScheduler(messages, presence, db, autoReplyDefaults, lg)

	deps := chat.Deps{
		Log:           lg,
		Messages:      messages,
		Conversations: conversations,
		Presence:      presence,
		Typing:        typing,
		AutoReply:     autoReply,
		TypingQuiet:   conf.Chat.TypingQuietMs,
	}
	if notifier != nil {
		deps.Notifier = notifier
	}

	handler.SetChat(deps)
	handler.SetFileRepository(db)
	handler.SetSettingsRepository(db)

	assistant := assist.NewService(conf, lg)
	if assistant != nil {
		handler.SetAssistant(assistant)
		lg.With(
			sl.Secret("openai_key", conf.OpenAI.ApiKey),
			slog.String("model", conf.OpenAI.Model),
		).Info("assistant initialized")
	}

	hub := ws.NewHub(lg)
	go hub.Run()
	ws.Bind(hub, conversations, presence)

	// *** blocking start with http server ***
	err = api.New(conf, lg, handler, hub)
	if err != nil {
		lg.Error("server start", sl.Err(err))
		return
	}
	lg.Error("service stopped")
}
