package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/leonelquinteros/gotext"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	log "github.com/sirupsen/logrus"

	"overwatch-telegram-bot/config"
	"overwatch-telegram-bot/internal/armory"
	"overwatch-telegram-bot/internal/cache"
	"overwatch-telegram-bot/internal/chart"
	"overwatch-telegram-bot/internal/commands"
	"overwatch-telegram-bot/internal/database"
	"overwatch-telegram-bot/internal/leaderboard"
	"overwatch-telegram-bot/internal/roster"
	"overwatch-telegram-bot/internal/telegram"
	"overwatch-telegram-bot/lib/translation"
)

type BotMetrics struct {
	CommandsProcessed  prometheus.Counter
	MessagesHandled    prometheus.Counter
	ChannelsCount      prometheus.Gauge
	ChannelNames       *prometheus.CounterVec
	ChannelsSet        map[int64]string
	MessagesPerChannel *prometheus.CounterVec
	Mutex              sync.Mutex
}

// cacheStore is a leaderboard store that can drop its expired items.
type cacheStore interface {
	leaderboard.Store
	PurgeExpired(ctx context.Context) (int64, error)
}

var (
	metrics = NewBotMetrics()
)

func init() {
	config.InitConfig()
	setupLogging()
}

func NewBotMetrics() *BotMetrics {
	metrics := &BotMetrics{
		CommandsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "overwatch",
			Subsystem: "telegram_bot",
			Name:      "commands_processed",
			Help:      "The total number of processed commands",
		}),
		MessagesHandled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "overwatch",
			Subsystem: "telegram_bot",
			Name:      "messages_handled",
			Help:      "The total number of handled messages",
		}),
		ChannelsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "overwatch",
			Subsystem: "telegram_bot",
			Name:      "channels_count",
			Help:      "The current number of unique channels the bot is operating in",
		}),
		ChannelNames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "overwatch",
				Subsystem: "telegram_bot",
				Name:      "channel_names",
				Help:      "Tracks channels the bot has interacted with",
			},
			[]string{"chat_id", "chat_name"},
		),
		MessagesPerChannel: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "overwatch",
				Subsystem: "telegram_bot",
				Name:      "messages_per_channel",
				Help:      "The total number of messages handled per channel",
			},
			[]string{"chat_id", "chat_name"},
		),
		ChannelsSet: make(map[int64]string),
	}

	prometheus.MustRegister(metrics.CommandsProcessed)
	prometheus.MustRegister(metrics.MessagesHandled)
	prometheus.MustRegister(metrics.ChannelsCount)
	prometheus.MustRegister(metrics.ChannelNames)
	prometheus.MustRegister(metrics.MessagesPerChannel)

	return metrics
}

func main() {
	gotext.Configure("locales", strings.ToLower(config.GetString("lang")), "default")
	log.Debugf("Using language %s", translation.GetLanguage())

	store := openStore(config.GetString("db_path"))
	defer database.CloseDB()

	LoadMetricsFromDB()

	client := armory.NewClient(armory.Config{
		BaseURL: config.GetString("armory_base_url"),
		Timeout: config.GetDuration("http_timeout"),
	})

	data := roster.New()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration("command_timeout"))
		defer cancel()

		if err := data.Load(ctx, client); err != nil {
			log.Fatalf("Failed to load hero and season data: %v", err)
		}
	}()

	renderer, err := chart.NewRenderer(config.GetString("font_path"))
	if err != nil {
		log.Fatalf("Failed to create chart renderer: %v", err)
	}

	service := &commands.Service{
		Roster:       data,
		Leaderboards: leaderboard.New(client, store, config.GetDuration("cache_ttl")),
		Renderer:     renderer,
		Pictures:     client,
		StrictRank:   config.GetBool("rank_strict"),
	}

	bot, err := telegram.NewBot(telegram.BotConfig{
		Token:          config.GetString("telegram_bot_token"),
		Debug:          config.GetBool("debug"),
		UpdatesTimeout: 60,
		SourceURL:      config.GetString("armory_base_url"),
	}, service)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	updates, err := bot.GetUpdatesChannel()
	if err != nil {
		log.Fatalf("Failed to get updates channel: %v", err)
	}

	go handleUpdates(bot, updates)

	go func() {
		for {
			time.Sleep(5 * time.Minute)
			SaveMetricsToDB()
			purgeExpired(store)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		SaveMetricsToDB()
		database.CloseDB()
		log.Println("Metrics saved, shutting down...")
		os.Exit(0)
	}()

	if err := launchMetricsAndHealthServer(config.GetInt("metrics_port")); err != nil {
		log.Fatalf("Failed to start metrics and health server: %v", err)
	}
}

func setupLogging() {
	log.SetLevel(log.ErrorLevel)
	if config.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}
	log.Debug("Starting telegram bot...")
}

// openStore returns the sqlite cache store, or an in-memory one when no
// database path is configured.
func openStore(dbPath string) cacheStore {
	if dbPath == "" {
		log.Info("No database path configured, caching in memory")
		return cache.NewMemoryStore()
	}

	if err := database.InitDB(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	return database.NewCacheStore(database.DB)
}

func purgeExpired(store cacheStore) {
	purged, err := store.PurgeExpired(context.Background())
	if err != nil {
		log.Errorf("Failed to purge expired cache entries: %v", err)
		return
	}
	log.Debugf("Purged %d expired cache entries", purged)
}

func handleUpdates(bot *telegram.Bot, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			log.Debug("Received non-message update")
			continue
		}

		if _, ok := telegram.RequestFromMessage(update.Message); !ok {
			continue
		}

		metrics.MessagesHandled.Inc()

		chatID := update.Message.Chat.ID
		chatName := update.Message.Chat.Title
		if chatName == "" {
			chatName = fmt.Sprintf("%s-%d", "PrivateChat", chatID)
		}

		updateChannelsSet(chatID, chatName)

		metrics.MessagesPerChannel.WithLabelValues(
			fmt.Sprintf("%d", chatID), chatName,
		).Inc()

		go handleCommand(bot, update)
	}
}

func handleCommand(bot *telegram.Bot, update tgbotapi.Update) {
	logger := log.WithFields(log.Fields{
		"request_id": uuid.NewString(),
		"chat_id":    update.Message.Chat.ID,
	})

	defer func() {
		if r := recover(); r != nil {
			stackBuf := make([]byte, 1024)
			stackSize := runtime.Stack(stackBuf, false)
			stackTrace := bytes.TrimRight(stackBuf[:stackSize], "\x00")
			logger.Errorf("Recovered from panic: %v\nStack trace: %s", r, stackTrace)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration("command_timeout"))
	defer cancel()

	logger.Debugf("Handling message: %s", update.Message.Text)
	if err := bot.HandleUpdate(ctx, update); err != nil {
		logger.Errorf("Failed to send reply: %v", err)
		return
	}
	metrics.CommandsProcessed.Inc()
}

func updateChannelsSet(chatID int64, chatName string) {
	metrics.Mutex.Lock()
	defer metrics.Mutex.Unlock()

	if _, exists := metrics.ChannelsSet[chatID]; !exists {
		metrics.ChannelsSet[chatID] = chatName
		metrics.ChannelsCount.Set(float64(len(metrics.ChannelsSet)))

		metrics.ChannelNames.WithLabelValues(fmt.Sprintf("%d", chatID), chatName).Inc()
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func launchMetricsAndHealthServer(port int) error {
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/health", healthCheckHandler)

	log.Infof("Launching metrics and health endpoint on :%d", port)
	return http.ListenAndServe(fmt.Sprintf(":%d", port), http.DefaultServeMux)
}

func LoadMetricsFromDB() {
	if database.DB == nil {
		return
	}

	metrics.Mutex.Lock()
	defer metrics.Mutex.Unlock()

	commandsProcessed, _ := database.GetMetric("commands_processed")
	messagesHandled, _ := database.GetMetric("messages_handled")
	channelsCount, _ := database.GetMetric("channels_count")

	metrics.CommandsProcessed.Add(commandsProcessed)
	metrics.MessagesHandled.Add(messagesHandled)
	metrics.ChannelsCount.Set(channelsCount)

	loadLabeledMetrics("channel_names", func(chatIDStr, chatName string, _ float64) {
		chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			log.Printf("Failed to parse chatID %s: %v", chatIDStr, err)
			return
		}
		metrics.ChannelNames.WithLabelValues(chatIDStr, chatName).Add(1)
		metrics.ChannelsSet[chatID] = chatName
	})

	loadLabeledMetrics("messages_per_channel", func(chatID, chatName string, value float64) {
		metrics.MessagesPerChannel.WithLabelValues(chatID, chatName).Add(value)
	})

	log.Println("Metrics loaded from database.")
}

func loadLabeledMetrics(metricName string, callback func(labelKey, labelValue string, value float64)) {
	metricsWithLabels, _ := database.GetMetricsWithLabels(metricName)
	for labelKey, labelValues := range metricsWithLabels {
		for labelValue, value := range labelValues {
			callback(labelKey, labelValue, value)
		}
	}
}

func SaveMetricsToDB() {
	if database.DB == nil {
		return
	}

	metrics.Mutex.Lock()
	defer metrics.Mutex.Unlock()

	saveMetric("commands_processed", GetMetricValue(metrics.CommandsProcessed))
	saveMetric("messages_handled", GetMetricValue(metrics.MessagesHandled))
	saveMetric("channels_count", float64(len(metrics.ChannelsSet)))

	for chatID, chatName := range metrics.ChannelsSet {
		if err := database.SaveMetricWithLabels("channel_names", fmt.Sprintf("%d", chatID), chatName, float64(chatID)); err != nil {
			log.Errorf("Failed to save channel %d: %v", chatID, err)
		}
	}

	metricChan := make(chan prometheus.Metric, 1)
	go func() {
		metrics.MessagesPerChannel.Collect(metricChan)
		close(metricChan)
	}()

	for metric := range metricChan {
		metricProto := &dto.Metric{}
		if err := metric.Write(metricProto); err != nil {
			log.Printf("Failed to read MessagesPerChannel metric: %v", err)
			continue
		}
		var chatID, chatName string
		for _, label := range metricProto.Label {
			if label.GetName() == "chat_id" {
				chatID = label.GetValue()
			}
			if label.GetName() == "chat_name" {
				chatName = label.GetValue()
			}
		}
		if err := database.SaveMetricWithLabels("messages_per_channel", chatID, chatName, metricProto.Counter.GetValue()); err != nil {
			log.Errorf("Failed to save messages of chat %s: %v", chatID, err)
		}
	}

	log.Println("Metrics saved to database.")
}

func saveMetric(name string, value float64) {
	if err := database.SaveMetric(name, value); err != nil {
		log.Errorf("Failed to save metric %s: %v", name, err)
	}
}

func GetMetricValue(metric prometheus.Collector) float64 {
	var metricValue float64
	metricChan := make(chan prometheus.Metric, 1)
	metric.Collect(metricChan)
	close(metricChan)

	metricProto := &dto.Metric{}
	if err := (<-metricChan).Write(metricProto); err != nil {
		log.Printf("Failed to read metric value: %v", err)
		return 0
	}

	if metricProto.Counter != nil {
		metricValue = metricProto.Counter.GetValue()
	} else if metricProto.Gauge != nil {
		metricValue = metricProto.Gauge.GetValue()
	}
	return metricValue
}
