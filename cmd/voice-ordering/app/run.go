package app

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/darkangel00016/Voice-Ordering2/configs"
	rediscache "github.com/darkangel00016/Voice-Ordering2/internal/adapter/cache"
	"github.com/darkangel00016/Voice-Ordering2/internal/adapter/fulfillment"
	httpadapter "github.com/darkangel00016/Voice-Ordering2/internal/adapter/http"
	"github.com/darkangel00016/Voice-Ordering2/internal/adapter/kafka"
	"github.com/darkangel00016/Voice-Ordering2/internal/adapter/llm"
	"github.com/darkangel00016/Voice-Ordering2/internal/adapter/menu"
	"github.com/darkangel00016/Voice-Ordering2/internal/adapter/queue"
	"github.com/darkangel00016/Voice-Ordering2/internal/logging"
	"github.com/darkangel00016/Voice-Ordering2/internal/match"
	"github.com/darkangel00016/Voice-Ordering2/internal/usecase"
)

type App struct {
	Router *gin.Engine
}

func InitWithConfig(cfg configs.Config) (*App, func(), error) {
	// init logger
	logging.Init(cfg.App.Name, cfg.App.LogFile, cfg.App.LogLevel)
	log := logging.New("app")
	log.Info("voice-ordering: starting up")

	// init redis (session store + turn locks)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, nil, err
	}

	// init rabbitmq producer
	conn, err := amqp091.Dial(cfg.Rabbit.URL)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	producer, err := queue.NewRabbitProducer(ch, cfg.Rabbit.Exchange, cfg.Rabbit.RoutingKey)
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}

	// menu: HTTP source behind an owned TTL cache
	menuCache := menu.NewCache(menu.NewHTTPSource(cfg.Menu.BaseURL, cfg.HTTP.ReadTimeout), cfg.Menu.CacheTTL)

	// reply generator
	generator := llm.NewOpenAIGenerator(llm.Config{
		Endpoint:    cfg.LLM.Endpoint,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	})

	// fulfillment behind the retry policy
	gateway := fulfillment.NewRetryPolicy(
		fulfillment.NewClient(cfg.Fulfillment.BaseURL, cfg.Fulfillment.Timeout),
		cfg.Fulfillment.MaxRetries,
		cfg.Fulfillment.InitialDelay,
		cfg.Fulfillment.BackoffMultiplier,
	)

	// core engine
	store := rediscache.NewRedisConversationStore(rdb, cfg.Redis.SessionTTL)
	lock := rediscache.NewRedisTurnLock(rdb, cfg.Redis.TurnLockTTL)
	validator := usecase.NewOrderValidator(cfg.Pricing.TaxRate)
	matcher := match.NewMatcher(match.EnglishLocale())
	turn := usecase.NewProcessTurn(menuCache, generator, matcher, validator, cfg.Menu.SummaryCap)
	submit := usecase.NewSubmitOrder(store, menuCache, validator, gateway, producer, cfg.Pricing.Currency)

	// fulfillment status pass-through (kafka)
	kafkaCtx, kafkaCancel := context.WithCancel(context.Background())
	if err := setupKafkaListener(kafkaCtx, cfg, store); err != nil {
		kafkaCancel()
		_ = conn.Close()
		return nil, nil, err
	}

	// http surface
	h := httpadapter.NewConversationHandler(store, lock, turn, submit, validator, menuCache, cfg.HTTP.TurnTimeout)
	router := httpadapter.NewRouter(h)

	cleanup := func() {
		kafkaCancel()
		_ = ch.Close()
		_ = conn.Close()
		_ = rdb.Close()
	}

	return &App{Router: router}, cleanup, nil
}

func setupKafkaListener(ctx context.Context, cfg configs.Config, store usecase.ConversationStore) error {
	grp, err := kafka.NewGroup(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
	if err != nil {
		return err
	}

	h := kafka.NewOrderStatusChangedHandler(store)
	consumer := kafka.NewConsumer(grp, []string{cfg.Kafka.StatusTopic}, h.Handle)
	consumer.Logger = logging.New("kafka")

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logging.New("kafka").Error("consumer stopped", "error", err)
		}
	}()
	return nil
}
