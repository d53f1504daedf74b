package bootstrap

import (
	"context"
	"log"
	"time"

	"mini-shop-be/internal/config"
	"mini-shop-be/internal/controller"
	"mini-shop-be/internal/pkg/logger"
	"mini-shop-be/internal/repository/memory"
	"mini-shop-be/internal/repository/paymentstore"
	"mini-shop-be/internal/service"
	"mini-shop-be/internal/websocket"
	"mini-shop-be/pkg/admin/dashboard"
	pktNats "mini-shop-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

const paymentEventsTopic = "PAYMENT_EVENTS"

type Container struct {
	// Controllers
	PaymentController controller.IPaymentController
	AdminController   controller.IAdminController

	// Background Services (Exposed for main.go to run)
	EmitterService service.IEmitterService

	// WebSockets
	WebSocketHub *websocket.Hub
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	store := paymentstore.New(cfg.Store.DataFilePath, sysLogger)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS mirror is optional; everything works without it.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		var err error
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		}
	}

	// Redis fanout is optional too; the hub runs single-instance without it.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, store, wsLogger)
	go wsHub.Run()

	// 3. Services
	paymentService := service.NewPaymentService(store, pubSub, paymentEventsTopic, sysLogger)
	emitterService := service.NewEmitterService(pubSub, paymentEventsTopic, wsHub, natsPub, wsLogger)

	sessions := memory.NewSessionRepository(time.Duration(cfg.Admin.SessionTTLHours) * time.Hour)
	aggregator := dashboard.NewAggregator(sysLogger)
	adminService := service.NewAdminService(cfg.Admin, sessions, aggregator, sysLogger)

	// 4. Controllers
	paymentController := controller.NewPaymentController(paymentService, cfg.App.UploadDir)
	adminController := controller.NewAdminController(adminService, paymentService)

	return &Container{
		PaymentController: paymentController,
		AdminController:   adminController,
		EmitterService:    emitterService,
		WebSocketHub:      wsHub,
	}
}
