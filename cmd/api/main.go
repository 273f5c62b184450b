package main

import (
	"context"
	"os"
	"time"

	"Vibe_Tribe/internal/config"
	"Vibe_Tribe/internal/handler"
	"Vibe_Tribe/internal/model"
	"Vibe_Tribe/internal/pkg"
	"Vibe_Tribe/internal/repository/mysql"
	"Vibe_Tribe/internal/repository/redis"
	"Vibe_Tribe/internal/router"
	"Vibe_Tribe/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	logger, err := pkg.NewLogger(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	pkg.InitSecrets(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret)

	if err := mysql.InitDB(cfg.MySQL.DSN); err != nil {
		logger.Fatal("mysql init failed", zap.Error(err))
	}

	if err := redis.Init(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Conversation{},
		&model.ConversationReply{},
		&model.Event{},
		&model.EventGuest{},
		&model.MembershipOutbox{},
	)

	kafkaCfg := pkg.KafkaConfig{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}
	producer, err := pkg.NewKafkaProducer(kafkaCfg)
	if err != nil {
		logger.Fatal("kafka producer init failed", zap.Error(err))
	}
	defer producer.Close()
	consumer := pkg.NewKafkaConsumer(kafkaCfg, cfg.Kafka.GroupID)
	defer consumer.Close()

	scopeCache := redis.NewScopeCacheRepository(time.Duration(cfg.Circle.ScopeTTLSeconds) * time.Second)

	circleSvc := service.NewCircleService(
		mysql.NewCircleStore(mysql.DB),
		cfg.Circle.MaxCommunities,
		cfg.Circle.MaxUsers,
	)
	circleSvc.SetCache(scopeCache)
	feedSvc := service.NewFeedService(circleSvc, mysql.NewFeedStore(mysql.DB), logger)

	// 后台：outbox 投递 + 成员变更事件消费
	ctx := context.Background()
	relayer := service.NewOutboxRelayer(service.KafkaSender(producer), logger)
	go relayer.Run(ctx)
	worker := service.NewInvalidationWorker(consumer, scopeCache, logger)
	go worker.Run(ctx)

	r := router.InitRouter(router.Handlers{
		User:         handler.NewUserHandler(service.NewUserService()),
		Community:    handler.NewCommunityHandler(service.NewCommunityService(scopeCache)),
		Conversation: handler.NewConversationHandler(service.NewConversationService()),
		Event:        handler.NewEventHandler(service.NewEventService()),
		Feed:         handler.NewFeedHandler(feedSvc, circleSvc),
	})

	if err := r.Run(cfg.Server.Addr); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
