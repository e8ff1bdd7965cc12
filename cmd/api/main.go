package main

import (
	"context"
	"log"
	"time"

	"neighbourhood/internal/config"
	"neighbourhood/internal/model"
	"neighbourhood/internal/pkg"
	"neighbourhood/internal/repository/mysql"
	"neighbourhood/internal/repository/redis"
	"neighbourhood/internal/router"
	"neighbourhood/internal/service"
)

func main() {
	cfg := config.Load()

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		panic(err)
	}

	// 连接redis
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		panic(err)
	}

	// 自动建表（开发阶段 OK）
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.CommunityModerator{},
		&model.CommunityTag{},
		&model.CommunityRule{},
		&model.KickedMember{},
		&model.Post{},
		&model.PostTag{},
		&model.Comment{},
		&model.CommentVote{},
		&model.CommentEdit{},
		&model.Flag{},
		&model.FlagReporter{},
		&model.Options{},
		&model.ModerationOutbox{},
	)

	optsSvc := service.NewOptionsService(mysql.DB, redis.NewOptionsCacheRepository())
	if err := optsSvc.SeedDefaults(); err != nil {
		panic(err)
	}
	seedWelcome()

	// 审核事件投递：无 kafka 配置时降级为日志输出
	sender := service.LogSender
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaBrokers[0] != "" {
		producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		})
		if err != nil {
			panic(err)
		}
		defer producer.Close()
		sender = service.KafkaSender(producer)
	}
	relayer := service.NewOutboxRelayer(mysql.DB, sender)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayer.Run(ctx)

	// Gin
	r := router.InitRouter(cfg)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatal(err)
	}
}

// seedWelcome 默认社区，最后一个成员退出也不会被移除
func seedWelcome() {
	var community model.Community
	err := mysql.DB.Where("title = ?", model.WelcomeCommunity).First(&community).Error
	if err == nil {
		return
	}
	community = model.Community{
		Title:          model.WelcomeCommunity,
		Description:    "A place for everyone to get started.",
		LatestActivity: time.Now(),
	}
	if err := mysql.DB.Create(&community).Error; err != nil {
		log.Printf("seed welcome community err: %v", err)
	}
}
