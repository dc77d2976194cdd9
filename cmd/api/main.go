package main

import (
	"log"

	"github.com/ErzenXz/monolith/internal/broker"
	"github.com/ErzenXz/monolith/internal/config"
	"github.com/ErzenXz/monolith/internal/server"
	"github.com/ErzenXz/monolith/pkg/db/aws"
	"github.com/ErzenXz/monolith/pkg/db/redis"
	"github.com/ErzenXz/monolith/pkg/logger"
)

func main() {
	log.Println("Starting server")
	configFile := "config.yml"
	cfgFile, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("loadConfig: %v", err)
	}
	cfg, err := config.ParseConfig(cfgFile)
	if err != nil {
		log.Fatalf("parseConfig: %v", err)
	}
	appLogger := logger.NewApiLogger(cfg)
	appLogger.InitLogger()
	appLogger.Infof("AppVersion: %s, LogLevel: %s, Mode: %s", cfg.Server.AppVersion, cfg.Logger.Level, cfg.Server.Mode)

	redisClient, err := redis.NewRedisClient(cfg)
	if err != nil {
		appLogger.Fatalf("could not connect to redis: %s", err)
	}
	defer redisClient.Close()
	appLogger.Infof("redis connected")

	s3Client, err := aws.NewAWSClient(cfg.S3.Endpoint, cfg.S3.Region, cfg.S3.AccessKey, cfg.S3.SecretKey)
	if err != nil {
		appLogger.Fatalf("could not connect to s3: %s", err)
	}

	publisher := broker.NewHTTPPublisher(cfg, appLogger)
	publisher.Start()
	defer publisher.Stop()

	s := server.NewServer(cfg, redisClient, s3Client, publisher, appLogger)
	if err = s.Run(); err != nil {
		appLogger.Infof("could not start server: %s", err)
	}
}
