package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"vkconnect/api/middleware"
	"vkconnect/api/routes"
	"vkconnect/config"
	"vkconnect/db"
	"vkconnect/services"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	err := config.LoadConfig(configPath)
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	log.Println("Starting server...")

	if err = db.ConnectDB(); err != nil {
		panic("Failed to connect to the database: " + err.Error())
	}

	// Redis and RabbitMQ are optional: without them notifications fall
	// back to direct delivery and the fallback cache is skipped.
	if err = services.InitRedis(); err != nil {
		log.Println("Redis unavailable, continuing without cache:", err)
	}
	if err = services.InitRabbitMQ(); err != nil {
		log.Println("RabbitMQ unavailable, continuing without broker:", err)
	}

	ctx := context.Background()
	if services.QueueServiceInstance != nil {
		services.QueueServiceInstance.StartWorkers(ctx)
	}
	if err = services.StartPostEventConsumer(ctx, "post_events_ws"); err != nil {
		log.Println("Post event consumer not started:", err)
	}

	router := gin.New()
	router.Use(middleware.PrometheusMiddleware("vkconnect"))
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	routes.PublicApi(router)

	addr := fmt.Sprintf("%s:%d", config.AppConfig.Backend.Host, config.AppConfig.Backend.Port)
	if err := router.Run(addr); err != nil {
		panic(err)
	}
}
