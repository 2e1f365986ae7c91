package models

import (
	"fmt"
	"log"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// InitRedis initializes the Redis connection used by the rate limiters.
func InitRedis(cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	log.Println("Redis connection established")
	return client
}
