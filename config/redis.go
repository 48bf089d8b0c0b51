package config

import (
	"log"
	"strings"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis returns nil when no URL is configured; the availability
// cache treats a nil client as disabled.
func ConnectRedis(redisURL string) *redis.Client {
	redisURL = strings.TrimSpace(redisURL)
	if redisURL == "" {
		log.Println("⚠️  REDIS_URL not set, availability cache disabled")
		return nil
	}

	var opts *redis.Options
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		parsed, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Printf("⚠️  invalid REDIS_URL, availability cache disabled: %v", err)
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: redisURL, DB: 0}
	}

	client := redis.NewClient(opts)
	log.Println("🔧 Redis initialized with address:", opts.Addr)
	return client
}
