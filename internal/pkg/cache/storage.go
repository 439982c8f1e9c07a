package cache

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/storage/redis"
)

// LimiterDatabase keeps rate limiter counters away from the job queue keys in DB 0.
const LimiterDatabase = 1

// NewFiberStorage returns a fiber.Storage on the same Redis server as the
// cache client, or nil when Redis is unreachable so callers can fall back
// to fiber's in-memory storage.
func NewFiberStorage(database int) fiber.Storage {
	client := GetClient()

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warnf("[Cache] Redis unavailable for fiber storage, using memory: %v", err)
		return nil
	}

	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(client.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: client.Options().Password,
		Database: database,
		Reset:    false,
	})
}
