package config

// This file defines a Redis client constructor for the application.  Redis
// backs the shared seat inventory, distributed rate limiting and HTTP
// response caching.  If connection fails during startup, the function
// returns nil and callers degrade gracefully by disabling caching and
// rate limiting; the redis inventory backend refuses to start instead.

import (
    "context"
    "crypto/tls"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient instantiates a Redis client from the Redis settings.
// The returned client is nil if a connection cannot be established.
func NewRedisClient(ctx context.Context, r Redis) *redis.Client {
    var tlsConf *tls.Config
    if r.TLS {
        tlsConf = &tls.Config{InsecureSkipVerify: true}
    }
    client := redis.NewClient(&redis.Options{
        Addr:      r.Address(),
        Password:  r.Password,
        DB:        r.DB,
        TLSConfig: tlsConf,
    })
    // Ping the server with a short timeout.  Return nil on failure.
    pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := client.Ping(pingCtx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
