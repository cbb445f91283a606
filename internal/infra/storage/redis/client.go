// Package redis persists wallet selection state in Redis.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"
)

// keyPrefix namespaces every key written by this package.
const keyPrefix = "zkwallet"

type client struct {
	conn      *redis.Client
	namespace string
}

func (c *client) Close() error {
	return c.conn.Close()
}

// Option configures the client.
type Option func(*client)

// WithNamespace scopes keys to namespace, usually the network name, so
// several networks can share one database.
func WithNamespace(namespace string) Option {
	return func(c *client) {
		c.namespace = namespace
	}
}

func newClient(conn *redis.Client, opts ...Option) *client {
	c := &client{conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient connects to Redis and checks the connection with PING.
func NewClient(ctx context.Context, addr, username, password string, db int, opts ...Option) (*client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})

	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return newClient(conn, opts...), nil
}
