package redisstore

import (
	"context"
	"fmt"

	"github.com/layebamba/Fadj-Ma-Frontend/internal/errors"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
	"github.com/redis/go-redis/v9"
)

var _ token.Store = (*Store)(nil)

const DefaultPrefix = "fadjma:tokens:"

// Store keeps the credential pair in Redis under two keys whose TTLs are the
// token lifetimes. Pair writes and deletes run in a single MULTI/EXEC.
type Store struct {
	client    redis.UniversalClient
	prefix    string
	lifetimes token.Lifetimes
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix, which lets several consoles share a server.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithLifetimes overrides the default token lifetimes.
func WithLifetimes(l token.Lifetimes) Option {
	return func(s *Store) {
		s.lifetimes = l
	}
}

func New(client redis.UniversalClient, options ...Option) *Store {
	s := &Store{
		client:    client,
		prefix:    DefaultPrefix,
		lifetimes: token.DefaultLifetimes,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Dial connects to the Redis server at addr and checks it with a PING.
func Dial(ctx context.Context, addr string, db int, options ...Option) (*Store, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[redisstore.Dial] failed to connect to %s: %w", addr, err)
	}
	return New(client, options...), nil
}

func (s *Store) key(kind token.Kind) string {
	return s.prefix + string(kind)
}

func (s *Store) Set(ctx context.Context, access, refresh string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(token.Access), access, s.lifetimes.Access)
		pipe.Set(ctx, s.key(token.Refresh), refresh, s.lifetimes.Refresh)
		return nil
	})
	if err != nil {
		return fmt.Errorf("[redisstore.Set] failed to store tokens: %w", err)
	}
	return nil
}

func (s *Store) SetAccess(ctx context.Context, access string) error {
	if err := s.client.Set(ctx, s.key(token.Access), access, s.lifetimes.Access).Err(); err != nil {
		return fmt.Errorf("[redisstore.SetAccess] failed to store access token: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, kind token.Kind) (string, error) {
	if !kind.Valid() {
		return "", token.InvalidKind(kind)
	}

	value, err := s.client.Get(ctx, s.key(kind)).Result()
	if errors.Is(err, redis.Nil) {
		return "", errors.ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[redisstore.Get] failed to load %s token: %w", kind, err)
	}
	return value, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key(token.Access), s.key(token.Refresh)).Err(); err != nil {
		return fmt.Errorf("[redisstore.Clear] failed to delete tokens: %w", err)
	}
	return nil
}

func (s *Store) HasAccess(ctx context.Context) bool {
	n, err := s.client.Exists(ctx, s.key(token.Access)).Result()
	return err == nil && n > 0
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}
