//go:build integration

// Package testutil starts throwaway PostgreSQL and Redis containers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"jobboard-api/internal/database"
)

const containerTTL = 300 // seconds before docker reaps a leaked container

func newDockerPool() (*dockertest.Pool, error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		return nil, fmt.Errorf("could not construct docker pool: %w", err)
	}
	if err := pool.Client.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect to docker: %w", err)
	}
	pool.MaxWait = 2 * time.Minute
	return pool, nil
}

func noRestart(hc *docker.HostConfig) {
	hc.AutoRemove = true
	hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
}

// StartPostgres runs a postgres container with every migration applied.
// The returned func closes the pool and removes the container.
func StartPostgres(ctx context.Context) (*pgxpool.Pool, func(), error) {
	pool, err := newDockerPool()
	if err != nil {
		return nil, nil, err
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=jobboard",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=jobboard_test",
		},
	}, noRestart)
	if err != nil {
		return nil, nil, fmt.Errorf("could not start postgres: %w", err)
	}
	_ = resource.Expire(containerTTL)

	dsn := fmt.Sprintf("postgres://jobboard:secret@%s/jobboard_test?sslmode=disable", resource.GetHostPort("5432/tcp"))

	var db *pgxpool.Pool
	err = pool.Retry(func() error {
		var err error
		db, err = pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return err
		}
		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)
		return nil, nil, fmt.Errorf("postgres never became ready: %w", err)
	}

	if err := database.RunMigrations(ctx, db, zap.NewNop()); err != nil {
		db.Close()
		_ = pool.Purge(resource)
		return nil, nil, err
	}

	return db, func() {
		db.Close()
		_ = pool.Purge(resource)
	}, nil
}

// StartRedis runs a redis container. The returned func closes the client and removes the container.
func StartRedis(ctx context.Context) (*redis.Client, func(), error) {
	pool, err := newDockerPool()
	if err != nil {
		return nil, nil, err
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "redis",
		Tag:        "7-alpine",
	}, noRestart)
	if err != nil {
		return nil, nil, fmt.Errorf("could not start redis: %w", err)
	}
	_ = resource.Expire(containerTTL)

	rdb := redis.NewClient(&redis.Options{Addr: resource.GetHostPort("6379/tcp")})
	if err := pool.Retry(func() error { return rdb.Ping(ctx).Err() }); err != nil {
		_ = rdb.Close()
		_ = pool.Purge(resource)
		return nil, nil, fmt.Errorf("redis never became ready: %w", err)
	}

	return rdb, func() {
		_ = rdb.Close()
		_ = pool.Purge(resource)
	}, nil
}

// Truncate empties tables between tests.
func Truncate(ctx context.Context, db *pgxpool.Pool, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	_, err := db.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	return err
}
