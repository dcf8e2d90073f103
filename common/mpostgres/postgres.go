package mpostgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConnection is a hub which deals with a postgres connection pool.
type PostgresConnection struct {
	ConnectionString string
	Pool             *pgxpool.Pool
	Connected        bool
}

// Connect keeps a singleton pgxpool connection with postgres.
func (pc *PostgresConnection) Connect(ctx context.Context) error {
	fmt.Println("Connecting to postgres...")

	pool, err := pgxpool.New(ctx, pc.ConnectionString)
	if err != nil {
		return fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	pc.Pool = pool
	pc.Connected = true

	fmt.Println("Connected to postgres")

	return nil
}

// GetPool returns the connection pool, connecting first if necessary.
func (pc *PostgresConnection) GetPool(ctx context.Context) (*pgxpool.Pool, error) {
	if pc.Pool == nil {
		if err := pc.Connect(ctx); err != nil {
			return nil, err
		}
	}

	return pc.Pool, nil
}

// Close releases the pool's connections.
func (pc *PostgresConnection) Close() {
	if pc.Pool != nil {
		pc.Pool.Close()
	}
}
