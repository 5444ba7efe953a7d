// Package store owns the connection to the Neo4j database the dashboard reads from.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Runner executes a read-only Cypher query and returns every record it produced.
// It exists so that the loader can be exercised without a database.
type Runner interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error)
}

const sessionCloseTimeout = 5 * time.Second

// Config holds what is needed to reach the database.
type Config struct {
	URI      string
	Username string
	Password string
	// Database is the target database name, empty uses the server default.
	Database string
	// QueryTimeout bounds a single Read, zero means no bound.
	QueryTimeout time.Duration
}

// Client is a Runner backed by the official driver. The driver is created once and
// shared; every Read gets its own session which is closed before Read returns.
type Client struct {
	cfg    Config
	driver neo4j.DriverWithContext
	logger *slog.Logger
}

var _ Runner = (*Client)(nil)

// Connect creates the driver. It does not talk to the server, call Verify for that.
// A missing or malformed URI is reported here.
func Connect(cfg Config, logger *slog.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("could not create neo4j driver: %w", err)
	}

	return &Client{
		cfg:    cfg,
		driver: driver,
		logger: logger,
	}, nil
}

// Verify checks that the server is reachable and accepts the credentials.
func (c *Client) Verify(ctx context.Context) error {
	if err := c.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j connectivity check failed: %w", err)
	}
	return nil
}

func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	if c.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.QueryTimeout)
		defer cancel()
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: c.cfg.Database,
	})
	defer c.closeSession(session)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("error executing neo4j query: %w", err)
	}

	records, _ := result.([]*neo4j.Record)
	c.logger.Debug("Neo4j read finished", "records", len(records))
	return records, nil
}

type sessionCloser interface {
	Close(ctx context.Context) error
}

// closeSession gets its own deadline, the query ctx may already be done by the time
// the session is released.
func (c *Client) closeSession(session sessionCloser) {
	ctx, cancel := context.WithTimeout(context.Background(), sessionCloseTimeout)
	defer cancel()
	if err := session.Close(ctx); err != nil {
		c.logger.Warn("Failed to close neo4j session", "error", err)
	}
}

// Close releases the driver and every pooled connection.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}
