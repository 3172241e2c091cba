package data_access

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Matheus-Salgado02/cinelist/config"
	"github.com/Matheus-Salgado02/cinelist/logging"
	"github.com/Matheus-Salgado02/cinelist/metrics"
)

const usersCollection = "users"

// MongoDB owns the driver client. The client is created lazily by the driver,
// so requests made before Serve has seen a successful ping fail fast through
// the Connected check instead of hanging on server selection.
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database

	connected      atomic.Bool
	retryDelay     time.Duration
	connectTimeout time.Duration
}

func NewMongoDB(cfg config.MongoConfig) (*MongoDB, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	return &MongoDB{
		client:         client,
		db:             client.Database(cfg.DatabaseName()),
		retryDelay:     cfg.RetryDelay,
		connectTimeout: cfg.ConnectTimeout,
	}, nil
}

// Serve keeps the connection-health flag current. Until the first successful
// ping it retries every retryDelay, forever; afterwards it keeps probing at the
// same cadence so /health and the DB guard follow outages. Indexes are ensured
// on every transition to connected.
func (m *MongoDB) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.retryDelay)
	defer ticker.Stop()

	for {
		m.probe(ctx)
		select {
		case <-ctx.Done():
			m.setConnected(false)
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (m *MongoDB) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()

	if err := m.client.Ping(pingCtx, nil); err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		metrics.DBConnectAttempts.WithLabelValues("error").Inc()
		if m.connected.Load() {
			logging.Error().Err(err).Msg("MongoDB connection lost")
		} else {
			logging.Error().Err(err).Dur("retry_in", m.retryDelay).Msg("MongoDB connection error, retrying")
		}
		m.setConnected(false)
		return
	}

	if m.connected.Load() {
		return
	}
	metrics.DBConnectAttempts.WithLabelValues("ok").Inc()
	logging.Info().Str("database", m.db.Name()).Msg("Connected to MongoDB")
	if err := m.EnsureIndexes(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to ensure user indexes")
	}
	m.setConnected(true)
}

func (m *MongoDB) setConnected(ok bool) {
	m.connected.Store(ok)
	metrics.SetDBConnected(ok)
}

// Connected reports the outcome of the most recent ping.
func (m *MongoDB) Connected() bool {
	return m.connected.Load()
}

func (m *MongoDB) String() string {
	return "mongodb-connector"
}

// Ping checks the connection once, for one-shot commands that do not run Serve.
func (m *MongoDB) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, m.connectTimeout)
	defer cancel()
	if err := m.client.Ping(pingCtx, nil); err != nil {
		return err
	}
	m.setConnected(true)
	return nil
}

// EnsureIndexes creates the sparse unique identity indexes. Sparse lets any
// number of users omit username or email.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	_, err := m.Collection(usersCollection).Indexes().CreateMany(ctx, identityIndexes())
	return err
}

func identityIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetName("username_1").SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("email_1").SetUnique(true).SetSparse(true),
		},
	}
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *MongoDB) Client() *mongo.Client {
	return m.client
}

func (m *MongoDB) Close(ctx context.Context) error {
	m.setConnected(false)
	return m.client.Disconnect(ctx)
}
