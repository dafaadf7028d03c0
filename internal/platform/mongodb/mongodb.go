// Package mongodb はMongoDBクライアントの接続を提供します。
package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// retryInterval はPingリトライの間隔です。
const retryInterval = time.Second

// Connect はuriに接続し、timeoutに達するまでPingをリトライします。
// 成功時は指定データベースのハンドルとクライアントを返します。呼び出し元がDisconnectを担当します。
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid mongodb configuration: %w", err)
	}

	if err := pingWithRetry(ctx, timeout, func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	slog.Info("MongoDB connection successful", "database", database)
	return client, client.Database(database), nil
}

func pingWithRetry(ctx context.Context, timeout time.Duration, ping func(context.Context) error) error {
	deadline := time.Now().Add(timeout)
	for {
		err := ping(ctx)
		if err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("mongodb ping failed after %s: %w", timeout, err)
		}
		slog.Warn("MongoDB ping failed, retrying", "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
}
