package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/spacesedan/starsense/internal/sentiment"
)

const VALKEY_PREDICTION_PREFIX = "starsense:prediction:"

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
	TTL      time.Duration
}

// ValkeyClient stores predictions keyed by text hash.
type ValkeyClient struct {
	Client valkey.Client
	ttl    time.Duration
}

func NewValkeyClient(ctx context.Context, cfg ValkeyConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey",
		slog.String("address", cfg.Address))

	return &ValkeyClient{Client: client, ttl: cfg.TTL}, nil
}

func (vc *ValkeyClient) Close() error {
	vc.Client.Close()
	return nil
}

func (vc *ValkeyClient) GetPrediction(ctx context.Context, key string) (sentiment.Prediction, bool, error) {
	res := vc.DoWithRetry(ctx, vc.Client.B().Get().Key(VALKEY_PREDICTION_PREFIX+key).Build(), 2)

	data, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return sentiment.Prediction{}, false, nil
	}
	if err != nil {
		return sentiment.Prediction{}, false, err
	}

	var prediction sentiment.Prediction
	if err := json.Unmarshal(data, &prediction); err != nil {
		return sentiment.Prediction{}, false, fmt.Errorf("corrupt cached prediction: %w", err)
	}
	return prediction, true, nil
}

func (vc *ValkeyClient) SetPrediction(ctx context.Context, key string, prediction sentiment.Prediction) error {
	data, err := json.Marshal(prediction)
	if err != nil {
		return err
	}

	cmd := vc.Client.B().Set().Key(VALKEY_PREDICTION_PREFIX + key).Value(string(data))
	var completed valkey.Completed
	if vc.ttl > 0 {
		completed = cmd.ExSeconds(int64(vc.ttl.Seconds())).Build()
	} else {
		completed = cmd.Build()
	}

	return vc.DoWithRetry(ctx, completed, 2).Error()
}

// DoWithRetry retries connection-level failures only. A nil reply is a
// valid result and is returned as is.
func (vc *ValkeyClient) DoWithRetry(ctx context.Context, completed valkey.Completed, retries int) valkey.ValkeyResult {
	var result valkey.ValkeyResult
	for i := 0; i < retries; i++ {
		// completed commands are recycled after Do unless pinned
		result = vc.Client.Do(ctx, completed.Pin())
		if err := result.Error(); err == nil || valkey.IsValkeyNil(err) || !isConnectionError(err) {
			break
		}

		slog.Warn("[ValkeyClient] Do failed",
			slog.Int("attempt", i+1),
			slog.String("error", result.Error().Error()))

		time.Sleep(250 * time.Millisecond)
	}

	return result
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "i/o timeout")
}
