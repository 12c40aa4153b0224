package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/valkey-io/valkey-go"
)

const valkeyKeyPrefix = "reviewlens:"

// ValkeyClient is a small byte cache shared by the API and importer processes.
type ValkeyClient struct {
	Client valkey.Client
}

func NewValkeyClient(ctx context.Context, addr, password string, useTLS bool) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress: []string{
			addr,
		},
		Password:         password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
		// analytics keys are invalidated explicitly; client-side caching would serve stale reads
		DisableCache: true,
	}

	if useTLS {
		opts.TLSConfig = &tls.Config{InsecureSkipVerify: false}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Second*3)
	defer cancel()

	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", addr))

	return &ValkeyClient{Client: client}, nil
}

// Get returns the cached bytes for key. A missing key is not an error.
func (vc *ValkeyClient) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res := vc.Client.Do(ctx, vc.Client.B().Get().Key(valkeyKeyPrefix+key).Build())
	value, err := res.AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (vc *ValkeyClient) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	seconds := int64(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	cmd := vc.Client.B().Set().Key(valkeyKeyPrefix + key).Value(valkey.BinaryString(value)).ExSeconds(seconds).Build()
	return vc.Client.Do(ctx, cmd).Error()
}

// Incr atomically increments the integer at key, creating it at 1.
func (vc *ValkeyClient) Incr(ctx context.Context, key string) (int64, error) {
	return vc.Client.Do(ctx, vc.Client.B().Incr().Key(valkeyKeyPrefix+key).Build()).AsInt64()
}

func (vc *ValkeyClient) Close() {
	if vc != nil && vc.Client != nil {
		vc.Client.Close()
	}
}
