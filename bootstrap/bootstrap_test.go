package bootstrap

import (
	"context"
	"testing"
	"time"

	"dwello-backend/internal/config"
	"dwello-backend/internal/infrastructure/identity"
	"dwello-backend/internal/infrastructure/realtime"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier_HMAC(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{AuthProvider: "hmac", AuthHMACSecret: "s3cret", AuthHMACIssuer: "dwello", TokenCacheTTL: time.Minute}

	v, err := NewVerifier(ctx, cfg, nil)
	require.NoError(t, err)
	hv, ok := v.(*identity.HMACVerifier)
	require.True(t, ok)
	assert.Equal(t, "dwello", hv.Issuer)

	mr := miniredis.RunT(t)
	rdb, err := OpenRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	defer rdb.Close()

	v, err = NewVerifier(ctx, cfg, rdb)
	require.NoError(t, err)
	cached, ok := v.(*identity.CachedVerifier)
	require.True(t, ok)
	assert.Equal(t, time.Minute, cached.TTL)

	cfg.TokenCacheTTL = 0
	v, err = NewVerifier(ctx, cfg, rdb)
	require.NoError(t, err)
	assert.IsType(t, &identity.HMACVerifier{}, v)
}

func TestNewVerifier_Misconfigured(t *testing.T) {
	_, err := NewVerifier(context.Background(), &config.Config{AuthProvider: "hmac"}, nil)
	assert.Error(t, err)
	_, err = NewVerifier(context.Background(), &config.Config{AuthProvider: "ldap"}, nil)
	assert.Error(t, err)
}

func TestOpenRedis(t *testing.T) {
	rdb, err := OpenRedis(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, rdb)

	_, err = OpenRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestNewPublisher(t *testing.T) {
	hub := realtime.NewHub("*")
	cfg := &config.Config{EventsChannel: "dwello:events"}
	assert.IsType(t, &realtime.HubPublisher{}, NewPublisher(cfg, nil, hub))

	mr := miniredis.RunT(t)
	rdb, err := OpenRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer rdb.Close()
	pub, ok := NewPublisher(cfg, rdb, hub).(*realtime.RedisPublisher)
	require.True(t, ok)
	assert.Equal(t, "dwello:events", pub.Channel)
}

func TestBuild_RequiresDatabase(t *testing.T) {
	_, err := Build(context.Background(), &config.Config{})
	assert.EqualError(t, err, "DATABASE_URL is required")
}
