package health

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name string
	up   atomic.Bool
}

func (s *stubChecker) Name() string                               { return s.name }
func (s *stubChecker) IsHealthy() bool                            { return s.up.Load() }
func (s *stubChecker) Start(ctx context.Context, _ time.Duration) {}

func eventually(t *testing.T, pred func() bool) {
	t.Helper()
	require.Eventually(t, pred, time.Second, 10*time.Millisecond)
}

func TestServiceHealthAggregation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := &stubChecker{name: "store"}
	db.up.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), db)
	require.False(t, svc.IsHealthy(), "should start unhealthy until first evaluation")

	go svc.Start(ctx, 10*time.Millisecond)
	eventually(t, svc.IsHealthy)

	db.up.Store(false)
	eventually(t, func() bool { return !svc.IsHealthy() })

	db.up.Store(true)
	eventually(t, svc.IsHealthy)
}

func TestServiceHealthRequiresAllDependencies(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &stubChecker{name: "store"}
	b := &stubChecker{name: "cache"}
	a.up.Store(true)

	svc := NewServiceHealthChecker(zerolog.Nop(), a, b)
	go svc.Start(ctx, 10*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	require.False(t, svc.IsHealthy(), "one unhealthy dependency keeps the service down")

	b.up.Store(true)
	eventually(t, svc.IsHealthy)
}
