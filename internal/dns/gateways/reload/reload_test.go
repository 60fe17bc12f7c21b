package reload

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeRunner struct {
	calls  []call
	stderr string
	err    error
	block  bool
}

func (f *fakeRunner) run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return nil, []byte(f.stderr), f.err
}

func TestNew_SelectsGateway(t *testing.T) {
	assert.IsType(t, &RndcGateway{}, New(Options{UseRndc: true}))
	assert.IsType(t, &SignalGateway{}, New(Options{}))
}

func TestRndcGateway_Reload(t *testing.T) {
	r := &fakeRunner{}
	gw := New(Options{UseRndc: true, RndcPath: "/usr/sbin/rndc", Run: r.run, Logger: log.NewNoopLogger()})

	require.NoError(t, gw.Reload(context.Background()))
	require.Len(t, r.calls, 1)
	assert.Equal(t, call{name: "/usr/sbin/rndc", args: []string{"reload"}}, r.calls[0])
}

func TestRndcGateway_ReloadFailureCarriesStderr(t *testing.T) {
	r := &fakeRunner{err: errors.New("exit status 1"), stderr: "rndc: connect failed: 127.0.0.1#953: connection refused\n"}
	gw := New(Options{UseRndc: true, Run: r.run, Logger: log.NewNoopLogger()})

	err := gw.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExternalFailure)
	assert.NotErrorIs(t, err, domain.ErrTimeout)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "rndc reload")
}

func TestRndcGateway_ReloadTimeout(t *testing.T) {
	r := &fakeRunner{block: true}
	gw := New(Options{UseRndc: true, ReloadTimeout: 20 * time.Millisecond, Run: r.run, Logger: log.NewNoopLogger()})

	err := gw.Reload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, domain.KindExternalFailure, domain.KindOf(err))
}

func TestRndcGateway_Status(t *testing.T) {
	r := &fakeRunner{}
	gw := New(Options{UseRndc: true, Run: r.run, Logger: log.NewNoopLogger()})
	assert.Equal(t, domain.ServerRunning, gw.Status(context.Background()))
	assert.Equal(t, []string{"status"}, r.calls[0].args)

	r.err = errors.New("exit status 1")
	assert.Equal(t, domain.ServerUnknown, gw.Status(context.Background()))

	slow := &fakeRunner{block: true}
	gw = New(Options{UseRndc: true, StatusTimeout: 10 * time.Millisecond, Run: slow.run, Logger: log.NewNoopLogger()})
	assert.Equal(t, domain.ServerUnknown, gw.Status(context.Background()))
}

func TestSignalGateway_Reload(t *testing.T) {
	r := &fakeRunner{}
	gw := New(Options{Run: r.run, Logger: log.NewNoopLogger()})

	require.NoError(t, gw.Reload(context.Background()))
	assert.Equal(t, call{name: "killall", args: []string{"-HUP", "named"}}, r.calls[0])

	r.err = errors.New("exit status 1")
	r.stderr = "named: no process found"
	err := gw.Reload(context.Background())
	assert.ErrorIs(t, err, domain.ErrExternalFailure)
	assert.Contains(t, err.Error(), "no process found")
}

type stubProber struct{ err error }

func (s stubProber) Alive(context.Context, string) error { return s.err }

func TestSignalGateway_Status(t *testing.T) {
	gw := New(Options{Logger: log.NewNoopLogger()})
	assert.Equal(t, domain.ServerUnknown, gw.Status(context.Background()))

	gw = New(Options{Probe: stubProber{}, ProbeAddr: "127.0.0.1", Logger: log.NewNoopLogger()})
	assert.Equal(t, domain.ServerRunning, gw.Status(context.Background()))

	gw = New(Options{Probe: stubProber{err: errors.New("refused")}, ProbeAddr: "127.0.0.1", Logger: log.NewNoopLogger()})
	assert.Equal(t, domain.ServerUnknown, gw.Status(context.Background()))
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockGateway) Status(ctx context.Context) string {
	return m.Called(ctx).String(0)
}

func TestPending_ApplyOnlyWhenMarked(t *testing.T) {
	gw := &mockGateway{}
	p := NewPending(gw)
	ctx := context.Background()

	require.NoError(t, p.Apply(ctx))
	gw.AssertNotCalled(t, "Reload", mock.Anything)

	gw.On("Reload", ctx).Return(nil).Once()
	p.Mark()
	p.Mark()
	assert.True(t, p.IsPending())
	require.NoError(t, p.Apply(ctx))
	assert.False(t, p.IsPending())
	require.NoError(t, p.Apply(ctx))

	gw.AssertNumberOfCalls(t, "Reload", 1)
}

func TestPending_FailureKeepsFlag(t *testing.T) {
	gw := &mockGateway{}
	ctx := context.Background()
	boom := &domain.Error{Kind: domain.KindExternalFailure, Msg: "boom"}
	gw.On("Reload", ctx).Return(boom).Once()
	gw.On("Reload", ctx).Return(nil).Once()

	p := NewPending(gw)
	p.Mark()
	assert.ErrorIs(t, p.Apply(ctx), domain.ErrExternalFailure)
	assert.True(t, p.IsPending())
	require.NoError(t, p.Apply(ctx))
	assert.False(t, p.IsPending())
	gw.AssertExpectations(t)
}

func TestPending_ForceAndStatus(t *testing.T) {
	gw := &mockGateway{}
	ctx := context.Background()
	gw.On("Reload", ctx).Return(nil)
	gw.On("Status", ctx).Return(domain.ServerRunning)

	p := NewPending(gw)
	require.NoError(t, p.Force(ctx))
	assert.Equal(t, domain.ServerRunning, p.Status(ctx))
	gw.AssertExpectations(t)
}
