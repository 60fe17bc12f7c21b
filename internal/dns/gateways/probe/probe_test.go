package probe

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServer runs a UDP DNS server on a random local port answering with rcode.
func startServer(t *testing.T, rcode int) string {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn: pc,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			m := new(dns.Msg)
			m.SetRcode(r, rcode)
			_ = w.WriteMsg(m)
		}),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestHostPort(t *testing.T) {
	assert.Equal(t, "192.0.2.1:53", HostPort("192.0.2.1"))
	assert.Equal(t, "[2001:db8::1]:53", HostPort("2001:db8::1"))
	assert.Equal(t, "127.0.0.1:5353", HostPort("127.0.0.1:5353"))
}

func TestAlive_RealServer(t *testing.T) {
	addr := startServer(t, dns.RcodeRefused)
	p := New(Options{Timeout: time.Second})
	assert.NoError(t, p.Alive(context.Background(), addr))
}

func TestAlive_Errors(t *testing.T) {
	p := New(Options{Exchange: func(context.Context, *dns.Msg, string) (*dns.Msg, error) {
		return nil, errors.New("connection refused")
	}})
	assert.Error(t, p.Alive(context.Background(), "127.0.0.1"))
	assert.Error(t, p.Alive(context.Background(), ""))

	p = New(Options{Exchange: func(context.Context, *dns.Msg, string) (*dns.Msg, error) {
		return nil, nil
	}})
	assert.Error(t, p.Alive(context.Background(), "127.0.0.1"))
}

func TestAlive_AppliesDefaultDeadline(t *testing.T) {
	var hadDeadline bool
	p := New(Options{Timeout: 50 * time.Millisecond, Exchange: func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
		_, hadDeadline = ctx.Deadline()
		assert.Equal(t, "127.0.0.1:53", addr)
		assert.Equal(t, dns.TypeNS, m.Question[0].Qtype)
		return new(dns.Msg), nil
	}})
	require.NoError(t, p.Alive(context.Background(), "127.0.0.1"))
	assert.True(t, hadDeadline)
}

func TestCheck_OrderAndOutcome(t *testing.T) {
	p := New(Options{Exchange: func(_ context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
		if addr == "192.0.2.2:53" {
			return nil, errors.New("i/o timeout")
		}
		r := new(dns.Msg)
		r.SetRcode(m, dns.RcodeServerFailure)
		return r, nil
	}})

	res := p.Check(context.Background(), "192.0.2.1", "192.0.2.2")
	require.Len(t, res, 2)
	assert.Equal(t, "192.0.2.1", res[0].Server)
	assert.True(t, res[0].Alive)
	assert.Equal(t, "SERVFAIL", res[0].Rcode)
	assert.Equal(t, "192.0.2.2", res[1].Server)
	assert.False(t, res[1].Alive)
	assert.Contains(t, res[1].Error, "timeout")
}
