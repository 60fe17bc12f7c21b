// Package probe checks whether DNS servers answer queries. It is used to tell
// whether named is up when rndc is not available, and to check forwarders.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
)

const (
	errNoServer   = "no server address given"
	errExchange   = "server %s: %w"
	errNoResponse = "server %s: empty response"
)

// ExchangeFunc sends m to addr and returns the reply.
type ExchangeFunc func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error)

// Options configures a Prober.
type Options struct {
	Timeout time.Duration
	// Name queried for NS records; defaults to the root.
	Name string
	// Exchange is injectable for tests.
	Exchange ExchangeFunc
}

// Prober sends a single NS query and treats any reply, including REFUSED or
// SERVFAIL, as proof the server is alive.
type Prober struct {
	timeout  time.Duration
	name     string
	exchange ExchangeFunc
}

// Result is the outcome for one server.
type Result struct {
	Server string        `json:"server"`
	Alive  bool          `json:"alive"`
	Rcode  string        `json:"rcode,omitempty"`
	RTT    time.Duration `json:"rtt_ns,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// New returns a Prober. Timeout defaults to 2 seconds.
func New(opts Options) *Prober {
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Name == "" {
		opts.Name = "."
	}
	if opts.Exchange == nil {
		c := &dns.Client{Net: "udp", Timeout: opts.Timeout}
		opts.Exchange = func(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, error) {
			r, _, err := c.ExchangeContext(ctx, m, addr)
			return r, err
		}
	}
	return &Prober{timeout: opts.Timeout, name: dns.Fqdn(opts.Name), exchange: opts.Exchange}
}

// HostPort adds the DNS port to a bare IP address.
func HostPort(server string) string {
	if addr, err := netip.ParseAddr(server); err == nil {
		return net.JoinHostPort(addr.String(), "53")
	}
	return server
}

// ensureContextDeadline applies the prober timeout when ctx has no deadline.
func (p *Prober) ensureContextDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); !ok {
		return context.WithTimeout(ctx, p.timeout)
	}
	return ctx, func() {}
}

// Alive reports whether server answered.
func (p *Prober) Alive(ctx context.Context, server string) error {
	if server == "" {
		return errors.New(errNoServer)
	}
	ctx, cancel := p.ensureContextDeadline(ctx)
	defer cancel()

	addr := HostPort(server)
	m := new(dns.Msg)
	m.SetQuestion(p.name, dns.TypeNS)
	m.RecursionDesired = false

	r, err := p.exchange(ctx, m, addr)
	if err != nil {
		return fmt.Errorf(errExchange, addr, err)
	}
	if r == nil {
		return fmt.Errorf(errNoResponse, addr)
	}
	return nil
}

// Check probes every server in parallel and returns results in input order.
func (p *Prober) Check(ctx context.Context, servers ...string) []Result {
	ctx, cancel := p.ensureContextDeadline(ctx)
	defer cancel()

	results := make([]Result, len(servers))
	done := make(chan struct{}, len(servers))
	for i, srv := range servers {
		go func() {
			defer func() { done <- struct{}{} }()
			results[i] = p.probe(ctx, srv)
		}()
	}
	for range servers {
		<-done
	}
	return results
}

func (p *Prober) probe(ctx context.Context, server string) Result {
	res := Result{Server: server}
	m := new(dns.Msg)
	m.SetQuestion(p.name, dns.TypeNS)

	start := time.Now()
	r, err := p.exchange(ctx, m, HostPort(server))
	res.RTT = time.Since(start)
	switch {
	case err != nil:
		res.Error = err.Error()
	case r == nil:
		res.Error = "empty response"
	default:
		res.Alive = true
		res.Rcode = dns.RcodeToString[r.Rcode]
	}
	return res
}
