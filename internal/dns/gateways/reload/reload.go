// Package reload tells the running named process to pick up configuration
// and zone changes, either through rndc or by sending it SIGHUP.
package reload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

const (
	errCommandFailed = "%s failed: %s"
	errTimedOut      = "%s did not finish within %v"
)

const (
	DefaultReloadTimeout = 30 * time.Second
	DefaultStatusTimeout = 5 * time.Second
)

// Gateway is the reload and status surface of the DNS server process.
type Gateway interface {
	Reload(ctx context.Context) error
	Status(ctx context.Context) string
}

// RunFunc runs a command and returns its output. Tests replace it.
type RunFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// Prober reports whether the server answers DNS queries.
type Prober interface {
	Alive(ctx context.Context, server string) error
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Options configures a Gateway built by New.
type Options struct {
	// UseRndc selects "rndc reload"; otherwise "killall -HUP named" is used.
	UseRndc       bool
	RndcPath      string
	ReloadTimeout time.Duration
	StatusTimeout time.Duration
	// Probe and ProbeAddr let the signal gateway report status.
	Probe     Prober
	ProbeAddr string
	Run       RunFunc
	Logger    log.Logger
}

// New returns the rndc or signal gateway selected by opts.
func New(opts Options) Gateway {
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = DefaultStatusTimeout
	}
	if opts.Run == nil {
		opts.Run = execRun
	}
	if opts.Logger == nil {
		opts.Logger = log.GetLogger()
	}
	c := commander{run: opts.Run, logger: opts.Logger}
	if opts.UseRndc {
		path := opts.RndcPath
		if path == "" {
			path = "rndc"
		}
		return &RndcGateway{commander: c, path: path, reloadTimeout: opts.ReloadTimeout, statusTimeout: opts.StatusTimeout}
	}
	return &SignalGateway{commander: c, timeout: opts.ReloadTimeout, statusTimeout: opts.StatusTimeout, probe: opts.Probe, probeAddr: opts.ProbeAddr}
}

type commander struct {
	run    RunFunc
	logger log.Logger
}

// exec runs name with a timeout. A timeout yields an ExternalFailure wrapping
// domain.ErrTimeout; a failing command yields one carrying its stderr.
func (c commander) exec(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	command := strings.Join(append([]string{name}, args...), " ")
	_, stderr, err := c.run(ctx, name, args...)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &domain.Error{
			Kind: domain.KindExternalFailure,
			Op:   "reload",
			Msg:  fmt.Sprintf(errTimedOut, command, timeout),
			Err:  domain.ErrTimeout,
		}
	}
	if err != nil {
		detail := strings.TrimSpace(string(stderr))
		if detail == "" {
			detail = err.Error()
		}
		return &domain.Error{
			Kind: domain.KindExternalFailure,
			Op:   "reload",
			Msg:  fmt.Sprintf(errCommandFailed, command, detail),
			Err:  err,
		}
	}
	return nil
}

// RndcGateway drives named through rndc.
type RndcGateway struct {
	commander
	path          string
	reloadTimeout time.Duration
	statusTimeout time.Duration
}

func (g *RndcGateway) Reload(ctx context.Context) error {
	g.logger.Info(map[string]any{"via": "rndc"}, "reloading BIND")
	if err := g.exec(ctx, g.reloadTimeout, g.path, "reload"); err != nil {
		g.logger.Error(map[string]any{"error": err}, "failed to reload BIND")
		return err
	}
	g.logger.Info(nil, "BIND reloaded successfully")
	return nil
}

// Status is "running" when rndc status succeeds within the status timeout.
func (g *RndcGateway) Status(ctx context.Context) string {
	if err := g.exec(ctx, g.statusTimeout, g.path, "status"); err != nil {
		g.logger.Warn(map[string]any{"error": err}, "could not check BIND status")
		return domain.ServerUnknown
	}
	return domain.ServerRunning
}

// SignalGateway sends SIGHUP to named.
type SignalGateway struct {
	commander
	timeout       time.Duration
	statusTimeout time.Duration
	probe         Prober
	probeAddr     string
}

func (g *SignalGateway) Reload(ctx context.Context) error {
	g.logger.Info(map[string]any{"via": "SIGHUP"}, "reloading BIND")
	if err := g.exec(ctx, g.timeout, "killall", "-HUP", "named"); err != nil {
		g.logger.Error(map[string]any{"error": err}, "failed to reload BIND")
		return err
	}
	g.logger.Info(nil, "BIND reloaded successfully")
	return nil
}

// Status asks the prober when one is configured and is "unknown" otherwise.
func (g *SignalGateway) Status(ctx context.Context) string {
	if g.probe == nil || g.probeAddr == "" {
		return domain.ServerUnknown
	}
	ctx, cancel := context.WithTimeout(ctx, g.statusTimeout)
	defer cancel()
	if err := g.probe.Alive(ctx, g.probeAddr); err != nil {
		g.logger.Warn(map[string]any{"error": err, "addr": g.probeAddr}, "could not check BIND status")
		return domain.ServerUnknown
	}
	return domain.ServerRunning
}
