package httpapi

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haukened/bindmgr/internal/dns/domain"
	"github.com/haukened/bindmgr/internal/dns/gateways/probe"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

// Service is the set of manager operations the API dispatches to.
type Service interface {
	Health(ctx context.Context) domain.Health
	Reload(ctx context.Context) error

	ListZones() ([]domain.Zone, error)
	CreateZone(ctx context.Context, req manager.CreateZoneRequest) (domain.Zone, error)
	DeleteZone(ctx context.Context, zone string) error
	CheckZone(zone string) (zonefile.CheckReport, error)
	ListRecords(zone string) ([]domain.Record, error)
	AddRecord(ctx context.Context, zone string, req manager.RecordRequest) (domain.Record, error)
	UpdateRecord(ctx context.Context, zone string, id int, req manager.RecordRequest) (domain.Record, error)
	DeleteRecord(ctx context.Context, zone string, id int) (domain.Record, error)

	ListBlockedZones() ([]domain.BlockedZone, error)
	BlockZone(ctx context.Context, req manager.BlockRequest) (domain.BlockedZone, error)
	UnblockZone(ctx context.Context, name string) error
	ImportBlocklist(ctx context.Context, r io.Reader, format parsers.Format, source string) (manager.ImportResult, error)
	CheckBlocked(name string) (domain.BlockDecision, error)
	BlocklistStats() blocklist.Stats
	NullRoute(ctx context.Context, req manager.BlockRequest) error
	RemoveNullRoute(ctx context.Context, name string) error

	ListForwarders() ([]string, error)
	AddForwarder(ctx context.Context, ip string) error
	RemoveForwarder(ctx context.Context, ip string) error
	CheckForwarders(ctx context.Context) ([]probe.Result, error)
	Recursion() (domain.RecursionSettings, error)
	SetRecursion(ctx context.Context, enabled bool) error
	AddRecursionNetwork(ctx context.Context, network string) error
	RemoveRecursionNetwork(ctx context.Context, network string) error
	Configuration() (domain.ServerSettings, error)
	ReplaceConfiguration(ctx context.Context, s domain.ServerSettings) error
}

var _ Service = (*manager.Manager)(nil)

// Handler adapts gin requests to Service calls.
type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Health reports the service and BIND state. It is the only unauthenticated route.
func (h *Handler) Health(c *gin.Context) {
	health := h.svc.Health(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"status":         health.Status,
		"bind_status":    health.Server,
		"reload_pending": health.ReloadPending,
	})
}

// Reload forces BIND to reload its configuration.
func (h *Handler) Reload(c *gin.Context) {
	if err := h.svc.Reload(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "reload requested"})
}
