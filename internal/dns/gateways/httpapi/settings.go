package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/haukened/bindmgr/internal/dns/domain"
)

type forwarderRequest struct {
	IP string `json:"ip" binding:"required"`
}

type recursionRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type networkRequest struct {
	Network string `json:"network" binding:"required"`
}

func (h *Handler) ListForwarders(c *gin.Context) {
	fwds, err := h.svc.ListForwarders()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"forwarders": fwds})
}

func (h *Handler) AddForwarder(c *gin.Context) {
	var req forwarderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ip is required")
		return
	}
	if err := h.svc.AddForwarder(c.Request.Context(), req.IP); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, nil)
}

func (h *Handler) RemoveForwarder(c *gin.Context) {
	if err := h.svc.RemoveForwarder(c.Request.Context(), c.Param("ip")); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

// CheckForwarders probes every configured forwarder with a DNS query.
func (h *Handler) CheckForwarders(c *gin.Context) {
	results, err := h.svc.CheckForwarders(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"results": results})
}

func (h *Handler) GetRecursion(c *gin.Context) {
	rec, err := h.svc.Recursion()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"recursion": rec})
}

func (h *Handler) SetRecursion(c *gin.Context) {
	var req recursionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "enabled is required")
		return
	}
	if err := h.svc.SetRecursion(c.Request.Context(), *req.Enabled); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

func (h *Handler) AddRecursionNetwork(c *gin.Context) {
	var req networkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "network is required")
		return
	}
	if err := h.svc.AddRecursionNetwork(c.Request.Context(), req.Network); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, nil)
}

// RemoveRecursionNetwork takes the network from a wildcard segment so CIDR
// prefixes can be passed unescaped.
func (h *Handler) RemoveRecursionNetwork(c *gin.Context) {
	network := strings.TrimPrefix(c.Param("network"), "/")
	if network == "" {
		badRequest(c, "network is required")
		return
	}
	if err := h.svc.RemoveRecursionNetwork(c.Request.Context(), network); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

func (h *Handler) GetConfiguration(c *gin.Context) {
	s, err := h.svc.Configuration()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"config": s})
}

// PutConfiguration replaces recursion, forwarders, cache sizing and the blocked
// set in one operation.
func (h *Handler) PutConfiguration(c *gin.Context) {
	var s domain.ServerSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.svc.ReplaceConfiguration(c.Request.Context(), s); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}
