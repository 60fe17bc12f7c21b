package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/parsers"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

// maxImportBytes bounds an uploaded blocklist.
const maxImportBytes = 32 << 20

func (h *Handler) ListBlockedZones(c *gin.Context) {
	zones, err := h.svc.ListBlockedZones()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"blocked_zones": zones, "count": len(zones)})
}

func (h *Handler) BlockZone(c *gin.Context) {
	var req manager.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	zone, err := h.svc.BlockZone(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"blocked_zone": zone})
}

func (h *Handler) UnblockZone(c *gin.Context) {
	if err := h.svc.UnblockZone(c.Request.Context(), c.Param("domain")); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

// ImportBlocklist reads a hosts or plain domain list from the request body.
// The format and source come from the query string.
func (h *Handler) ImportBlocklist(c *gin.Context) {
	source := c.Query("source")
	if source == "" {
		badRequest(c, "source query parameter is required")
		return
	}
	format := parsers.Format(c.DefaultQuery("format", string(parsers.FormatAuto)))

	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxImportBytes)
	res, err := h.svc.ImportBlocklist(c.Request.Context(), body, format, source)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"parsed": res.Parsed, "added": res.Added})
}

func (h *Handler) CheckBlocked(c *gin.Context) {
	decision, err := h.svc.CheckBlocked(c.Param("domain"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"decision": decision})
}

func (h *Handler) BlocklistStats(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"stats": h.svc.BlocklistStats()})
}

func (h *Handler) NullRoute(c *gin.Context) {
	var req manager.BlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if err := h.svc.NullRoute(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, nil)
}

func (h *Handler) RemoveNullRoute(c *gin.Context) {
	if err := h.svc.RemoveNullRoute(c.Request.Context(), c.Param("domain")); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}
