package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

func (h *Handler) ListZones(c *gin.Context) {
	zones, err := h.svc.ListZones()
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"zones": zones, "count": len(zones)})
}

func (h *Handler) CreateZone(c *gin.Context) {
	var req manager.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	zone, err := h.svc.CreateZone(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"zone": zone})
}

func (h *Handler) DeleteZone(c *gin.Context) {
	if err := h.svc.DeleteZone(c.Request.Context(), c.Param("zone")); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, nil)
}

// CheckZone parses the zone file with a full master-file parser.
func (h *Handler) CheckZone(c *gin.Context) {
	report, err := h.svc.CheckZone(c.Param("zone"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"check": report})
}

func (h *Handler) ListRecords(c *gin.Context) {
	records, err := h.svc.ListRecords(c.Param("zone"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"records": records, "count": len(records)})
}

func (h *Handler) AddRecord(c *gin.Context) {
	var req manager.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	rec, err := h.svc.AddRecord(c.Request.Context(), c.Param("zone"), req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"record": rec})
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, valid := recordID(c)
	if !valid {
		return
	}
	var req manager.RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	rec, err := h.svc.UpdateRecord(c.Request.Context(), c.Param("zone"), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"record": rec})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, valid := recordID(c)
	if !valid {
		return
	}
	rec, err := h.svc.DeleteRecord(c.Request.Context(), c.Param("zone"), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"record": rec})
}

// recordID parses the :id parameter and answers 400 when it is not an ordinal.
func recordID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 0 {
		badRequest(c, "record id must be a non-negative integer")
		return 0, false
	}
	return id, true
}
