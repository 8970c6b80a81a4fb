package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK             = "ok"
	statusToggled        = "toggled"
	statusTimerSet       = "timer_set"
	statusTimerCancelled = "timer_cancelled"

	errGetStats        = "failed to compute usage stats"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for arming a timer.
type timerRequest struct {
	Minutes int    `json:"minutes" binding:"required"` // > 0
	Action  string `json:"action" binding:"required"`  // on | off
}

// SetTimerRequest is an exported model for Swagger docs of the setTimer payload.
type SetTimerRequest struct {
	// Minutes until the timer fires (must be > 0)
	Minutes int `json:"minutes" example:"10"`
	// Action to apply at expiry. Allowed: on, off
	Action string `json:"action" example:"off"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Toggle the bulb relay
// @Description  Flips the relay; turning it off closes the open on-interval into the usage ledger.
// @Tags         relay
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "status, relay"
// @Router       /api/v1/relay/toggle [post]
func (h *Handler) toggleRelay(c *gin.Context) {
	st := h.services.Relay.Toggle(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status": statusToggled,
		"relay":  st,
	})
}

// @Summary      Get bulb state
// @Description  Current relay, pending timer, and motion-stub snapshot.
// @Tags         relay
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/relay/state [get]
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Relay.State(c.Request.Context()))
}

// @Summary      Arm the off/on timer
// @Description  Replaces any pending timer; the replaced timer never fires.
// @Tags         timer
// @Accept       json
// @Produce      json
// @Param        body  body   SetTimerRequest  true  "Timer payload"
// @Success      200   {object}  map[string]interface{}  "status, timer"
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/timer [post]
func (h *Handler) setTimer(c *gin.Context) {
	var req timerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st, err := h.services.Timer.Schedule(c.Request.Context(), req.Minutes, req.Action)
	if err != nil {
		// Schedule rejects input before touching state; anything it returns
		// is a client error.
		if h.log != nil {
			h.log.Infow("timer_rejected", "err", err, "minutes", req.Minutes, "action", req.Action)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": statusTimerSet,
		"timer":  st,
	})
}

// @Summary      Cancel the pending timer
// @Description  Idempotent; succeeds even when no timer is pending.
// @Tags         timer
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/v1/timer [delete]
func (h *Handler) cancelTimer(c *gin.Context) {
	h.services.Timer.Cancel(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": statusTimerCancelled})
}

// @Summary      Usage stats
// @Description  Lifetime on-time converted to hours, energy, and tiered cost.
// @Tags         stats
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.services.Stats.Compute(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStats, "stats_compute_failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
