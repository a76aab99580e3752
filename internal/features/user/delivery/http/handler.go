package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kryptospire-dev/bot-dash/internal/common/errors"
	"github.com/kryptospire-dev/bot-dash/internal/common/middleware"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/models"
	"github.com/kryptospire-dev/bot-dash/internal/features/user/service"
)

type UserHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, sessions middleware.SessionValidator) {
	users := router.Group("/users")
	users.Use(middleware.RequireSession(sessions))
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.GET("/:id/watch", h.WatchUser)
		users.POST("/:id/reward/paid", h.MarkRewardPaid)
		users.POST("/:id/referral/release", h.ReleaseReferralRewards)
		users.POST("/duplicates/scan", h.ScanDuplicates)
		users.POST("/duplicates/delete", h.DeleteDuplicates)
	}

	stats := router.Group("/stats")
	stats.Use(middleware.RequireSession(sessions))
	{
		stats.GET("", h.Stats)
		stats.GET("/growth", h.UserGrowth)
	}
}

// @Summary List users
// @Description One page of the users list. Filters, sort and an opaque cursor select the page; a search term switches to a single-page full search.
// @Tags users
// @Produce json
// @Param only_with_address query bool false "Only users with a wallet address"
// @Param only_pending_status query bool false "Only users with a pending reward and an address"
// @Param only_pending_referral query bool false "Only users with unreleased referral rewards"
// @Param search query string false "Prefix search over name, username and address"
// @Param sort_by query string false "join_date | name | mntc_earned"
// @Param sort_dir query string false "asc | desc"
// @Param cursor query string false "Cursor from the previous page"
// @Success 200 {object} models.Page "Page of users"
// @Failure 400 {object} middleware.ErrorResponse "Invalid query"
// @Failure 503 {object} middleware.ErrorResponse "Store unavailable, retry"
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q models.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("query", err.Error()))
		return
	}

	page, err := h.service.ListUsers(c.Request.Context(), q)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// @Summary Get user
// @Tags users
// @Produce json
// @Param id path string true "User document id"
// @Success 200 {object} models.User "User detail"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Watch user
// @Description Server-sent events stream of one user's document: current state first, then every change. Closes when the client disconnects.
// @Tags users
// @Produce text/event-stream
// @Param id path string true "User document id"
// @Router /users/{id}/watch [get]
func (h *UserHandler) WatchUser(c *gin.Context) {
	updates, err := h.service.WatchUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case user, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("user", user)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// @Summary Mark reward paid
// @Description Set the user's primary reward status to paid. Only flips status fields; no transfer is performed.
// @Tags users
// @Produce json
// @Param id path string true "User document id"
// @Success 200 {object} models.User "Updated user"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id}/reward/paid [post]
func (h *UserHandler) MarkRewardPaid(c *gin.Context) {
	user, err := h.service.MarkRewardPaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Release referral rewards
// @Description Mark every pending referral reward as sent by raising total_rewards to total_referrals.
// @Tags users
// @Produce json
// @Param id path string true "User document id"
// @Success 200 {object} models.User "Updated user"
// @Failure 404 {object} middleware.ErrorResponse "User not found"
// @Router /users/{id}/referral/release [post]
func (h *UserHandler) ReleaseReferralRewards(c *gin.Context) {
	user, err := h.service.ReleaseReferralRewards(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// @Summary Dashboard stats
// @Tags stats
// @Produce json
// @Param refresh query bool false "Bypass the stats cache"
// @Success 200 {object} models.DashboardStats "Aggregate counters"
// @Router /stats [get]
func (h *UserHandler) Stats(c *gin.Context) {
	refresh := c.Query("refresh") == "true"

	stats, err := h.service.Stats(c.Request.Context(), refresh)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// @Summary User growth series
// @Tags stats
// @Produce json
// @Success 200 {array} models.GrowthPoint "Daily sign-up counts, chronological"
// @Router /stats/growth [get]
func (h *UserHandler) UserGrowth(c *gin.Context) {
	series, err := h.service.UserGrowth(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

// @Summary Scan for duplicate accounts
// @Description Group users by normalized wallet address and list every non-original member. The result is staged under a token for confirmation.
// @Tags users
// @Produce json
// @Success 200 {object} models.DuplicateScan "Duplicates and confirmation token"
// @Router /users/duplicates/scan [post]
func (h *UserHandler) ScanDuplicates(c *gin.Context) {
	scan, err := h.service.ScanDuplicates(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, scan)
}

type deleteDuplicatesRequest struct {
	Token string `json:"token" binding:"required"`
}

// @Summary Delete staged duplicates
// @Description Delete the records staged by a prior scan in one all-or-nothing batch.
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} models.DuplicateDeleteResult "Number of deleted records"
// @Failure 409 {object} middleware.ErrorResponse "Scan expired, re-run"
// @Failure 502 {object} middleware.ErrorResponse "Batch failed, nothing deleted"
// @Router /users/duplicates/delete [post]
func (h *UserHandler) DeleteDuplicates(c *gin.Context) {
	var req deleteDuplicatesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, apperrors.NewValidationError("token", "scan token required"))
		return
	}

	result, err := h.service.DeleteDuplicates(c.Request.Context(), req.Token)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
