package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/service"
)

// MemberHandler serves the signed-in member's dashboard, inbox and chat history.
type MemberHandler struct {
	memberService    service.MemberService
	dashboardService service.DashboardService
}

func NewMemberHandler(memberService service.MemberService, dashboardService service.DashboardService) *MemberHandler {
	return &MemberHandler{memberService: memberService, dashboardService: dashboardService}
}

// Dashboard godoc
// @Summary Member dashboard
// @Tags Member
// @Produce json
// @Success 200 {object} service.MemberOverview
// @Failure 401 {object} gin.H "Session expired"
// @Router /dashboard [get]
func (h *MemberHandler) Dashboard(c *gin.Context) {
	overview, err := h.dashboardService.MemberOverview(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *MemberHandler) Notifications(c *gin.Context) {
	inbox, err := h.memberService.Notifications(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inbox)
}

func (h *MemberHandler) MarkNotificationRead(c *gin.Context) {
	if err := h.memberService.MarkNotificationRead(c.Request.Context(), getSessionID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// ChatHistory returns the stored thread. Admins name the member with
// ?user_id=; members always get their own thread.
func (h *MemberHandler) ChatHistory(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondError(c, err)
		return
	}
	userID := ""
	if sess.IsAdmin() {
		userID = c.Query("user_id")
	}
	messages, err := h.memberService.ChatHistory(c.Request.Context(), getSessionID(c), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}
