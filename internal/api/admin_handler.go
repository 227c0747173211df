package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
)

// AdminHandler serves the admin dashboard. Every route behind it is gated
// on the admin role; the backend still authorizes each call.
type AdminHandler struct {
	adminService     service.AdminService
	dashboardService service.DashboardService
	exportService    service.ExportService
}

func NewAdminHandler(adminService service.AdminService, dashboardService service.DashboardService, exportService service.ExportService) *AdminHandler {
	return &AdminHandler{
		adminService:     adminService,
		dashboardService: dashboardService,
		exportService:    exportService,
	}
}

// --- Request Structs ---

type BookingStatusRequest struct {
	Status domain.BookingStatus `json:"status" binding:"required"`
}

type OrderStatusRequest struct {
	OrderStatus domain.OrderStatus `json:"order_status" binding:"required"`
}

// --- Handler Methods ---

// Overview godoc
// @Summary Admin dashboard overview
// @Description Bookings, orders and users fetched concurrently. A failed section is reported under errors.
// @Tags Admin
// @Produce json
// @Success 200 {object} service.AdminOverview
// @Failure 401 {object} gin.H "Session expired"
// @Failure 403 {object} gin.H "Not an admin"
// @Router /admin/overview [get]
func (h *AdminHandler) Overview(c *gin.Context) {
	overview, err := h.dashboardService.AdminOverview(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *AdminHandler) ListBookings(c *gin.Context) {
	var filter service.BookingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	bookings, err := h.adminService.ListBookings(c.Request.Context(), getSessionID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	var req BookingStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.adminService.UpdateBookingStatus(c.Request.Context(), getSessionID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *AdminHandler) ListOrders(c *gin.Context) {
	var filter service.OrderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	orders, err := h.adminService.ListOrders(c.Request.Context(), getSessionID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	var req OrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	updated, err := h.adminService.UpdateOrderStatus(c.Request.Context(), getSessionID(c), c.Param("id"), req.OrderStatus)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// ExportOrders godoc
// @Summary Export all orders
// @Tags Admin
// @Produce application/octet-stream
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file "The export, or JSON with download_url when archived"
// @Router /admin/orders/export [get]
func (h *AdminHandler) ExportOrders(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))
	export, err := h.exportService.ExportOrders(c.Request.Context(), getSessionID(c), format)
	if err != nil {
		respondError(c, err)
		return
	}
	if export.DownloadURL != "" {
		c.JSON(http.StatusOK, export)
		return
	}
	sendAttachment(c, export.FileName, export.ContentType, export.Data)
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// --- Media library ---

func (h *AdminHandler) ListMedia(c *gin.Context) {
	items, err := h.adminService.ListMedia(c.Request.Context(), getSessionID(c), domain.MediaKind(c.Param("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// UploadMedia godoc
// @Summary Upload an image or video
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "images or videos"
// @Param file formData file true "Media file"
// @Param title formData string true "Title"
// @Success 201 {object} domain.MediaItem
// @Router /admin/media/{kind} [post]
func (h *AdminHandler) UploadMedia(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "File is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	item, err := h.adminService.UploadMedia(c.Request.Context(), getSessionID(c), domain.MediaKind(c.Param("kind")), apiclient.MediaUpload{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		FileName:    fileHeader.Filename,
		Content:     file,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *AdminHandler) UpdateMedia(c *gin.Context) {
	var req domain.MediaUpdate
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.adminService.UpdateMedia(c.Request.Context(), getSessionID(c), domain.MediaKind(c.Param("kind")), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *AdminHandler) DeleteMedia(c *gin.Context) {
	if err := h.adminService.DeleteMedia(c.Request.Context(), getSessionID(c), domain.MediaKind(c.Param("kind")), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
