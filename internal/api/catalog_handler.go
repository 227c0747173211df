package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/apiclient"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
)

// CatalogHandler serves programs, trainers, products and testimonials.
type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListPrograms godoc
// @Summary List programs
// @Tags Catalog
// @Produce json
// @Param category query string false "Category filter"
// @Param difficulty query string false "Difficulty filter"
// @Success 200 {array} domain.Program
// @Router /programs [get]
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	filter := apiclient.ProgramFilter{
		Category:   c.Query("category"),
		Difficulty: c.Query("difficulty"),
	}
	programs, err := h.catalogService.ListPrograms(c.Request.Context(), getSessionID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

func (h *CatalogHandler) GetProgram(c *gin.Context) {
	program, err := h.catalogService.GetProgram(c.Request.Context(), getSessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

// ActiveTrainers lists only trainers that can take bookings.
func (h *CatalogHandler) ActiveTrainers(c *gin.Context) {
	trainers, err := h.catalogService.ActiveTrainers(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trainers)
}

func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), getSessionID(c), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Request.Context(), getSessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) ListTestimonials(c *gin.Context) {
	testimonials, err := h.catalogService.ListTestimonials(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, testimonials)
}

// CreateTestimonial godoc
// @Summary Submit a testimonial
// @Tags Catalog
// @Accept json
// @Produce json
// @Param testimonial body domain.Testimonial true "Testimonial"
// @Success 201 {object} domain.Testimonial
// @Failure 400 {object} gin.H "Invalid input"
// @Router /testimonials [post]
func (h *CatalogHandler) CreateTestimonial(c *gin.Context) {
	var req domain.Testimonial
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.catalogService.CreateTestimonial(c.Request.Context(), getSessionID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// --- Admin program management ---

func (h *CatalogHandler) CreateProgram(c *gin.Context) {
	var req domain.ProgramInput
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.catalogService.CreateProgram(c.Request.Context(), getSessionID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

func (h *CatalogHandler) UpdateProgram(c *gin.Context) {
	var req domain.ProgramInput
	if !bindJSON(c, &req) {
		return
	}
	program, err := h.catalogService.UpdateProgram(c.Request.Context(), getSessionID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

func (h *CatalogHandler) DeleteProgram(c *gin.Context) {
	if err := h.catalogService.DeleteProgram(c.Request.Context(), getSessionID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
