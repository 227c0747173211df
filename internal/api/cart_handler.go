package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vikrantan5/FitSphere-sub000/internal/booking"
	"github.com/vikrantan5/FitSphere-sub000/internal/cart"
	"github.com/vikrantan5/FitSphere-sub000/internal/domain"
	"github.com/vikrantan5/FitSphere-sub000/internal/metrics"
	"github.com/vikrantan5/FitSphere-sub000/internal/payment"
	"github.com/vikrantan5/FitSphere-sub000/internal/repository"
	"github.com/vikrantan5/FitSphere-sub000/internal/service"
)

const checkoutTTL = 30 * time.Minute

// CartHandler serves the shop cart and its checkout. The cart itself works
// without signing in; checkout needs a session.
type CartHandler struct {
	store          repository.StateStore
	backends       service.Backends
	catalogService service.CatalogService
	memberService  service.MemberService
	receiptService service.ReceiptService
	metrics        *metrics.Metrics
	merchant       payment.Merchant

	checkouts *registry[*cart.Checkout]
}

func NewCartHandler(store repository.StateStore, backends service.Backends, catalog service.CatalogService, members service.MemberService, receipts service.ReceiptService, m *metrics.Metrics, merchant payment.Merchant) *CartHandler {
	return &CartHandler{
		store:          store,
		backends:       backends,
		catalogService: catalog,
		memberService:  members,
		receiptService: receipts,
		metrics:        m,
		merchant:       merchant,
		checkouts:      newRegistry[*cart.Checkout](checkoutTTL, nil),
	}
}

// --- Request/Response Structs ---

type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

type UpdateQuantityRequest struct {
	Delta int `json:"delta" binding:"required,min=-1000,max=1000"`
}

type CartResponse struct {
	Items []domain.CartItem `json:"items"`
	Total float64           `json:"total"`
	Count int               `json:"count"`
}

func cartResponse(items []domain.CartItem) CartResponse {
	if items == nil {
		items = []domain.CartItem{}
	}
	return CartResponse{Items: items, Total: cart.Total(items), Count: cart.Count(items)}
}

type CheckoutResponse struct {
	Checkout payment.Options `json:"checkout"`
	Order    domain.Order    `json:"order"`
}

func (h *CartHandler) cartFor(c *gin.Context) *cart.Cart {
	return cart.New(h.store, getSessionID(c))
}

func (h *CartHandler) outcome(o booking.Outcome) {
	if h.metrics != nil {
		h.metrics.IncCheckoutOutcome(string(o))
	}
}

// --- Handler Methods ---

func (h *CartHandler) GetCart(c *gin.Context) {
	items, err := h.cartFor(c).Items(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// AddItem godoc
// @Summary Add a product to the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Param request body AddItemRequest true "Product to add"
// @Success 200 {object} CartResponse
// @Failure 404 {object} gin.H "Unknown product"
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()

	product, err := h.catalogService.GetProduct(ctx, getSessionID(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.cartFor(c).Add(ctx, *product)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

// UpdateQuantity applies a +/- delta. Quantity never drops below one.
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	items, err := h.cartFor(c).UpdateQuantity(c.Request.Context(), c.Param("productId"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	items, err := h.cartFor(c).Remove(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(items))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartFor(c).Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse(nil))
}

// Checkout godoc
// @Summary Create an order for the cart and start payment
// @Tags Cart
// @Accept json
// @Produce json
// @Param customer body domain.CustomerInfo true "Delivery details"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} gin.H "Invalid details or empty cart"
// @Router /cart/checkout [post]
func (h *CartHandler) Checkout(c *gin.Context) {
	var req domain.CustomerInfo
	if !bindJSON(c, &req) {
		return
	}
	sid := getSessionID(c)

	co, err := h.cartFor(c).BeginCheckout(c.Request.Context(), h.backends.For(sid), req, cart.CheckoutOptions{Merchant: h.merchant})
	if err != nil {
		respondError(c, err)
		return
	}
	h.checkouts.Put(sid, co)
	c.JSON(http.StatusOK, CheckoutResponse{Checkout: co.Options(), Order: co.Order()})
}

// CheckoutResult godoc
// @Summary Report the widget result for the cart checkout
// @Tags Cart
// @Accept json
// @Produce json
// @Param result body PaymentResultRequest true "Widget result"
// @Success 200 {object} gin.H "paid or payment_dismissed"
// @Failure 402 {object} gin.H "Verification failed"
// @Router /cart/checkout/result [post]
func (h *CartHandler) CheckoutResult(c *gin.Context) {
	var req PaymentResultRequest
	if !bindJSON(c, &req) {
		return
	}
	sid := getSessionID(c)
	co, ok := h.checkouts.Get(sid)
	if !ok {
		respondError(c, errNoAttempt)
		return
	}

	order, err := co.Resolve(c.Request.Context(), req.Result())
	switch {
	case err == nil:
		h.outcome(booking.OutcomePaid)
		h.checkouts.Remove(sid)
		c.JSON(http.StatusOK, gin.H{"outcome": booking.OutcomePaid, "order": order, "redirect": "/dashboard"})
	case errors.Is(err, payment.ErrDismissed):
		h.outcome(booking.OutcomeDismissed)
		h.checkouts.Remove(sid)
		respondError(c, err)
	case errors.Is(err, cart.ErrVerificationFailed):
		log.Printf("ERROR: Order payment verification failed: %v", err)
		h.outcome(booking.OutcomeVerificationFailed)
		h.checkouts.Remove(sid)
		respondError(c, err)
	default:
		respondError(c, err)
	}
}

// MyOrders lists the signed-in member's order history.
func (h *CartHandler) MyOrders(c *gin.Context) {
	orders, err := h.memberService.MyOrders(c.Request.Context(), getSessionID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *CartHandler) Receipt(c *gin.Context) {
	receipt, err := h.receiptService.OrderReceipt(c.Request.Context(), getSessionID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	sendAttachment(c, receipt.FileName, "application/pdf", receipt.Data)
}

// Forget drops this browser's pending checkout; chained in front of logout.
// The cart itself survives logout.
func (h *CartHandler) Forget(c *gin.Context) {
	h.checkouts.Remove(getSessionID(c))
	c.Next()
}
