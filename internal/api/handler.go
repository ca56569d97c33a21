package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/admin"
	"storefront/internal/app"
	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/policy"
	"storefront/internal/util"
)

// Handler exposes the sync layer over HTTP for embedding hosts: readiness,
// metrics, the mirrored catalog, and the cart/checkout flow.
type Handler struct {
	app *app.App
}

// NewHandler creates a new HTTP handler
func NewHandler(a *app.App) *Handler {
	return &Handler{app: a}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.listProducts)
		v1.GET("/categories", h.listCategories)
		v1.GET("/banners", h.listBanners)
		v1.GET("/config", h.storeConfig)
		v1.GET("/purchases", h.listPurchases)

		v1.GET("/cart", h.getCart)
		v1.POST("/cart/items", h.addCartItem)
		v1.PATCH("/cart/items/:id", h.adjustCartItem)
		v1.DELETE("/cart/items/:id", h.removeCartItem)

		v1.POST("/checkout", h.submitCheckout)

		adm := v1.Group("/admin")
		{
			adm.POST("/enter", h.enterAdmin)
			adm.POST("/exit", h.exitAdmin)
			adm.PUT("/products", h.saveProduct)
			adm.DELETE("/products/:id", h.deleteProduct)
			adm.PATCH("/orders/:id/status", h.updateOrderStatus)
			adm.DELETE("/orders/:id", h.deleteOrder)
			adm.PATCH("/users/:id/status", h.setUserStatus)
			adm.PUT("/banners", h.saveBanner)
			adm.DELETE("/banners/:id", h.deleteBanner)
			adm.PUT("/config", h.saveStoreConfig)
		}
	}
}

func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports 503 until every feed has delivered at least one
// snapshot.
func (h *Handler) readinessCheck(c *gin.Context) {
	if !h.app.Gate.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "loading"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

func (h *Handler) listProducts(c *gin.Context) {
	category := c.DefaultQuery("category", models.CategoryAll)
	c.JSON(http.StatusOK, gin.H{
		"products": h.app.Catalog.FilterByCategory(category),
	})
}

func (h *Handler) listCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.app.Catalog.Categories()})
}

func (h *Handler) listBanners(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"banners": h.app.Promotion.Banners(),
		"active":  h.app.Rotator.Index(),
	})
}

func (h *Handler) storeConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"site_name": h.app.Promotion.SiteName(),
		"whatsapp":  h.app.Promotion.WhatsApp(),
	})
}

func (h *Handler) listPurchases(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"orders": h.app.Orders.MyPurchases()})
}

func (h *Handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": h.app.Cart.Items(),
		"total": h.app.Cart.Total(),
	})
}

type addCartItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var product *models.Product
	for _, p := range h.app.Catalog.Products() {
		if p.ID == req.ProductID {
			p := p
			product = &p
			break
		}
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	decision := h.app.Cart.Add(*product)
	if !decision.Allowed {
		status := http.StatusForbidden
		if decision.Reason == policy.ReasonRequiresAuth {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{"error": string(decision.Reason)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": h.app.Cart.Count()})
}

type adjustCartItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

func (h *Handler) adjustCartItem(c *gin.Context) {
	var req adjustCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	h.app.Cart.AdjustQuantity(c.Param("id"), req.Delta)
	c.JSON(http.StatusOK, gin.H{"items": h.app.Cart.Items()})
}

func (h *Handler) removeCartItem(c *gin.Context) {
	h.app.Cart.Remove(c.Param("id"))
	c.Status(http.StatusNoContent)
}

type checkoutRequest struct {
	Name     string `json:"name"`
	WhatsApp string `json:"whatsapp"`
	Channel  string `json:"channel"`
}

func (h *Handler) submitCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// A retried request finds the previous attempt still collecting
	// contact info and picks it up rather than re-entering the cart.
	if h.app.Checkout.State() == checkout.StateCollectingCart {
		if err := h.app.Checkout.BeginCheckout(); err != nil {
			c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
			return
		}
	}
	h.app.Checkout.SetContact(req.Name, req.WhatsApp)

	channel := checkout.ChannelDirect
	if req.Channel == string(checkout.ChannelHandoff) {
		channel = checkout.ChannelHandoff
	}

	order, err := h.app.Checkout.Submit(c.Request.Context(), channel)
	if err != nil {
		// Reset only collapses a failed write back to the cart; a
		// validation error leaves the attempt collecting contact info.
		h.app.Checkout.Reset()
		c.JSON(checkoutStatus(err), gin.H{"error": err.Error()})
		return
	}
	h.app.Checkout.Reset()

	c.JSON(http.StatusCreated, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"total":    order.Total,
	})
}

func (h *Handler) enterAdmin(c *gin.Context) {
	if err := h.app.Admin.Enter(); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"admin": true})
}

func (h *Handler) exitAdmin(c *gin.Context) {
	h.app.Admin.Exit()
	c.JSON(http.StatusOK, gin.H{"admin": false})
}

func (h *Handler) saveProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.app.Admin.SaveProduct(c.Request.Context(), p); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": p.ID})
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.app.Admin.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.app.Admin.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
}

func (h *Handler) deleteOrder(c *gin.Context) {
	if err := h.app.Admin.DeleteOrder(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setUserStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.app.Admin.SetUserStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": c.Param("id"), "status": req.Status})
}

func (h *Handler) saveBanner(c *gin.Context) {
	var b models.Banner
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.app.Admin.SaveBanner(c.Request.Context(), b); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": b.ID})
}

func (h *Handler) deleteBanner(c *gin.Context) {
	if err := h.app.Admin.DeleteBanner(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) saveStoreConfig(c *gin.Context) {
	var cfg models.StoreConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.app.Admin.SaveStoreConfig(c.Request.Context(), cfg); err != nil {
		c.JSON(adminStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"site_name": cfg.SiteName})
}

func adminStatus(err error) int {
	switch {
	case errors.Is(err, admin.ErrNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, admin.ErrBadTransition):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func checkoutStatus(err error) int {
	switch {
	case errors.Is(err, checkout.ErrRequiresAuth):
		return http.StatusUnauthorized
	case errors.Is(err, checkout.ErrAccountFrozen):
		return http.StatusForbidden
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrMissingContact),
		errors.Is(err, checkout.ErrBadState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSubmitInFlight):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
