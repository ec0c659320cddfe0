package server

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"ecom-checkout/internal/database"
	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "http").Logger()

// Identity is what the auth collaborator attaches to a request. How it is
// produced (tokens, sessions) is not this subsystem's concern.
type Identity struct {
	Username string
	Admin    bool
}

// IdentityResolver extracts the caller identity from a request. An empty
// username means the request is unauthenticated.
type IdentityResolver func(r *http.Request) Identity

// HeaderIdentity trusts upstream-set headers. Suitable only behind an
// authenticating proxy; real deployments plug their own resolver in.
func HeaderIdentity(r *http.Request) Identity {
	return Identity{
		Username: r.Header.Get("X-Username"),
		Admin:    r.Header.Get("X-Role") == "admin",
	}
}

// Config groups dependencies for the HTTP boundary.
type Config struct {
	Checkout     *service.CheckoutService
	Payments     *service.PaymentService
	Health       database.Service
	Identity     IdentityResolver
	AllowOrigins []string
}

func New(cfg Config) *gin.Engine {
	if cfg.Identity == nil {
		cfg.Identity = HeaderIdentity
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "X-Username", "X-Role")
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, cfg.Health.Health(c.Request.Context()))
	})

	api := r.Group("/api/payments")

	api.POST("/checkout/create-order", func(c *gin.Context) {
		id := cfg.Identity(c.Request)

		var req CheckoutRequest
		if !BindAndValidate(c, &req) {
			return
		}

		res, err := cfg.Checkout.Checkout(c.Request.Context(), id.Username, req.Cart())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, checkoutResponse(res))
	})

	// Debug-only path: the client supplies a raw amount. The production
	// flow is /checkout/create-order where the server computes it.
	api.POST("/create-order", func(c *gin.Context) {
		id := cfg.Identity(c.Request)

		var req CreateOrderRequest
		if !BindAndValidate(c, &req) {
			return
		}

		res, err := cfg.Checkout.CreateOrder(c.Request.Context(), id.Username, req.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, checkoutResponse(res))
	})

	api.POST("/verify", func(c *gin.Context) {
		id := cfg.Identity(c.Request)

		var req VerifyRequest
		if !BindAndValidate(c, &req) {
			return
		}

		status, err := cfg.Payments.Verify(c.Request.Context(), id.Username, req.OrderID, req.PaymentID, req.Signature)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	})

	api.POST("/orders/:orderId/items", func(c *gin.Context) {
		id := cfg.Identity(c.Request)

		var req CheckoutRequest
		if !BindAndValidate(c, &req) {
			return
		}

		err := cfg.Payments.AttachCheckoutItems(c.Request.Context(), id.Username, c.Param("orderId"), req.Cart())
		if err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	api.GET("/my", func(c *gin.Context) {
		id := cfg.Identity(c.Request)

		orders, err := cfg.Payments.MyOrders(c.Request.Context(), id.Username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderViews(orders))
	})

	api.GET("/all", func(c *gin.Context) {
		id := cfg.Identity(c.Request)
		if id.Username == "" {
			writeError(c, domain.ErrUnauthorized)
			return
		}
		if !id.Admin {
			writeError(c, domain.ErrForbidden)
			return
		}

		orders, err := cfg.Payments.AllOrders(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderViews(orders))
	})

	return r
}

func checkoutResponse(res *service.CheckoutResult) gin.H {
	body := gin.H{
		"provider": res.Provider,
		"orderId":  res.OrderID,
		"amount":   res.AmountMinor,
		"currency": res.Currency,
		"status":   res.Status,

		"computedAmount": res.Amount,
	}
	if res.PaymentID != "" {
		body["paymentId"] = res.PaymentID
	}
	if res.KeyID != "" {
		body["keyId"] = res.KeyID
	}
	return body
}

// OrderView is the read-only ledger projection exposed to clients.
type OrderView struct {
	OrderID   string          `json:"orderId"`
	PaymentID string          `json:"paymentId,omitempty"`
	Username  string          `json:"username"`
	Provider  string          `json:"provider"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Status    string          `json:"status"`
	Fulfilled bool            `json:"fulfilled"`
	CreatedAt string          `json:"createdAt"`
}

func toOrderViews(orders []domain.PaymentOrder) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderView{
			OrderID:   o.OrderID,
			PaymentID: o.PaymentID,
			Username:  o.Username,
			Provider:  o.Provider,
			Amount:    o.Amount,
			Currency:  o.Currency,
			Status:    string(o.Status),
			Fulfilled: o.Fulfilled,
			CreatedAt: o.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return views
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		// Internal details stay out of the response body.
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidPrice),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrSignatureMismatch),
		errors.Is(err, domain.ErrPaymentNotPaid),
		errors.Is(err, domain.ErrInvalidSnapshot),
		errors.Is(err, domain.ErrOrderClosed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
