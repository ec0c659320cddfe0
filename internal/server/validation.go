package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ecom-checkout/internal/domain"
)

var validate = validatorv10.New()

// CheckoutRequest carries the cart for the production create-order path and
// for attaching items to an existing order.
type CheckoutRequest struct {
	Items []CheckoutItemRequest `json:"items" validate:"required,min=1,dive"`
}

type CheckoutItemRequest struct {
	ProductID int `json:"productId" validate:"required"`
	Quantity  int `json:"quantity" validate:"required"`
}

func (r CheckoutRequest) Cart() domain.CheckoutCart {
	cart := make(domain.CheckoutCart, 0, len(r.Items))
	for _, it := range r.Items {
		cart = append(cart, domain.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return cart
}

// CreateOrderRequest is the legacy/debug path body.
type CreateOrderRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// VerifyRequest keeps the provider callback field names so the existing
// frontend can post the payload unchanged.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// BindAndValidate binds JSON into req and runs struct validation, writing a
// 400 and returning false on failure.
func BindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
