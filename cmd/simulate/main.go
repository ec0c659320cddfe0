package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"ecom-checkout/internal/domain"
	"ecom-checkout/internal/infrastructure/payment"
	"ecom-checkout/internal/repo/memory"
	"ecom-checkout/internal/service"
)

// Offline walkthrough of the checkout flow against the in-memory store and
// the mock provider: price a cart, create an order, fulfill it, retry the
// fulfillment, then race two orders over the last unit of stock.
func main() {
	ctx := context.Background()

	store := memory.NewStore()
	store.SeedProducts(
		domain.Product{ID: 1, Name: "Laptop", Price: decimal.RequireFromString("349.00"), StockQuantity: 5, Available: true},
		domain.Product{ID: 2, Name: "Mouse", Price: decimal.RequireFromString("99.00"), StockQuantity: 3, Available: true},
		domain.Product{ID: 3, Name: "Webcam", Price: decimal.RequireFromString("59.50"), StockQuantity: 1, Available: true},
	)

	gateway := payment.NewMockGateway("INR")
	fulfillSvc := service.NewFulfillmentService(store)
	checkoutSvc := service.NewCheckoutService(store, gateway)

	fmt.Println("--- CHECKOUT ---")
	cart := domain.CheckoutCart{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}
	res, err := checkoutSvc.Checkout(ctx, "alice", cart)
	if err != nil {
		log.Fatalf("checkout failed: %v", err)
	}
	fmt.Printf("order %s amount=%s (%d minor units) status=%s\n",
		res.OrderID, res.Amount, res.AmountMinor, res.Status)

	fmt.Println("--- FULFILL (twice, second is a no-op) ---")
	for i := 0; i < 2; i++ {
		if err := fulfillSvc.Fulfill(ctx, "alice", res.OrderID); err != nil {
			log.Fatalf("fulfill failed: %v", err)
		}
		products, _ := store.Catalog().FindByIDs(ctx, []int{1, 2})
		for _, p := range products {
			fmt.Printf("  %s stock=%d\n", p.Name, p.StockQuantity)
		}
	}

	fmt.Println("--- CONTENTION: two orders for the last webcam ---")
	resA, err := checkoutSvc.Checkout(ctx, "alice", domain.CheckoutCart{{ProductID: 3, Quantity: 1}})
	if err != nil {
		log.Fatalf("checkout failed: %v", err)
	}
	resB, err := checkoutSvc.Checkout(ctx, "bob", domain.CheckoutCart{{ProductID: 3, Quantity: 1}})
	if err != nil {
		log.Fatalf("checkout failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(map[string]error, 2)
	var mu sync.Mutex
	for user, orderID := range map[string]string{"alice": resA.OrderID, "bob": resB.OrderID} {
		wg.Add(1)
		go func(user, orderID string) {
			defer wg.Done()
			err := fulfillSvc.Fulfill(ctx, user, orderID)
			mu.Lock()
			results[user] = err
			mu.Unlock()
		}(user, orderID)
	}
	wg.Wait()

	for user, err := range results {
		if err != nil {
			fmt.Printf("  %s: %v\n", user, err)
		} else {
			fmt.Printf("  %s: fulfilled\n", user)
		}
	}
	webcam, _ := store.Catalog().FindByIDs(ctx, []int{3})
	fmt.Printf("  webcam stock=%d available=%v\n", webcam[0].StockQuantity, webcam[0].Available)
}
