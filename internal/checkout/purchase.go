package checkout

import (
	"context"

	"github.com/ready2shop/storefront/internal/cart"
)

// PurchaseRequest is the normalized payload sent to the order gateway.
// Constructed fresh per submission attempt; the JSON shape is the contract
// with the gateway and must not change.
type PurchaseRequest struct {
	Customer        PurchaseCustomer `json:"customer"`
	ShippingAddress PurchaseAddress  `json:"shippingAddress"`
	BillingAddress  PurchaseAddress  `json:"billingAddress"`
	Order           PurchaseOrder    `json:"order"`
	OrderItems      []PurchaseItem   `json:"orderItems"`
}

type PurchaseCustomer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// PurchaseAddress carries state and country flattened to their plain name
// strings; the gateway expects names, not structured refs.
type PurchaseAddress struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	ZipCode string `json:"zipCode"`
}

type PurchaseOrder struct {
	TotalPrice    float64 `json:"totalPrice"`
	TotalQuantity int     `json:"totalQuantity"`
}

type PurchaseItem struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	ImageURL  string  `json:"imageUrl"`
}

// Confirmation is the gateway's success response.
type Confirmation struct {
	OrderTrackingNumber string `json:"orderTrackingNumber"`
}

// OrderGateway places an assembled purchase. Implementations live in the
// gateway package; tests substitute their own.
type OrderGateway interface {
	PlaceOrder(ctx context.Context, purchase *PurchaseRequest) (*Confirmation, error)
}

// buildPurchase assembles the payload from the form sections and the
// current cart state.
func buildPurchase(form *Form, totals cart.Totals, items []cart.LineItem) *PurchaseRequest {
	orderItems := make([]PurchaseItem, len(items))
	for i, item := range items {
		orderItems[i] = PurchaseItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			ImageURL:  item.ImageURL,
		}
	}

	return &PurchaseRequest{
		Customer: PurchaseCustomer{
			FirstName: form.Customer.FirstName.Value,
			LastName:  form.Customer.LastName.Value,
			Email:     form.Customer.Email.Value,
		},
		ShippingAddress: flattenAddress(&form.ShippingAddress),
		BillingAddress:  flattenAddress(&form.BillingAddress),
		Order: PurchaseOrder{
			TotalPrice:    totals.TotalPrice,
			TotalQuantity: totals.TotalQuantity,
		},
		OrderItems: orderItems,
	}
}

// flattenAddress converts the structured state/country refs to their
// display names for the wire payload.
func flattenAddress(a *Address) PurchaseAddress {
	return PurchaseAddress{
		Street:  a.Street.Value,
		City:    a.City.Value,
		State:   a.State.Value.Name,
		Country: a.Country.Value.Name,
		ZipCode: a.ZipCode.Value,
	}
}
