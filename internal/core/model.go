package core

import (
	"encoding/json"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ParsedLine is one validated fixed-width record. It only exists when all
// six fields passed validation.
type ParsedLine struct {
	UserID    int64
	Name      string
	OrderID   int64
	ProductID int64
	Value     decimal.Decimal
	Date      civil.Date
}

// Product is a single priced item inside an order. Products with the same
// ID may appear more than once in one order.
type Product struct {
	ID    int64           `json:"id"`
	Price decimal.Decimal `json:"price"`
}

// Order groups the products bought by a user under one order ID.
type Order struct {
	ID       int64      `json:"id"`
	Date     civil.Date `json:"date"`
	Products []Product  `json:"products"`
}

// Total returns the sum of all product prices.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, p := range o.Products {
		total = total.Add(p.Price)
	}
	return total
}

// MarshalJSON adds the computed total to the encoded order.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	products := o.Products
	if products == nil {
		products = []Product{}
	}
	return json.Marshal(struct {
		plain
		Products []Product      `json:"products"`
		Total    decimal.Decimal `json:"total"`
	}{
		plain:    plain(o),
		Products: products,
		Total:    o.Total(),
	})
}

func (o Order) clone() Order {
	c := o
	c.Products = append([]Product(nil), o.Products...)
	return c
}

// User is the top of the hierarchy: a customer and the orders seen for it.
type User struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Orders []Order `json:"orders"`
}

// Clone returns a deep copy that shares no slices with u.
func (u User) Clone() User {
	c := u
	if u.Orders != nil {
		c.Orders = make([]Order, len(u.Orders))
		for i, o := range u.Orders {
			c.Orders[i] = o.clone()
		}
	}
	return c
}

func cloneUsers(users []User) []User {
	out := make([]User, len(users))
	for i, u := range users {
		out[i] = u.Clone()
	}
	return out
}

// AggregationResult is the outcome of processing one input: the users built
// from valid lines, in first-seen order, and one message per rejected line.
type AggregationResult struct {
	Users  []User   `json:"users"`
	Errors []string `json:"errors"`

	// LinesRead counts physical lines, blank ones included.
	LinesRead int `json:"lines_read"`
}
