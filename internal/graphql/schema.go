// Package graphql exposes the CRM store over GraphQL: filterable queries for
// customers, products, and orders, plus the create and replenishment
// mutations. Mutations report validation problems in a payload errors list
// rather than as GraphQL errors.
package graphql

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/store"
)

// NewSchema builds the executable schema over the given store.
func NewSchema(st store.Store) (graphql.Schema, error) {
	r := &resolver{store: st}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"hello": &graphql.Field{
				Type: graphql.String,
				Resolve: func(graphql.ResolveParams) (any, error) {
					return "Hello, GraphQL!", nil
				},
			},
			"allCustomers": &graphql.Field{
				Type: graphql.NewList(customerType),
				Args: graphql.FieldConfigArgument{
					"name":         &graphql.ArgumentConfig{Type: graphql.String},
					"email":        &graphql.ArgumentConfig{Type: graphql.String},
					"phonePattern": &graphql.ArgumentConfig{Type: graphql.String},
					"createdAtGte": &graphql.ArgumentConfig{Type: graphql.String},
					"createdAtLte": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: r.allCustomers,
			},
			"allProducts": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"name":     &graphql.ArgumentConfig{Type: graphql.String},
					"priceGte": &graphql.ArgumentConfig{Type: graphql.Float},
					"priceLte": &graphql.ArgumentConfig{Type: graphql.Float},
					"stockGte": &graphql.ArgumentConfig{Type: graphql.Int},
					"stockLte": &graphql.ArgumentConfig{Type: graphql.Int},
					"lowStock": &graphql.ArgumentConfig{Type: graphql.Boolean},
				},
				Resolve: r.allProducts,
			},
			"allOrders": &graphql.Field{
				Type: graphql.NewList(orderType),
				Args: graphql.FieldConfigArgument{
					"totalAmountGte": &graphql.ArgumentConfig{Type: graphql.Float},
					"totalAmountLte": &graphql.ArgumentConfig{Type: graphql.Float},
					"orderDateGte":   &graphql.ArgumentConfig{Type: graphql.String},
					"orderDateLte":   &graphql.ArgumentConfig{Type: graphql.String},
					"customerName":   &graphql.ArgumentConfig{Type: graphql.String},
					"customerEmail":  &graphql.ArgumentConfig{Type: graphql.String},
					"productId":      &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: r.allOrders,
			},
			"customer": &graphql.Field{
				Type:    customerType,
				Args:    idArg(),
				Resolve: r.customer,
			},
			"product": &graphql.Field{
				Type:    productType,
				Args:    idArg(),
				Resolve: r.product,
			},
			"order": &graphql.Field{
				Type:    orderType,
				Args:    idArg(),
				Resolve: r.order,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createCustomer": &graphql.Field{
				Type: createCustomerPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(customerInput)},
				},
				Resolve: r.createCustomer,
			},
			"bulkCreateCustomers": &graphql.Field{
				Type: bulkCreateCustomersPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(customerInput)))},
				},
				Resolve: r.bulkCreateCustomers,
			},
			"createProduct": &graphql.Field{
				Type: createProductPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(productInput)},
				},
				Resolve: r.createProduct,
			},
			"createOrder": &graphql.Field{
				Type: createOrderPayload,
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(orderInput)},
				},
				Resolve: r.createOrder,
			},
			"updateLowStockProducts": &graphql.Field{
				Type:    updateLowStockPayload,
				Resolve: r.updateLowStockProducts,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
}

type resolver struct {
	store store.Store
}

func idArg() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
}

func (r *resolver) allCustomers(p graphql.ResolveParams) (any, error) {
	f := store.CustomerFilter{
		NameContains:  argString(p.Args, "name"),
		EmailContains: argString(p.Args, "email"),
		PhonePrefix:   argString(p.Args, "phonePattern"),
	}
	var err error
	if f.CreatedAfter, err = argTime(p.Args, "createdAtGte"); err != nil {
		return nil, err
	}
	if f.CreatedBefore, err = argTime(p.Args, "createdAtLte"); err != nil {
		return nil, err
	}
	return r.store.ListCustomers(p.Context, f)
}

func (r *resolver) allProducts(p graphql.ResolveParams) (any, error) {
	f := store.ProductFilter{
		NameContains: argString(p.Args, "name"),
		PriceMin:     argDecimal(p.Args, "priceGte"),
		PriceMax:     argDecimal(p.Args, "priceLte"),
		StockMin:     argInt(p.Args, "stockGte"),
		StockMax:     argInt(p.Args, "stockLte"),
	}
	if v, ok := p.Args["lowStock"].(bool); ok {
		f.LowStock = v
	}
	return r.store.ListProducts(p.Context, f)
}

func (r *resolver) allOrders(p graphql.ResolveParams) (any, error) {
	f := store.OrderFilter{
		TotalMin:      argDecimal(p.Args, "totalAmountGte"),
		TotalMax:      argDecimal(p.Args, "totalAmountLte"),
		CustomerName:  argString(p.Args, "customerName"),
		CustomerEmail: argString(p.Args, "customerEmail"),
	}
	var err error
	if f.DateFrom, err = argTime(p.Args, "orderDateGte"); err != nil {
		return nil, err
	}
	if f.DateTo, err = argTime(p.Args, "orderDateLte"); err != nil {
		return nil, err
	}
	if raw := argString(p.Args, "productId"); raw != "" {
		id, perr := strconv.ParseInt(raw, 10, 64)
		if perr != nil {
			return nil, fmt.Errorf("graphql: invalid product ID: %s", raw)
		}
		f.ProductID = id
	}
	return r.store.ListOrders(p.Context, f)
}

func (r *resolver) customer(p graphql.ResolveParams) (any, error) {
	id, err := argID(p.Args, "id")
	if err != nil {
		return nil, err
	}
	c, err := r.store.GetCustomer(p.Context, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *resolver) product(p graphql.ResolveParams) (any, error) {
	id, err := argID(p.Args, "id")
	if err != nil {
		return nil, err
	}
	prod, err := r.store.GetProduct(p.Context, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return prod, nil
}

func (r *resolver) order(p graphql.ResolveParams) (any, error) {
	id, err := argID(p.Args, "id")
	if err != nil {
		return nil, err
	}
	o, err := r.store.GetOrder(p.Context, id)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// argString returns the string argument or "" when absent.
func argString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func argInt(args map[string]any, key string) *int {
	v, ok := args[key].(int)
	if !ok {
		return nil
	}
	return &v
}

func argDecimal(args map[string]any, key string) *decimal.Decimal {
	v, ok := args[key].(float64)
	if !ok {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}

// dateLayouts are the accepted formats for date/time arguments.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func argTime(args map[string]any, key string) (*time.Time, error) {
	raw, ok := args[key].(string)
	if !ok || raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("graphql: invalid date: %s", raw)
}

func argID(args map[string]any, key string) (int64, error) {
	raw, ok := args[key].(string)
	if !ok {
		return 0, fmt.Errorf("graphql: missing ID argument %q", key)
	}
	return parseID(raw)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("graphql: invalid ID: %s", raw)
	}
	return id, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrCustomerNotFound) ||
		errors.Is(err, store.ErrProductNotFound) ||
		errors.Is(err, store.ErrOrderNotFound)
}
