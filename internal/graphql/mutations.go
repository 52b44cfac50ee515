package graphql

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/flemzord/crmd/internal/store"
)

func (r *resolver) createCustomer(p graphql.ResolveParams) (any, error) {
	input, _ := p.Args["input"].(map[string]any)
	name := argString(input, "name")
	email := argString(input, "email")
	phone := argString(input, "phone")

	if errs := crm.ValidateCustomer(name, email, phone); len(errs) > 0 {
		return map[string]any{
			"customer": nil,
			"message":  "Validation failed",
			"errors":   errs,
		}, nil
	}

	c, err := r.store.CreateCustomer(p.Context, crm.Customer{Name: name, Email: email, Phone: phone})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return map[string]any{
			"customer": nil,
			"message":  "Creation failed",
			"errors":   []string{fmt.Sprintf("Email already exists: %s", strings.ToLower(strings.TrimSpace(email)))},
		}, nil
	}
	if err != nil {
		return map[string]any{
			"customer": nil,
			"message":  "Failed to create customer",
			"errors":   []string{err.Error()},
		}, nil
	}

	return map[string]any{
		"customer": c,
		"message":  "Customer created successfully",
		"errors":   []string{},
	}, nil
}

// bulkCreateCustomers creates each record independently: invalid or duplicate
// records are reported and skipped, valid ones are still created.
func (r *resolver) bulkCreateCustomers(p graphql.ResolveParams) (any, error) {
	rawList, _ := p.Args["input"].([]any)

	created := make([]crm.Customer, 0, len(rawList))
	errs := []string{}
	batchEmails := make(map[string]bool, len(rawList))

	for idx, raw := range rawList {
		record, _ := raw.(map[string]any)
		name := argString(record, "name")
		email := argString(record, "email")
		phone := argString(record, "phone")

		if verrs := crm.ValidateCustomer(name, email, phone); len(verrs) > 0 {
			errs = append(errs, fmt.Sprintf("Record %d: %s", idx+1, strings.Join(verrs, ", ")))
			continue
		}

		normalized := strings.ToLower(strings.TrimSpace(email))
		if batchEmails[normalized] {
			errs = append(errs, fmt.Sprintf("Record %d: Duplicate email in batch: %s", idx+1, normalized))
			continue
		}

		c, err := r.store.CreateCustomer(p.Context, crm.Customer{Name: name, Email: email, Phone: phone})
		if errors.Is(err, store.ErrDuplicateEmail) {
			errs = append(errs, fmt.Sprintf("Record %d: Email already exists: %s", idx+1, normalized))
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("Record %d: Error - %s", idx+1, err))
			continue
		}

		batchEmails[normalized] = true
		created = append(created, c)
	}

	return map[string]any{
		"customers":    created,
		"errors":       errs,
		"successCount": len(created),
		"failureCount": len(rawList) - len(created),
	}, nil
}

func (r *resolver) createProduct(p graphql.ResolveParams) (any, error) {
	input, _ := p.Args["input"].(map[string]any)
	name := argString(input, "name")

	price := decimal.Zero
	if v, ok := input["price"].(float64); ok {
		price = decimal.NewFromFloat(v)
	}
	stock := 0
	if v, ok := input["stock"].(int); ok {
		stock = v
	}

	if errs := crm.ValidateProduct(name, price, stock); len(errs) > 0 {
		return map[string]any{
			"product": nil,
			"message": "Validation failed",
			"errors":  errs,
		}, nil
	}

	prod, err := r.store.CreateProduct(p.Context, crm.Product{Name: name, Price: price, Stock: stock})
	if err != nil {
		return map[string]any{
			"product": nil,
			"message": "Failed to create product",
			"errors":  []string{err.Error()},
		}, nil
	}

	return map[string]any{
		"product": prod,
		"message": "Product created successfully",
		"errors":  []string{},
	}, nil
}

func (r *resolver) createOrder(p graphql.ResolveParams) (any, error) {
	input, _ := p.Args["input"].(map[string]any)

	customerID, err := argID(input, "customerId")
	if err != nil {
		return map[string]any{
			"order":   nil,
			"message": "Order creation failed",
			"errors":  []string{fmt.Sprintf("Invalid customer ID: %v", input["customerId"])},
		}, nil
	}

	rawIDs, _ := input["productIds"].([]any)
	productIDs := make([]int64, 0, len(rawIDs))
	for _, raw := range rawIDs {
		s, _ := raw.(string)
		id, perr := parseID(s)
		if perr != nil {
			return map[string]any{
				"order":   nil,
				"message": "Order creation failed",
				"errors":  []string{fmt.Sprintf("Invalid product ID: %v", raw)},
			}, nil
		}
		productIDs = append(productIDs, id)
	}

	orderDate := time.Now().UTC()
	if raw := argString(input, "orderDate"); raw != "" {
		t, terr := argTime(input, "orderDate")
		if terr != nil {
			return map[string]any{
				"order":   nil,
				"message": "Order creation failed",
				"errors":  []string{fmt.Sprintf("Invalid order date: %s", raw)},
			}, nil
		}
		orderDate = *t
	}

	o, err := r.store.CreateOrder(p.Context, customerID, productIDs, orderDate)
	switch {
	case errors.Is(err, store.ErrCustomerNotFound):
		return map[string]any{
			"order":   nil,
			"message": "Order creation failed",
			"errors":  []string{fmt.Sprintf("Invalid customer ID: %d", customerID)},
		}, nil
	case errors.Is(err, store.ErrNoProducts):
		return map[string]any{
			"order":   nil,
			"message": "Order creation failed",
			"errors":  []string{"At least one product must be selected"},
		}, nil
	case errors.Is(err, store.ErrProductNotFound):
		msg := "Invalid product ID"
		if _, id, ok := strings.Cut(err.Error(), ": id "); ok {
			msg += ": " + id
		}
		return map[string]any{
			"order":   nil,
			"message": "Order creation failed",
			"errors":  []string{msg},
		}, nil
	case err != nil:
		return map[string]any{
			"order":   nil,
			"message": "Failed to create order",
			"errors":  []string{err.Error()},
		}, nil
	}

	return map[string]any{
		"order":   o,
		"message": "Order created successfully",
		"errors":  []string{},
	}, nil
}

func (r *resolver) updateLowStockProducts(p graphql.ResolveParams) (any, error) {
	products, err := r.store.RestockLowProducts(p.Context, 10, 10)
	if err != nil {
		return map[string]any{
			"products": []crm.Product{},
			"message":  fmt.Sprintf("Failed to update low stock products: %s", err),
		}, nil
	}
	return map[string]any{
		"products": products,
		"message":  fmt.Sprintf("Low stock products updated successfully: %d restocked", len(products)),
	}, nil
}
