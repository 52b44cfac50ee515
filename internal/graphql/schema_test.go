package graphql

import (
	"context"
	"fmt"
	"strings"
	"testing"

	gql "github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"

	"github.com/flemzord/crmd/internal/crm"
	"github.com/flemzord/crmd/internal/store/sqlite"
)

func newTestSchema(t *testing.T) (gql.Schema, *sqlite.SQLStore) {
	t.Helper()
	st, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	schema, err := NewSchema(st)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return schema, st
}

// exec runs a query and fails the test on GraphQL errors.
func exec(t *testing.T, schema gql.Schema, query string) map[string]any {
	t.Helper()
	result := gql.Do(gql.Params{
		Schema:        schema,
		RequestString: query,
		Context:       context.Background(),
	})
	if len(result.Errors) > 0 {
		t.Fatalf("query %q failed: %v", query, result.Errors)
	}
	data, ok := result.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data type %T", result.Data)
	}
	return data
}

func payload(t *testing.T, data map[string]any, field string) map[string]any {
	t.Helper()
	p, ok := data[field].(map[string]any)
	if !ok {
		t.Fatalf("field %q = %T, want object", field, data[field])
	}
	return p
}

func errList(t *testing.T, p map[string]any) []string {
	t.Helper()
	raw, ok := p["errors"].([]any)
	if !ok {
		t.Fatalf("errors = %T, want list", p["errors"])
	}
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i], _ = v.(string)
	}
	return out
}

func mustCreateCustomer(t *testing.T, st *sqlite.SQLStore, name, email string) crm.Customer {
	t.Helper()
	c, err := st.CreateCustomer(context.Background(), crm.Customer{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

func mustCreateProduct(t *testing.T, st *sqlite.SQLStore, name string, price float64) crm.Product {
	t.Helper()
	return mustCreateProductStock(t, st, name, price, 50)
}

func mustCreateProductStock(t *testing.T, st *sqlite.SQLStore, name string, price float64, stock int) crm.Product {
	t.Helper()
	p, err := st.CreateProduct(context.Background(), crm.Product{
		Name:  name,
		Price: decimal.NewFromFloat(price),
		Stock: stock,
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func TestQueryHello(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)
	data := exec(t, schema, `{ hello }`)
	if data["hello"] != "Hello, GraphQL!" {
		t.Errorf("hello = %v", data["hello"])
	}
}

func TestCreateCustomer(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)

	data := exec(t, schema, `mutation {
		createCustomer(input: {name: "Alice", email: "alice@example.com", phone: "+1234567890"}) {
			message
			errors
			customer { id name email }
		}
	}`)

	p := payload(t, data, "createCustomer")
	if p["message"] != "Customer created successfully" {
		t.Errorf("message = %v", p["message"])
	}
	if len(errList(t, p)) != 0 {
		t.Errorf("errors = %v", p["errors"])
	}
	c, ok := p["customer"].(map[string]any)
	if !ok {
		t.Fatalf("customer = %T", p["customer"])
	}
	if c["name"] != "Alice" || c["email"] != "alice@example.com" {
		t.Errorf("customer = %v", c)
	}
}

func TestCreateCustomer_ValidationFailed(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)

	data := exec(t, schema, `mutation {
		createCustomer(input: {name: "", email: "not-an-email"}) {
			message
			errors
			customer { id }
		}
	}`)

	p := payload(t, data, "createCustomer")
	if p["message"] != "Validation failed" {
		t.Errorf("message = %v", p["message"])
	}
	if got := errList(t, p); len(got) != 2 {
		t.Errorf("errors = %v, want name and email problems", got)
	}
	if p["customer"] != nil {
		t.Errorf("customer = %v, want null", p["customer"])
	}
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)

	exec(t, schema, `mutation {
		createCustomer(input: {name: "Alice", email: "alice@example.com"}) { message }
	}`)
	data := exec(t, schema, `mutation {
		createCustomer(input: {name: "Other", email: "ALICE@example.com"}) {
			message
			errors
		}
	}`)

	p := payload(t, data, "createCustomer")
	if p["message"] != "Creation failed" {
		t.Errorf("message = %v", p["message"])
	}
	got := errList(t, p)
	if len(got) != 1 || got[0] != "Email already exists: alice@example.com" {
		t.Errorf("errors = %v", got)
	}
}

func TestBulkCreateCustomers(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)

	data := exec(t, schema, `mutation {
		bulkCreateCustomers(input: [
			{name: "Alice", email: "alice@example.com"},
			{name: "", email: "bad"},
			{name: "Alice Again", email: "alice@example.com"},
			{name: "Bob", email: "bob@example.com"}
		]) {
			successCount
			failureCount
			errors
			customers { name }
		}
	}`)

	p := payload(t, data, "bulkCreateCustomers")
	if p["successCount"] != 2 {
		t.Errorf("successCount = %v, want 2", p["successCount"])
	}
	if p["failureCount"] != 2 {
		t.Errorf("failureCount = %v, want 2", p["failureCount"])
	}

	got := errList(t, p)
	if len(got) != 2 {
		t.Fatalf("errors = %v, want 2", got)
	}
	if got[1] != "Record 3: Duplicate email in batch: alice@example.com" {
		t.Errorf("errors[1] = %q", got[1])
	}
}

func TestCreateProduct_ValidationFailed(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)

	data := exec(t, schema, `mutation {
		createProduct(input: {name: "Widget", price: 0}) {
			message
			errors
		}
	}`)

	p := payload(t, data, "createProduct")
	if p["message"] != "Validation failed" {
		t.Errorf("message = %v", p["message"])
	}
	got := errList(t, p)
	if len(got) != 1 || !strings.HasPrefix(got[0], "Price must be positive") {
		t.Errorf("errors = %v", got)
	}
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	schema, st := newTestSchema(t)

	c := mustCreateCustomer(t, st, "Alice", "alice@example.com")
	p1 := mustCreateProduct(t, st, "Widget", 9.99)
	p2 := mustCreateProduct(t, st, "Gadget", 20.01)

	data := exec(t, schema, fmt.Sprintf(`mutation {
		createOrder(input: {customerId: "%d", productIds: ["%d", "%d"]}) {
			message
			errors
			order { id totalAmount customer { name } products { name } }
		}
	}`, c.ID, p1.ID, p2.ID))

	pay := payload(t, data, "createOrder")
	if pay["message"] != "Order created successfully" {
		t.Fatalf("message = %v, errors = %v", pay["message"], pay["errors"])
	}
	o, ok := pay["order"].(map[string]any)
	if !ok {
		t.Fatalf("order = %T", pay["order"])
	}
	if total, _ := o["totalAmount"].(float64); total != 30.00 {
		t.Errorf("totalAmount = %v, want 30", o["totalAmount"])
	}
	cust, _ := o["customer"].(map[string]any)
	if cust["name"] != "Alice" {
		t.Errorf("order customer = %v", o["customer"])
	}
	if products, _ := o["products"].([]any); len(products) != 2 {
		t.Errorf("products = %v, want 2", o["products"])
	}
}

func TestCreateOrder_BadInput(t *testing.T) {
	t.Parallel()

	schema, st := newTestSchema(t)
	c := mustCreateCustomer(t, st, "Alice", "alice@example.com")

	t.Run("unknown customer", func(t *testing.T) {
		data := exec(t, schema, `mutation {
			createOrder(input: {customerId: "999", productIds: ["1"]}) { message errors }
		}`)
		p := payload(t, data, "createOrder")
		got := errList(t, p)
		if p["message"] != "Order creation failed" || len(got) != 1 || got[0] != "Invalid customer ID: 999" {
			t.Errorf("payload = %v", p)
		}
	})

	t.Run("no products", func(t *testing.T) {
		data := exec(t, schema, fmt.Sprintf(`mutation {
			createOrder(input: {customerId: "%d", productIds: []}) { message errors }
		}`, c.ID))
		p := payload(t, data, "createOrder")
		got := errList(t, p)
		if len(got) != 1 || got[0] != "At least one product must be selected" {
			t.Errorf("errors = %v", got)
		}
	})

	t.Run("unknown product", func(t *testing.T) {
		data := exec(t, schema, fmt.Sprintf(`mutation {
			createOrder(input: {customerId: "%d", productIds: ["999"]}) { message errors }
		}`, c.ID))
		p := payload(t, data, "createOrder")
		got := errList(t, p)
		if len(got) != 1 || got[0] != "Invalid product ID: 999" {
			t.Errorf("errors = %v", got)
		}
	})
}

func TestAllProducts_LowStockFilter(t *testing.T) {
	t.Parallel()

	schema, st := newTestSchema(t)

	mustCreateProductStock(t, st, "Laptop", 999.99, 4)
	mustCreateProductStock(t, st, "Mouse", 19.99, 100)

	data := exec(t, schema, `{ allProducts(lowStock: true) { name stock } }`)
	products, ok := data["allProducts"].([]any)
	if !ok {
		t.Fatalf("allProducts = %T", data["allProducts"])
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	p, _ := products[0].(map[string]any)
	if p["name"] != "Laptop" {
		t.Errorf("product = %v", p)
	}
}

func TestCustomer_NotFoundIsNull(t *testing.T) {
	t.Parallel()

	schema, _ := newTestSchema(t)
	data := exec(t, schema, `{ customer(id: "999") { id name } }`)
	if data["customer"] != nil {
		t.Errorf("customer = %v, want null", data["customer"])
	}
}

func TestUpdateLowStockProducts(t *testing.T) {
	t.Parallel()

	schema, st := newTestSchema(t)

	mustCreateProductStock(t, st, "Widget", 5.00, 3)
	mustCreateProductStock(t, st, "Gadget", 5.00, 50)

	data := exec(t, schema, `mutation {
		updateLowStockProducts {
			message
			products { name stock }
		}
	}`)

	p := payload(t, data, "updateLowStockProducts")
	if p["message"] != "Low stock products updated successfully: 1 restocked" {
		t.Errorf("message = %v", p["message"])
	}
	products, _ := p["products"].([]any)
	if len(products) != 1 {
		t.Fatalf("products = %v, want 1", p["products"])
	}
	prod, _ := products[0].(map[string]any)
	if prod["name"] != "Widget" || prod["stock"] != 13 {
		t.Errorf("product = %v, want Widget with stock 13", prod)
	}
}
