package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/flemzord/crmd/internal/crm"
)

const apiTimeLayout = "2006-01-02 15:04:05"

var customerType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Customer",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Customer).ID, nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Customer).Name, nil
			},
		},
		"email": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Customer).Email, nil
			},
		},
		"phone": &graphql.Field{
			Type: graphql.String,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Customer).Phone, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Customer).CreatedAt.Format(apiTimeLayout), nil
			},
		},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Product).ID, nil
			},
		},
		"name": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Product).Name, nil
			},
		},
		"price": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Product).Price.InexactFloat64(), nil
			},
		},
		"stock": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Int),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Product).Stock, nil
			},
		},
		"createdAt": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Product).CreatedAt.Format(apiTimeLayout), nil
			},
		},
	},
})

var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id": &graphql.Field{
			Type: graphql.NewNonNull(graphql.ID),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Order).ID, nil
			},
		},
		"customer": &graphql.Field{
			Type: customerType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				o := p.Source.(crm.Order)
				if o.Customer == nil {
					return nil, nil
				}
				return *o.Customer, nil
			},
		},
		"products": &graphql.Field{
			Type: graphql.NewList(productType),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Order).Products, nil
			},
		},
		"orderDate": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Order).OrderDate.Format(apiTimeLayout), nil
			},
		},
		"totalAmount": &graphql.Field{
			Type: graphql.NewNonNull(graphql.Float),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(crm.Order).TotalAmount.InexactFloat64(), nil
			},
		},
	},
})

var customerInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CustomerInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phone": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var productInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ProductInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"name":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"price": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Float)},
		"stock": &graphql.InputObjectFieldConfig{Type: graphql.Int, DefaultValue: 0},
	},
})

var orderInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OrderInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"customerId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"productIds": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
		"orderDate":  &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var createCustomerPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateCustomerPayload",
	Fields: graphql.Fields{
		"customer": &graphql.Field{Type: customerType},
		"message":  &graphql.Field{Type: graphql.String},
		"errors":   &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var bulkCreateCustomersPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "BulkCreateCustomersPayload",
	Fields: graphql.Fields{
		"customers":    &graphql.Field{Type: graphql.NewList(customerType)},
		"errors":       &graphql.Field{Type: graphql.NewList(graphql.String)},
		"successCount": &graphql.Field{Type: graphql.Int},
		"failureCount": &graphql.Field{Type: graphql.Int},
	},
})

var createProductPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateProductPayload",
	Fields: graphql.Fields{
		"product": &graphql.Field{Type: productType},
		"message": &graphql.Field{Type: graphql.String},
		"errors":  &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var createOrderPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "CreateOrderPayload",
	Fields: graphql.Fields{
		"order":   &graphql.Field{Type: orderType},
		"message": &graphql.Field{Type: graphql.String},
		"errors":  &graphql.Field{Type: graphql.NewList(graphql.String)},
	},
})

var updateLowStockPayload = graphql.NewObject(graphql.ObjectConfig{
	Name: "UpdateLowStockProductsPayload",
	Fields: graphql.Fields{
		"products": &graphql.Field{Type: graphql.NewList(productType)},
		"message":  &graphql.Field{Type: graphql.String},
	},
})
