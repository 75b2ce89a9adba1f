package graphql

import (
	"context"
	"fmt"

	"github.com/graphql-go/graphql"

	"vincula/internal/domain"
	apperrors "vincula/internal/errors"
	"vincula/internal/order"
)

// OrderService is the slice of the order service the schema resolves
// against.
type OrderService interface {
	Create(ctx context.Context, input order.CreateInput) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByNumber(ctx context.Context, number string) (*domain.Order, error)
	List(ctx context.Context, limit, offset int) ([]domain.Order, int64, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int64, error)
	ListByStatus(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]domain.Order, int64, error)
	Update(ctx context.Context, id string, input order.UpdateInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, target domain.OrderStatus) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, target domain.PaymentStatus) (*domain.Order, error)
	Cancel(ctx context.Context, id string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

var orderItemType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OrderItem",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"productId":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"productName": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"productSku":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"unitPrice":   &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"quantity":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalPrice":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// Money travels as strings so decimal values survive the trip untouched.
var orderType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Order",
	Fields: graphql.Fields{
		"id":                &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"userId":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"orderNumber":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"status":            &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"paymentStatus":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"paymentMethodId":   &graphql.Field{Type: graphql.ID},
		"shippingMethodId":  &graphql.Field{Type: graphql.ID},
		"shippingAddressId": &graphql.Field{Type: graphql.ID},
		"subtotal":          &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"shippingCost":      &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"total":             &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"notes":             &graphql.Field{Type: graphql.String},
		"items":             &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(orderItemType))},
		"createdAt":         &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"updatedAt":         &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"cancelledAt":       &graphql.Field{Type: graphql.DateTime},
	},
})

var orderItemInputType = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OrderItemInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"quantity":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
	},
})

type orderView map[string]interface{}

func toView(o *domain.Order) orderView {
	items := make([]map[string]interface{}, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]interface{}{
			"id":          item.ID,
			"productId":   item.ProductID,
			"productName": item.ProductName,
			"productSku":  item.ProductSKU,
			"unitPrice":   item.UnitPrice.String(),
			"quantity":    item.Quantity,
			"totalPrice":  item.TotalPrice.String(),
		})
	}

	v := orderView{
		"id":            o.ID,
		"userId":        o.UserID,
		"orderNumber":   o.OrderNumber,
		"status":        string(o.Status),
		"paymentStatus": string(o.PaymentStatus),
		"subtotal":      o.Subtotal.String(),
		"shippingCost":  o.ShippingCost.String(),
		"total":         o.Total.String(),
		"items":         items,
		"createdAt":     o.CreatedAt,
		"updatedAt":     o.UpdatedAt,
	}
	if o.PaymentMethodID != nil {
		v["paymentMethodId"] = *o.PaymentMethodID
	}
	if o.ShippingMethodID != nil {
		v["shippingMethodId"] = *o.ShippingMethodID
	}
	if o.ShippingAddressID != nil {
		v["shippingAddressId"] = *o.ShippingAddressID
	}
	if o.Notes != nil {
		v["notes"] = *o.Notes
	}
	if o.CancelledAt != nil {
		v["cancelledAt"] = *o.CancelledAt
	}
	return v
}

func toViews(orders []domain.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toView(&orders[i]))
	}
	return views
}

func pageArgs(p graphql.ResolveParams) (limit, offset int) {
	page, _ := p.Args["page"].(int)
	size, ok := p.Args["size"].(int)
	if !ok || size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}
	return size, page * size
}

func parseItems(raw interface{}) []order.ItemInput {
	list, ok := raw.([]interface{})
	if !ok {
		return nil
	}
	items := make([]order.ItemInput, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		productID, _ := m["productId"].(string)
		quantity, _ := m["quantity"].(int)
		items = append(items, order.ItemInput{ProductID: productID, Quantity: quantity})
	}
	return items
}

func optionalString(p graphql.ResolveParams, key string) *string {
	if v, ok := p.Args[key].(string); ok {
		return &v
	}
	return nil
}

func parseStatus(raw string) (domain.OrderStatus, error) {
	status, ok := domain.ParseOrderStatus(raw)
	if !ok {
		return "", apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:         "status",
			Message:       "unknown order status",
			RejectedValue: raw,
		})
	}
	return status, nil
}

// NewSchema builds the order graph. The schema only covers orders; the
// flat entities stay REST-only.
func NewSchema(orders OrderService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"order": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := orders.GetByID(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"orderByNumber": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"orderNumber": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := orders.GetByNumber(p.Context, p.Args["orderNumber"].(string))
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"orders": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(orderType)),
				Args: graphql.FieldConfigArgument{
					"page": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"size": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, offset := pageArgs(p)
					list, _, err := orders.List(p.Context, limit, offset)
					if err != nil {
						return nil, err
					}
					return toViews(list), nil
				},
			},
			"ordersByUser": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(orderType)),
				Args: graphql.FieldConfigArgument{
					"userId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"size":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					limit, offset := pageArgs(p)
					list, _, err := orders.ListByUser(p.Context, p.Args["userId"].(string), limit, offset)
					if err != nil {
						return nil, err
					}
					return toViews(list), nil
				},
			},
			"ordersByStatus": &graphql.Field{
				Type: graphql.NewList(graphql.NewNonNull(orderType)),
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"page":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"size":   &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					status, err := parseStatus(p.Args["status"].(string))
					if err != nil {
						return nil, err
					}
					limit, offset := pageArgs(p)
					list, _, err := orders.ListByStatus(p.Context, status, limit, offset)
					if err != nil {
						return nil, err
					}
					return toViews(list), nil
				},
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"userId":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"items":             &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(orderItemInputType)))},
					"paymentMethodId":   &graphql.ArgumentConfig{Type: graphql.ID},
					"shippingMethodId":  &graphql.ArgumentConfig{Type: graphql.ID},
					"shippingAddressId": &graphql.ArgumentConfig{Type: graphql.ID},
					"notes":             &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := orders.Create(p.Context, order.CreateInput{
						UserID:            p.Args["userId"].(string),
						Items:             parseItems(p.Args["items"]),
						PaymentMethodID:   optionalString(p, "paymentMethodId"),
						ShippingMethodID:  optionalString(p, "shippingMethodId"),
						ShippingAddressID: optionalString(p, "shippingAddressId"),
						Notes:             optionalString(p, "notes"),
					})
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"updateOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id":                &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"items":             &graphql.ArgumentConfig{Type: graphql.NewList(graphql.NewNonNull(orderItemInputType))},
					"paymentMethodId":   &graphql.ArgumentConfig{Type: graphql.ID},
					"shippingMethodId":  &graphql.ArgumentConfig{Type: graphql.ID},
					"shippingAddressId": &graphql.ArgumentConfig{Type: graphql.ID},
					"notes":             &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					input := order.UpdateInput{
						PaymentMethodID:   optionalString(p, "paymentMethodId"),
						ShippingMethodID:  optionalString(p, "shippingMethodId"),
						ShippingAddressID: optionalString(p, "shippingAddressId"),
						Notes:             optionalString(p, "notes"),
					}
					if raw, ok := p.Args["items"]; ok {
						input.Items = parseItems(raw)
					}
					o, err := orders.Update(p.Context, p.Args["id"].(string), input)
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"updateOrderStatus": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"status": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					status, err := parseStatus(p.Args["status"].(string))
					if err != nil {
						return nil, err
					}
					o, err := orders.UpdateStatus(p.Context, p.Args["id"].(string), status)
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"updatePaymentStatus": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id":            &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"paymentStatus": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					raw := p.Args["paymentStatus"].(string)
					status, ok := domain.ParsePaymentStatus(raw)
					if !ok {
						return nil, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
							Field:         "paymentStatus",
							Message:       "unknown payment status",
							RejectedValue: raw,
						})
					}
					o, err := orders.UpdatePaymentStatus(p.Context, p.Args["id"].(string), status)
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"cancelOrder": &graphql.Field{
				Type: orderType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := orders.Cancel(p.Context, p.Args["id"].(string))
					if err != nil {
						return nil, err
					}
					return toView(o), nil
				},
			},
			"deleteOrder": &graphql.Field{
				Type: graphql.Boolean,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if err := orders.Delete(p.Context, p.Args["id"].(string)); err != nil {
						return nil, err
					}
					return true, nil
				},
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    query,
		Mutation: mutation,
	})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("building schema: %w", err)
	}
	return schema, nil
}
