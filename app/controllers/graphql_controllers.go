package controllers

import (
	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/meatshop/app/services"
	gql "github.com/shashiranjanraj/meatshop/pkg/graphql"
)

var (
	variantType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Variant",
		Fields: graphql.Fields{
			"weight": &graphql.Field{Type: graphql.String},
			"price":  &graphql.Field{Type: graphql.Int},
		},
	})

	productType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"name":        &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
			"image":       &graphql.Field{Type: graphql.String},
			"group":       &graphql.Field{Type: graphql.String},
			"category":    &graphql.Field{Type: graphql.String},
			"note":        &graphql.Field{Type: graphql.String},
			"variants":    &graphql.Field{Type: graphql.NewList(variantType)},
		},
	})

	comboType = graphql.NewObject(graphql.ObjectConfig{
		Name: "ComboPack",
		Fields: graphql.Fields{
			"name":   &graphql.Field{Type: graphql.String},
			"items":  &graphql.Field{Type: graphql.NewList(graphql.String)},
			"weight": &graphql.Field{Type: graphql.String},
			"price":  &graphql.Field{Type: graphql.Int},
			"image":  &graphql.Field{Type: graphql.String},
		},
	})

	categoryType = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.Fields{
			"name":        &graphql.Field{Type: graphql.String},
			"slug":        &graphql.Field{Type: graphql.String},
			"image":       &graphql.Field{Type: graphql.String},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	trackingUpdateType = graphql.NewObject(graphql.ObjectConfig{
		Name: "TrackingUpdate",
		Fields: graphql.Fields{
			"status":      &graphql.Field{Type: graphql.String},
			"date":        &graphql.Field{Type: graphql.DateTime},
			"description": &graphql.Field{Type: graphql.String},
		},
	})

	trackResultType = graphql.NewObject(graphql.ObjectConfig{
		Name: "TrackResult",
		Fields: graphql.Fields{
			"status":  &graphql.Field{Type: graphql.String},
			"updates": &graphql.Field{Type: graphql.NewList(trackingUpdateType)},
		},
	})
)

// NewGraphQLSchema exposes the catalog and order tracking as read-only
// queries. Nothing that needs a session is reachable through it.
func NewGraphQLSchema(catalog *services.Catalog, orders *services.OrderStore) (graphql.Schema, error) {
	str := func(p graphql.ResolveParams, name string) string {
		s, _ := p.Args[name].(string)
		return s
	}

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"group":    &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.String},
					"q":        &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return catalog.Products(services.ProductFilter{
						Group:    str(p, "group"),
						Category: str(p, "category"),
						Query:    str(p, "q"),
					}), nil
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					prod, err := catalog.Product(str(p, "id"))
					if err != nil {
						return nil, err
					}
					return prod, nil
				},
			},
			"combos": &graphql.Field{
				Type: graphql.NewList(comboType),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return catalog.Combos(), nil
				},
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(graphql.ResolveParams) (any, error) {
					return catalog.Categories(), nil
				},
			},
			"track": &graphql.Field{
				Type: trackResultType,
				Args: graphql.FieldConfigArgument{
					"orderId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return orders.Track(str(p, "orderId")).Await(p.Context)
				},
			},
		},
	})
	return gql.NewSchema(query)
}
