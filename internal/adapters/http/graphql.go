package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	markerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Marker",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"category": &graphql.Field{Type: graphql.String},
			"location": &graphql.Field{Type: geoPointType},
			"label":    &graphql.Field{Type: graphql.String},
			"icon":     &graphql.Field{Type: graphql.String},
			"color":    &graphql.Field{Type: graphql.String},
		},
	})

	newsItemType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NewsItem",
		Fields: graphql.Fields{
			"title":        &graphql.Field{Type: graphql.String},
			"excerpt":      &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"url":          &graphql.Field{Type: graphql.String},
			"image_url":    &graphql.Field{Type: graphql.String},
			"source":       &graphql.Field{Type: graphql.String},
			"published_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	contactType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Contact",
		Fields: graphql.Fields{
			"id":     &graphql.Field{Type: graphql.String},
			"name":   &graphql.Field{Type: graphql.String},
			"phone":  &graphql.Field{Type: graphql.String},
			"shared": &graphql.Field{Type: graphql.Boolean},
		},
	})

	alertType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CrimeAlert",
		Fields: graphql.Fields{
			"count": &graphql.Field{Type: graphql.Int},
			"date":  &graphql.Field{Type: graphql.String},
		},
	})

	viewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapView",
		Fields: graphql.Fields{
			"center":  &graphql.Field{Type: geoPointType},
			"zoom":    &graphql.Field{Type: graphql.Int},
			"located": &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"mapView": &graphql.Field{
				Type:        viewType,
				Description: "Current map center, zoom and location state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Map.View(), nil
				},
			},
			"markers": &graphql.Field{
				Type:        graphql.NewList(markerType),
				Description: "Live map overlays, optionally filtered by category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					snapshot := deps.Markers.Snapshot()
					category := p.Args["category"].(string)
					if category != "" {
						return snapshot[domain.MarkerCategory(category)], nil
					}
					var all []domain.Marker
					for _, markers := range snapshot {
						all = append(all, markers...)
					}
					return all, nil
				},
			},
			"news": &graphql.Field{
				Type:        graphql.NewList(newsItemType),
				Description: "Safety news feed, optionally filtered by category",
				Args: graphql.FieldConfigArgument{
					"category": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: "all"},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.News.Fetch(p.Context, p.Args["category"].(string)), nil
				},
			},
			"contacts": &graphql.Field{
				Type:        graphql.NewList(contactType),
				Description: "Trusted contacts",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Contacts.List(p.Context), nil
				},
			},
			"alert": &graphql.Field{
				Type:        alertType,
				Description: "Crime alert banner figure",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Alerts.Current(), nil
				},
			},
			"emergency": &graphql.Field{
				Type:        graphql.String,
				Description: "Police emergency number (dialing stays client-side)",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return EmergencyNumber, nil
				},
			},
			"trackingStatus": &graphql.Field{
				Type:        graphql.String,
				Description: "Current tracking session state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return string(deps.Tracking.Status()), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
