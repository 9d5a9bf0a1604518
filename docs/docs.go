// Package docs holds the OpenAPI description served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/positions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "List or create positions",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Position"}}},
                    "500": {"description": "Internal server error", "schema": {"type": "string"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "List or create positions",
                "parameters": [
                    {"description": "Position to add", "name": "position", "in": "body", "schema": {"$ref": "#/definitions/models.PositionInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Position"}},
                    "400": {"description": "Invalid request", "schema": {"type": "string"}}
                }
            }
        },
        "/positions/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "Get a position",
                "parameters": [
                    {"type": "integer", "description": "Position ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Position"}},
                    "404": {"description": "Not found", "schema": {"type": "string"}}
                }
            }
        },
        "/positions/{id}/price-settings": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["positions"],
                "summary": "Update price settings",
                "parameters": [
                    {"type": "integer", "description": "Position ID", "name": "id", "in": "path", "required": true},
                    {"description": "Price settings", "name": "settings", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.PriceSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Position"}},
                    "400": {"description": "Unknown price source", "schema": {"type": "string"}},
                    "404": {"description": "Not found", "schema": {"type": "string"}}
                }
            }
        },
        "/positions/{id}/prices": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Record a manual price",
                "parameters": [
                    {"type": "integer", "description": "Position ID", "name": "id", "in": "path", "required": true},
                    {"description": "Price", "name": "price", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.ManualPriceInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.PriceSnapshot"}},
                    "400": {"description": "Invalid request", "schema": {"type": "string"}},
                    "404": {"description": "Not found", "schema": {"type": "string"}}
                }
            }
        },
        "/positions/{id}/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Price history of a position",
                "parameters": [
                    {"type": "integer", "description": "Position ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PriceSnapshot"}}}
                }
            }
        },
        "/prices/latest": {
            "get": {
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Latest price per symbol",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PriceSnapshot"}}}
                }
            }
        },
        "/prices/history": {
            "get": {
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Price history of a symbol",
                "parameters": [
                    {"type": "string", "description": "Snapshot symbol (ticker or name)", "name": "symbol", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.PriceSnapshot"}}},
                    "400": {"description": "symbol is required", "schema": {"type": "string"}}
                }
            }
        },
        "/prices/fetch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["prices"],
                "summary": "Fetch prices from the feeds",
                "parameters": [
                    {"description": "Positions to refresh", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/models.FetchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.PriceUpdateReport"}}
                }
            }
        },
        "/overview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["overview"],
                "summary": "Portfolio overview",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Overview"}}
                }
            }
        }
    },
    "definitions": {
        "models.Position": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "ticker": {"type": "string"},
                "type": {"type": "string"},
                "platform": {"type": "string"},
                "quantity": {"type": "number"},
                "avg_cost": {"type": "number"},
                "currency": {"type": "string"},
                "isin": {"type": "string"},
                "ter": {"type": "number"},
                "purchase_date": {"type": "string"},
                "price_source": {"type": "string"},
                "price_symbol": {"type": "string"},
                "notes": {"type": "string"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "models.PositionInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "ticker": {"type": "string"},
                "type": {"type": "string"},
                "platform": {"type": "string"},
                "quantity": {"type": "number"},
                "avg_cost": {"type": "number"},
                "currency": {"type": "string"},
                "isin": {"type": "string"},
                "ter": {"type": "number"},
                "purchase_date": {"type": "string"},
                "price_source": {"type": "string"},
                "price_symbol": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "models.PriceSettings": {
            "type": "object",
            "properties": {
                "price_source": {"type": "string"},
                "price_symbol": {"type": "string"}
            }
        },
        "models.ManualPriceInput": {
            "type": "object",
            "properties": {
                "price": {"type": "number"},
                "currency": {"type": "string"}
            }
        },
        "models.PriceSnapshot": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "symbol": {"type": "string"},
                "position_id": {"type": "integer"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "as_of": {"type": "string"},
                "source": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "models.FetchRequest": {
            "type": "object",
            "properties": {
                "position_ids": {"type": "array", "items": {"type": "integer"}}
            }
        },
        "models.PriceUpdateRow": {
            "type": "object",
            "properties": {
                "position_id": {"type": "integer"},
                "name": {"type": "string"},
                "price": {"type": "number"},
                "currency": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "models.PriceUpdateReport": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "rows": {"type": "array", "items": {"$ref": "#/definitions/models.PriceUpdateRow"}},
                "updated": {"type": "integer"},
                "failed": {"type": "integer"}
            }
        },
        "models.PositionView": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "ticker": {"type": "string"},
                "quantity": {"type": "number"},
                "avg_cost": {"type": "number"},
                "currency": {"type": "string"},
                "price": {"type": "number"},
                "price_currency": {"type": "string"},
                "as_of": {"type": "string"},
                "market_value": {"type": "number"},
                "cost_basis": {"type": "number"},
                "gain": {"type": "number"},
                "gain_percent": {"type": "number"}
            }
        },
        "models.PortfolioSummary": {
            "type": "object",
            "properties": {
                "positions": {"type": "integer"},
                "priced": {"type": "integer"},
                "market_value": {"type": "number"},
                "cost_basis": {"type": "number"},
                "gain": {"type": "number"}
            }
        },
        "models.Overview": {
            "type": "object",
            "properties": {
                "rows": {"type": "array", "items": {"$ref": "#/definitions/models.PositionView"}},
                "summary": {"$ref": "#/definitions/models.PortfolioSummary"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Folio API",
	Description:      "Personal portfolio tracker: positions, price snapshots and valuation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
