// Package docs registers the OpenAPI document served under /swagger. Keep it in step with the handler annotations.
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
        "/diagnostics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ingestion"],
                "summary": "Rows dropped by the last refresh",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handler.DiagnosticsResponse"}
                    }
                }
            }
        },
        "/locations": {
            "get": {
                "description": "Filters the current snapshot by category and returns one page.",
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "List locations",
                "parameters": [
                    {"type": "string", "default": "all", "description": "bin, goodwill, thrift, other or all", "name": "category", "in": "query"},
                    {"type": "integer", "default": 1, "description": "1-indexed page number", "name": "page", "in": "query"},
                    {"type": "integer", "description": "page size, capped at the configured maximum", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handler.LocationPageResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/locations/nearest": {
            "get": {
                "description": "Great-circle nearest location to the given point, distance in miles rounded to 0.1.",
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Nearest location",
                "parameters": [
                    {"type": "number", "description": "latitude", "name": "lat", "in": "query", "required": true},
                    {"type": "number", "description": "longitude", "name": "lon", "in": "query", "required": true},
                    {"type": "string", "default": "all", "description": "restrict to a category", "name": "category", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handler.NearestResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "404": {
                        "description": "Not Found",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    }
                }
            }
        },
        "/locations/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["locations"],
                "summary": "Location counts",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/service.Stats"}
                    }
                }
            }
        },
        "/refresh": {
            "get": {
                "produces": ["application/json"],
                "tags": ["ingestion"],
                "summary": "Last refresh report",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/service.RefreshReport"}
                    }
                }
            },
            "post": {
                "produces": ["application/json"],
                "tags": ["ingestion"],
                "summary": "Reload the location feed",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/service.RefreshReport"}
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {"type": "object", "additionalProperties": {"type": "string"}}
                    },
                    "502": {
                        "description": "Bad Gateway",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        }
    },
    "definitions": {
        "handler.DiagnosticsResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "diagnostics": {"type": "array", "items": {"$ref": "#/definitions/models.Diagnostic"}}
            }
        },
        "handler.LocationPageResponse": {
            "type": "object",
            "properties": {
                "category": {"type": "string"},
                "items": {"type": "array", "items": {"$ref": "#/definitions/handler.LocationView"}},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_items": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handler.LocationView": {
            "type": "object",
            "properties": {
                "acceptance_policy": {"type": "string"},
                "address": {"type": "string"},
                "category": {"type": "string"},
                "city": {"type": "string"},
                "geohash": {"type": "string"},
                "id": {"type": "string"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"},
                "name": {"type": "string"},
                "postal_code": {"type": "string"},
                "state": {"type": "string"},
                "website": {"type": "string"}
            }
        },
        "handler.NearestResponse": {
            "type": "object",
            "properties": {
                "distance_miles": {"type": "number"},
                "location": {"$ref": "#/definitions/handler.LocationView"}
            }
        },
        "models.Diagnostic": {
            "type": "object",
            "properties": {
                "detail": {"type": "string"},
                "reason": {"type": "string"},
                "row": {"type": "integer"}
            }
        },
        "service.RefreshReport": {
            "type": "object",
            "properties": {
                "accepted": {"type": "integer"},
                "completed_at": {"type": "string"},
                "dropped": {"type": "integer"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "service.Stats": {
            "type": "object",
            "properties": {
                "by_category": {"type": "object", "additionalProperties": {"type": "integer"}},
                "loaded_at": {"type": "string"},
                "total": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Drop-off Locator API",
	Description:      "Donation and recycling drop-off locations with nearest-site lookup.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
