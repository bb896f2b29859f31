// Swagger document of the API, served at /swagger/swagger.json

package api

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
        "/health": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/decode": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Decode a binary row buffer. Every returned record is the row index followed by one value per variant.",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["decode"],
                "summary": "Decode a row buffer",
                "parameters": [
                    {"type": "string", "description": "Element type (I32 or F32)", "name": "type", "in": "query"},
                    {"type": "string", "description": "Comma separated variant names", "name": "variants", "in": "query", "required": true},
                    {"type": "string", "description": "sum, avg or perc-<p>", "name": "map", "in": "query"},
                    {"type": "string", "description": "top-<n> or bot-<n>", "name": "filter", "in": "query"},
                    {"type": "integer", "description": "Minimum index distance between rows", "name": "resolution", "in": "query"},
                    {"type": "integer", "description": "First index", "name": "from", "in": "query"},
                    {"type": "integer", "description": "Last index", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/datasets": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "List datasets",
                "parameters": [
                    {"type": "string", "description": "Only datasets with this name", "name": "name", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/storage.DatasetMeta"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Store a binary row buffer together with its element type and variant names",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Store a dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset name", "name": "name", "in": "query"},
                    {"type": "string", "description": "Element type (I32 or F32)", "name": "type", "in": "query"},
                    {"type": "string", "description": "Comma separated variant names", "name": "variants", "in": "query", "required": true},
                    {"type": "string", "description": "Units of the values", "name": "units", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.DatasetMeta"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/datasets/{id}": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Get dataset metadata",
                "parameters": [
                    {"type": "string", "description": "Dataset ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.DatasetMeta"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Delete a dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/datasets/{id}/rows": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Decode a stored dataset and reduce it with the map, filter, resolution and range parameters",
                "produces": ["application/json"],
                "tags": ["datasets"],
                "summary": "Decode a stored dataset",
                "parameters": [
                    {"type": "string", "description": "Dataset ID", "name": "id", "in": "path", "required": true},
                    {"type": "string", "description": "sum, avg or perc-<p>", "name": "map", "in": "query"},
                    {"type": "string", "description": "top-<n> or bot-<n>", "name": "filter", "in": "query"},
                    {"type": "integer", "description": "Minimum index distance between rows", "name": "resolution", "in": "query"},
                    {"type": "integer", "description": "First index", "name": "from", "in": "query"},
                    {"type": "integer", "description": "Last index", "name": "to", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DecodeResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.APIResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/datasets/{id}/raw": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Return the original bytes of a dataset. Type and variants are sent in the X-Row-Type and X-Row-Variants headers.",
                "produces": ["application/octet-stream"],
                "tags": ["datasets"],
                "summary": "Download a stored buffer",
                "parameters": [
                    {"type": "string", "description": "Dataset ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "string"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        },
        "/stats": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["diagnostics"],
                "summary": "Storage statistics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/storage.Stats"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.APIResponse": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "success": {"type": "boolean"}
            }
        },
        "api.DecodeResponse": {
            "type": "object",
            "properties": {
                "layout": {"$ref": "#/definitions/codec.Layout"},
                "rows": {"type": "array", "items": {"type": "array", "items": {"type": "number"}}},
                "variants": {"type": "array", "items": {"type": "string"}}
            }
        },
        "codec.Layout": {
            "type": "object",
            "properties": {
                "dropped_bytes": {"type": "integer"},
                "row_width": {"type": "integer"},
                "rows": {"type": "integer"}
            }
        },
        "storage.DatasetMeta": {
            "type": "object",
            "properties": {
                "compression": {"type": "string"},
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "layout": {"$ref": "#/definitions/codec.Layout"},
                "name": {"type": "string"},
                "size": {"type": "integer"},
                "stored_size": {"type": "integer"},
                "type": {"type": "string"},
                "units": {"type": "string"},
                "variants": {"type": "array", "items": {"type": "string"}}
            }
        },
        "storage.Stats": {
            "type": "object",
            "properties": {
                "datasets": {"type": "integer"},
                "disk_usage": {"type": "integer"},
                "raw_bytes": {"type": "integer"},
                "rows": {"type": "integer"},
                "stored_bytes": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Rowreader REST API",
	Description:      "This is the REST API for rowreader, a decoder and store for fixed-width binary row buffers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
