// Package docs holds the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/printers/scan": {
            "get": {
                "tags": ["Printers"],
                "summary": "Scan printers",
                "description": "List paired Bluetooth printers, normalized and deduplicated",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Printers found", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "403": {"description": "Permissions denied", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Another operation in progress", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "503": {"description": "Bluetooth unavailable", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/printers/connect": {
            "post": {
                "tags": ["Printers"],
                "summary": "Connect printer",
                "description": "Connect a printer by MAC address and remember it as the default",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.ConnectRequest"}}
                ],
                "responses": {
                    "200": {"description": "Printer connected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid address", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "403": {"description": "Permissions denied", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Another operation in progress", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "503": {"description": "Bluetooth unavailable", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/printers/saved": {
            "get": {
                "tags": ["Printers"],
                "summary": "Saved printer",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Saved printer", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            },
            "delete": {
                "tags": ["Printers"],
                "summary": "Forget saved printer",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Saved printer cleared", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Another operation in progress", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/printers/preferences": {
            "get": {
                "tags": ["Printers"],
                "summary": "Stored preferences",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Preferences", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "500": {"description": "Storage failure", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/printers/width": {
            "get": {
                "tags": ["Printers"],
                "summary": "Print width",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Print width", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            },
            "put": {
                "tags": ["Printers"],
                "summary": "Set print width",
                "description": "Store the print width; non-positive gives 576, minimum 200",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.WidthRequest"}}
                ],
                "responses": {
                    "200": {"description": "Print width stored", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/print/hello": {
            "post": {
                "tags": ["Print"],
                "summary": "Print hello label",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.TargetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Label printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid address", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "409": {"description": "Another operation in progress", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "No printer selected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Printer rejected the payload", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/print/bar": {
            "post": {
                "tags": ["Print"],
                "summary": "Print black bar",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.BarRequest"}}
                ],
                "responses": {
                    "200": {"description": "Label printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "No printer selected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Printer rejected the payload", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/print/ticket": {
            "post": {
                "tags": ["Print"],
                "summary": "Print ticket",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.TicketRequest"}}
                ],
                "responses": {
                    "200": {"description": "Label printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "No printer selected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Printer rejected the payload", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/print/receipt": {
            "post": {
                "tags": ["Print"],
                "summary": "Print receipt",
                "description": "Compute consumption, totals and dates for a reading and print the receipt",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/service.ReceiptRequest"}}
                ],
                "responses": {
                    "200": {"description": "Receipt printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "412": {"description": "No printer selected", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Printer rejected the payload", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/print/diagnostic/{kind}": {
            "post": {
                "tags": ["Print"],
                "summary": "Print diagnostic label",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["simple", "config", "safe-width"]},
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/handler.TargetRequest"}}
                ],
                "responses": {
                    "200": {"description": "Label printed", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Unknown label", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "502": {"description": "Printer rejected the payload", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        },
        "/labels/preview/{kind}": {
            "post": {
                "tags": ["Labels"],
                "summary": "Preview label",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"name": "kind", "in": "path", "required": true, "type": "string", "enum": ["hello", "bar", "ticket", "receipt", "simple", "config", "safe-width"]}
                ],
                "responses": {
                    "200": {"description": "Rendered label", "schema": {"$ref": "#/definitions/utils.APIResponse"}},
                    "400": {"description": "Unknown label", "schema": {"$ref": "#/definitions/utils.APIResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.ConnectRequest": {
            "type": "object",
            "required": ["address"],
            "properties": {"address": {"type": "string", "example": "AA:BB:CC:DD:EE:FF"}}
        },
        "handler.WidthRequest": {
            "type": "object",
            "required": ["width"],
            "properties": {"width": {"type": "number", "example": 576}}
        },
        "handler.TargetRequest": {
            "type": "object",
            "properties": {"address": {"type": "string", "example": "AA:BB:CC:DD:EE:FF"}}
        },
        "handler.BarRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "height": {"type": "number", "example": 48},
                "tear_offset": {"type": "number"}
            }
        },
        "handler.TicketRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"},
                "fields": {"type": "object"},
                "tear_offset": {"type": "number"}
            }
        },
        "service.ReceiptRequest": {
            "type": "object",
            "required": ["customer"],
            "properties": {
                "address": {"type": "string"},
                "customer": {"type": "string"},
                "lot": {"type": "string"},
                "meter": {"type": "string"},
                "sector": {"type": "string"},
                "last_reading": {"type": "object", "properties": {"id": {"type": "integer"}, "reading_date": {"type": "string", "example": "2025-09-25"}}},
                "completed": {"type": "boolean"},
                "billing_day": {"type": "integer"},
                "previous_reading": {"type": "number"},
                "current_reading": {"type": "number"},
                "tariff": {"type": "number"},
                "penalty": {"type": "number"},
                "penalty_note": {"type": "string"},
                "closing_message": {"type": "string"},
                "tear_offset": {"type": "number"}
            }
        },
        "utils.APIResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {},
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"},
                        "details": {"type": "string"}
                    }
                },
                "timestamp": {"type": "string"},
                "request_id": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8086",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Meter Print Service API",
	Description:      "Bluetooth ZPL label printing for meter-reading receipts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
