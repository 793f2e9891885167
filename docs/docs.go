// Package docs registers the OpenAPI description of the HTTP API with swag.
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
        "/surveys": {
            "get": {
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "List the 100 newest surveys",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.Survey"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Create a survey",
                "parameters": [
                    {"description": "Survey", "name": "survey", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SurveyInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Survey"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/active": {
            "get": {
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Get the survey shown to shoppers",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Survey"}},
                    "204": {"description": "No Content"}
                }
            }
        },
        "/surveys/{surveyId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Get a survey",
                "parameters": [
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Survey"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Update a survey",
                "parameters": [
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true},
                    {"description": "Survey", "name": "survey", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.SurveyInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Survey"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Delete an inactive survey",
                "parameters": [
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.DeleteResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/{surveyId}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["surveys"],
                "summary": "Activate or deactivate a survey",
                "parameters": [
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true},
                    {"description": "Status", "name": "status", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.StatusInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Survey"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/{surveyId}/responses": {
            "get": {
                "description": "total is the number of records on the returned page.",
                "produces": ["application/json"],
                "tags": ["responses"],
                "summary": "Page through a survey's responses, newest first",
                "parameters": [
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true},
                    {"type": "integer", "description": "Page (default 1)", "name": "page", "in": "query"},
                    {"type": "integer", "description": "Page size (default 10, max 100)", "name": "pageSize", "in": "query"},
                    {"type": "string", "description": "Inclusive lower bound, RFC 3339 or YYYY-MM-DD", "name": "dateFrom", "in": "query"},
                    {"type": "string", "description": "Inclusive upper bound, RFC 3339 or YYYY-MM-DD", "name": "dateTo", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.ResponsePage"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/surveys/{surveyId}/dashboard": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Option distribution of a survey",
                "parameters": [
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Dashboard"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/responses": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["responses"],
                "summary": "Record a shopper's answer",
                "parameters": [
                    {"description": "Response", "name": "response", "in": "body", "required": true, "schema": {"$ref": "#/definitions/model.ResponseInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/service.SubmitResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/responses/exists": {
            "get": {
                "produces": ["application/json"],
                "tags": ["responses"],
                "summary": "Check whether an order already answered a survey",
                "parameters": [
                    {"type": "string", "description": "Order ID", "name": "orderId", "in": "query", "required": true},
                    {"type": "string", "description": "Survey ID", "name": "surveyId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.ExistsResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "handler.DeleteResponse": {
            "type": "object",
            "properties": {"success": {"type": "boolean"}}
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.ExistsResponse": {
            "type": "object",
            "properties": {"responded": {"type": "boolean"}}
        },
        "model.Dashboard": {
            "type": "object",
            "properties": {
                "surveyId": {"type": "string"},
                "question": {"type": "string"},
                "totalResponses": {"type": "integer"},
                "distribution": {"type": "array", "items": {"$ref": "#/definitions/model.OptionCount"}},
                "truncated": {"type": "boolean"}
            }
        },
        "model.OptionCount": {
            "type": "object",
            "properties": {
                "option": {"type": "string"},
                "count": {"type": "integer"},
                "percentage": {"type": "number"}
            }
        },
        "model.Response": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "surveyId": {"type": "string"},
                "selectedOption": {"type": "string"},
                "otherText": {"type": "string"},
                "orderId": {"type": "string"},
                "clientEmail": {"type": "string"},
                "respondedAt": {"type": "string"}
            }
        },
        "model.ResponseInput": {
            "type": "object",
            "properties": {
                "surveyId": {"type": "string"},
                "selectedOption": {"type": "string"},
                "otherText": {"type": "string"},
                "orderId": {"type": "string"},
                "clientEmail": {"type": "string"}
            }
        },
        "model.ResponsePage": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/model.Response"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "pageSize": {"type": "integer"}
            }
        },
        "model.StatusInput": {
            "type": "object",
            "required": ["isActive"],
            "properties": {"isActive": {"type": "boolean"}}
        },
        "model.Survey": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "question": {"type": "string"},
                "options": {"type": "array", "items": {"type": "string"}},
                "isActive": {"type": "boolean"},
                "allowOther": {"type": "boolean"},
                "responseCount": {"type": "integer"},
                "createdAt": {"type": "string"},
                "updatedAt": {"type": "string"}
            }
        },
        "model.SurveyInput": {
            "type": "object",
            "properties": {
                "question": {"type": "string"},
                "options": {"type": "array", "items": {"type": "string"}},
                "isActive": {"type": "boolean"},
                "allowOther": {"type": "boolean"}
            }
        },
        "service.SubmitResult": {
            "type": "object",
            "properties": {
                "response": {"$ref": "#/definitions/model.Response"},
                "counterUpdated": {"type": "boolean"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Post-purchase Survey API",
	Description:      "Single-question shopper surveys with one answer per order and on-demand dashboards",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
