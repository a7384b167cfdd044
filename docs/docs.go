// Package docs registers the OpenAPI description served under /swagger.
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
        "/api/v1/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register a member account",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.authRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.authResponse"}},
                    "400": {"description": "invalid body or email taken", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.authRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.authResponse"}},
                    "401": {"description": "invalid credentials", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/inquiries": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inquiries"],
                "summary": "List inquiries",
                "parameters": [
                    {"type": "string", "description": "draft, open or closed", "name": "status", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.inquirySummary"}}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["inquiries"],
                "summary": "Create an inquiry",
                "parameters": [
                    {"description": "Inquiry", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.createInquiryRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "invalid input", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "403": {"description": "forbidden", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/inquiries/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["inquiries"],
                "summary": "Inquiry with children, counters and the caller's vote",
                "parameters": [
                    {"type": "integer", "description": "Inquiry ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.inquirySummary"}},
                    "404": {"description": "not found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/inquiries/{id}/status": {
            "patch": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "tags": ["inquiries"],
                "summary": "Change inquiry status",
                "parameters": [
                    {"type": "integer", "description": "Inquiry ID", "name": "id", "in": "path", "required": true},
                    {"description": "New status", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.updateStatusRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "invalid status", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "not found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/inquiries/{id}/votes": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Live votes of an inquiry",
                "parameters": [
                    {"type": "integer", "description": "Inquiry ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.voteListResponse"}},
                    "404": {"description": "inquiry not found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Value defaults to 1. Casting over an existing vote replaces its value.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Cast a vote",
                "parameters": [
                    {"type": "integer", "description": "Inquiry ID", "name": "id", "in": "path", "required": true},
                    {"description": "Vote value", "name": "request", "in": "body", "schema": {"$ref": "#/definitions/api.voteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/vote.Vote"}},
                    "400": {"description": "invalid value", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "inquiry not found", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "inquiry not open", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "429": {"description": "rate limited", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "description": "Creates the vote when the caller has none. Rejected for simple mode inquiries.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Change a vote value",
                "parameters": [
                    {"type": "integer", "description": "Inquiry ID", "name": "id", "in": "path", "required": true},
                    {"description": "Vote value", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.voteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/vote.Vote"}},
                    "400": {"description": "invalid value", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "inquiry not open or simple mode", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "tags": ["votes"],
                "summary": "Withdraw a vote",
                "parameters": [
                    {"type": "integer", "description": "Inquiry ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "inquiry not found", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "409": {"description": "inquiry not open", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        },
        "/api/v1/votes/{id}/restore": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["votes"],
                "summary": "Restore a withdrawn vote",
                "parameters": [
                    {"type": "integer", "description": "Vote ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/vote.Vote"}},
                    "403": {"description": "not the owner", "schema": {"$ref": "#/definitions/api.errorResponse"}},
                    "404": {"description": "vote not found", "schema": {"$ref": "#/definitions/api.errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.errorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "api.authRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "display_name": {"type": "string"}
            }
        },
        "api.authResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/user.User"}
            }
        },
        "api.createInquiryRequest": {
            "type": "object",
            "properties": {
                "parent_id": {"type": "integer"},
                "type": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "api.updateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["draft", "open", "closed"]}
            }
        },
        "api.voteRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "integer", "enum": [-1, 0, 1]}
            }
        },
        "api.voteListResponse": {
            "type": "object",
            "properties": {
                "inquiry_id": {"type": "integer"},
                "votes": {"type": "array", "items": {"$ref": "#/definitions/vote.Vote"}}
            }
        },
        "api.inquirySummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "parent_id": {"type": "integer"},
                "type": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "status": {"type": "string"},
                "mode": {"type": "string", "enum": ["ternary", "simple"]},
                "creator_id": {"type": "integer"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"},
                "counts": {"$ref": "#/definitions/vote.Counts"},
                "my_vote": {"$ref": "#/definitions/vote.Vote"},
                "children": {"type": "array", "items": {"$ref": "#/definitions/api.inquirySummary"}}
            }
        },
        "user.User": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "email": {"type": "string"},
                "display_name": {"type": "string"},
                "role": {"type": "string"},
                "is_active": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "vote.Counts": {
            "type": "object",
            "properties": {
                "count_votes": {"type": "integer"},
                "count_positive": {"type": "integer"},
                "count_neutral": {"type": "integer"},
                "count_negative": {"type": "integer"}
            }
        },
        "vote.Vote": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "inquiry_id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "value": {"type": "integer", "enum": [-1, 0, 1]},
                "created_at": {"type": "string"},
                "deleted_at": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inquiry Support API",
	Description:      "Inquiries with ternary or simple support voting and JWT auth",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
