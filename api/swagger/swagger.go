package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Disponibilidad Docente API",
        "description": "Registro de disponibilidad horaria de docentes",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Admin", "description": "Admin verification gate"},
        {"name": "Disponibilidades", "description": "Docente availability registry"},
        {"name": "Exportaciones", "description": "Asynchronous roster exports"}
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/admin/verificar": {
            "post": {
                "tags": ["Admin"],
                "summary": "Verify an admin by nombre and dni",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyAdminRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Not recognized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/disponibilidades": {
            "post": {
                "tags": ["Disponibilidades"],
                "summary": "Register or update a docente's availability",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SaveAvailabilityRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["Disponibilidades"],
                "summary": "List registered availabilities",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "curso", "in": "query", "type": "string"},
                    {"name": "dia", "in": "query", "type": "string"},
                    {"name": "hora", "in": "query", "type": "string"},
                    {"name": "desde", "in": "query", "type": "string", "format": "date"},
                    {"name": "hasta", "in": "query", "type": "string", "format": "date"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/disponibilidades/feed": {
            "get": {
                "tags": ["Disponibilidades"],
                "summary": "Live roster change feed (SSE)",
                "security": [{"BearerAuth": []}],
                "produces": ["text/event-stream"],
                "responses": {
                    "200": {"description": "Event stream"}
                }
            }
        },
        "/disponibilidades/{id}": {
            "get": {
                "tags": ["Disponibilidades"],
                "summary": "Get one availability record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Disponibilidades"],
                "summary": "Delete an availability record",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "confirmar", "in": "query", "required": true, "type": "boolean"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "400": {"description": "Confirmation missing", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exportaciones": {
            "post": {
                "tags": ["Exportaciones"],
                "summary": "Queue a roster export",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exportaciones/{id}": {
            "get": {
                "tags": ["Exportaciones"],
                "summary": "Get export job status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/export/{token}": {
            "get": {
                "tags": ["Exportaciones"],
                "summary": "Download a finished export via signed token",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "401": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "VerifyAdminRequest": {
            "type": "object",
            "required": ["nombre", "dni"],
            "properties": {
                "nombre": {"type": "string"},
                "dni": {"type": "string"}
            }
        },
        "BlockSelection": {
            "type": "object",
            "required": ["dia", "bloque"],
            "properties": {
                "dia": {"type": "string", "example": "Lunes"},
                "bloque": {"type": "string", "example": "08:00 - 10:00"}
            }
        },
        "SaveAvailabilityRequest": {
            "type": "object",
            "required": ["nombre", "bloques"],
            "properties": {
                "nombre": {"type": "string"},
                "dni": {"type": "string"},
                "email": {"type": "string"},
                "telefono": {"type": "string"},
                "cursos": {"type": "array", "items": {"type": "string"}},
                "cursos_texto": {"type": "string"},
                "bloques": {"type": "array", "items": {"$ref": "#/definitions/BlockSelection"}}
            }
        },
        "CreateExportRequest": {
            "type": "object",
            "required": ["formato"],
            "properties": {
                "formato": {"type": "string", "enum": ["csv", "pdf"]},
                "filtros": {
                    "type": "object",
                    "properties": {
                        "curso": {"type": "string"},
                        "dia": {"type": "string"},
                        "hora": {"type": "string"},
                        "desde": {"type": "string", "format": "date"},
                        "hasta": {"type": "string", "format": "date"}
                    }
                }
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
