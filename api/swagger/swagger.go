package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MerelFormation Workflow API",
        "description": "Reservation and rental status workflow with notification dispatch",
        "version": "1.0.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Workflows", "description": "Status catalog discovery"},
        {"name": "Reservations", "description": "Session reservation administration"},
        {"name": "Rentals", "description": "Vehicle rental administration"},
        {"name": "Documents", "description": "Document review sub-workflow"},
        {"name": "Audits", "description": "Status transition audit trail"}
    ],
    "paths": {
        "/workflows/{workflow}/statuses": {
            "get": {
                "tags": ["Workflows"],
                "summary": "List every status of a workflow with its metadata",
                "parameters": [
                    {"name": "workflow", "in": "path", "required": true, "type": "string", "enum": ["enrollment", "rental"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/workflows/{workflow}/transitions": {
            "get": {
                "tags": ["Workflows"],
                "summary": "List the statuses reachable from a given status",
                "parameters": [
                    {"name": "workflow", "in": "path", "required": true, "type": "string", "enum": ["enrollment", "rental"]},
                    {"name": "from", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Unknown status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reservations": {
            "get": {
                "tags": ["Reservations"],
                "summary": "List session reservations",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reservations/{id}": {
            "get": {
                "tags": ["Reservations"],
                "summary": "Get one reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reservations/{id}/transitions": {
            "get": {
                "tags": ["Reservations"],
                "summary": "List allowed next statuses for a reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/reservations/{id}/status": {
            "put": {
                "tags": ["Reservations"],
                "summary": "Change the status of a reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Terminal status or concurrent change", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Guard not satisfied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/rentals": {
            "get": {
                "tags": ["Rentals"],
                "summary": "List vehicle rentals",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/rentals/{id}": {
            "get": {
                "tags": ["Rentals"],
                "summary": "Get one rental",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/rentals/{id}/transitions": {
            "get": {
                "tags": ["Rentals"],
                "summary": "List allowed next statuses for a rental",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/rentals/{id}/status": {
            "put": {
                "tags": ["Rentals"],
                "summary": "Change the status of a rental",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStatusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Terminal status or concurrent change", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Guard not satisfied", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Illegal transition", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/documents": {
            "get": {
                "tags": ["Documents"],
                "summary": "List documents of an entity",
                "parameters": [
                    {"name": "entityId", "in": "query", "type": "string"},
                    {"name": "workflow", "in": "query", "type": "string"},
                    {"name": "state", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/documents/{id}/validate": {
            "put": {
                "tags": ["Documents"],
                "summary": "Validate a pending document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/documents/{id}/reject": {
            "put": {
                "tags": ["Documents"],
                "summary": "Reject a pending document",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RejectDocumentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already reviewed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/audits": {
            "get": {
                "tags": ["Audits"],
                "summary": "List status transition audit records",
                "parameters": [
                    {"name": "entityId", "in": "query", "type": "string"},
                    {"name": "workflow", "in": "query", "type": "string"},
                    {"name": "actor", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/audits/export": {
            "post": {
                "tags": ["Audits"],
                "summary": "Export the audit trail as CSV or PDF",
                "parameters": [
                    {"name": "format", "in": "query", "required": true, "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "entityId", "in": "query", "type": "string"},
                    {"name": "workflow", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/admin/audits/export/{token}": {
            "get": {
                "tags": ["Audits"],
                "summary": "Download a previously generated audit export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired link", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "UpdateStatusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "custom_message": {"type": "string"}
            },
            "required": ["status"]
        },
        "RejectDocumentRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "TransitionResult": {
            "type": "object",
            "properties": {
                "entity_id": {"type": "string"},
                "workflow": {"type": "string"},
                "old_status": {"type": "string"},
                "new_status": {"type": "string"},
                "audit_id": {"type": "string"},
                "notification_queued": {"type": "boolean"}
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
