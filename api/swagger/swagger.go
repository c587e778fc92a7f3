package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Scheduler API",
        "description": "Constraint-based course scheduling and conflict management",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Scheduling", "description": "Constraint-satisfaction schedule solving"},
        {"name": "Conflicts", "description": "Conflict detection and resolution lifecycle"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/scheduling/solve": {
            "post": {
                "tags": ["Scheduling"],
                "summary": "Solve a term's course schedule",
                "description": "Runs constraint search over the requested offerings. Strategies: BACKTRACKING_FORWARD_CHECKING, BACKTRACKING_AC3, MIN_CONFLICTS.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SolveRequest"}}
                ],
                "responses": {
                    "200": {"description": "Assignment found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid payload or cancelled"},
                    "409": {"description": "No consistent assignment exists"},
                    "422": {"description": "A variable has an empty domain"}
                }
            }
        },
        "/conflicts/detect": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Detect schedule conflicts",
                "description": "Audits one schedule or the full committed set. Only newly persisted conflicts are returned; duplicates inside the dedup window are skipped.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DetectConflictsRequest"}}
                ],
                "responses": {
                    "200": {"description": "Newly persisted conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List conflicts",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["PENDING", "RESOLVED", "IGNORED", "DEFERRED"]},
                    {"name": "severity", "in": "query", "type": "string", "enum": ["CRITICAL", "HIGH", "MEDIUM", "LOW"]},
                    {"name": "type", "in": "query", "type": "string"},
                    {"name": "entityType", "in": "query", "type": "string"},
                    {"name": "entityId", "in": "query", "type": "string"},
                    {"name": "scheduleId", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Conflict page", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/pending": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "List pending conflicts",
                "responses": {
                    "200": {"description": "Pending conflicts", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/has-pending": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Check whether any conflict awaits resolution",
                "responses": {
                    "200": {"description": "Pending flag", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/stats": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Aggregate conflict statistics",
                "responses": {
                    "200": {"description": "Counts by type, severity and status", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/conflicts/export": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Export conflicts as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "Rendered document"}
                }
            }
        },
        "/conflicts/{id}": {
            "get": {
                "tags": ["Conflicts"],
                "summary": "Get a conflict by id",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/conflicts/{id}/resolve": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Resolve a pending conflict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ResolveConflictRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated conflict"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/conflicts/{id}/ignore": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Ignore a pending conflict",
                "description": "Critical conflicts cannot be ignored.",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IgnoreConflictRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated conflict"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/conflicts/{id}/defer": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Defer a pending conflict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DeferConflictRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated conflict"},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/conflicts/{id}/reopen": {
            "post": {
                "tags": ["Conflicts"],
                "summary": "Reopen a deferred conflict",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Updated conflict"},
                    "409": {"description": "Invalid transition"}
                }
            }
        }
    },
    "definitions": {
        "SolveRequest": {
            "type": "object",
            "required": ["termId", "date"],
            "properties": {
                "termId": {"type": "string"},
                "strategy": {"type": "string", "enum": ["BACKTRACKING_FORWARD_CHECKING", "BACKTRACKING_AC3", "MIN_CONFLICTS"]},
                "offeringIds": {"type": "array", "items": {"type": "string"}},
                "maxIterations": {"type": "integer"},
                "timeBudgetMs": {"type": "integer"},
                "date": {"type": "string", "format": "date"},
                "commit": {"type": "boolean"}
            }
        },
        "DetectConflictsRequest": {
            "type": "object",
            "required": ["termId"],
            "properties": {
                "scheduleId": {"type": "string"},
                "termId": {"type": "string"},
                "all": {"type": "boolean"}
            }
        },
        "ResolveConflictRequest": {
            "type": "object",
            "required": ["notes"],
            "properties": {
                "notes": {"type": "string", "minLength": 3}
            }
        },
        "IgnoreConflictRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string", "minLength": 3}
            }
        },
        "DeferConflictRequest": {
            "type": "object",
            "required": ["reason"],
            "properties": {
                "reason": {"type": "string", "minLength": 3}
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
