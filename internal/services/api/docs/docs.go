// Package docs holds the OpenAPI document for the status API.
// Regenerate with: swag init --v3.1 -g cmd/qsmerge-api/main.go -o internal/services/api/docs --outputTypes go
package docs

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "openapi": "3.0.3",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "paths": {
        "/meta/health": {
            "get": {
                "tags": ["Meta"],
                "summary": "Health check",
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.HealthResponse"}}}
                    }
                }
            }
        },
        "/meta/ready": {
            "get": {
                "tags": ["Meta"],
                "summary": "Readiness check over dependencies",
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.ReadyResponse"}}}
                    }
                }
            }
        },
        "/meta/version": {
            "get": {
                "tags": ["Meta"],
                "summary": "Build and version info",
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/version.BuildInfo"}}}
                    }
                }
            }
        },
        "/meta/service": {
            "get": {
                "tags": ["Meta"],
                "summary": "Service info and uptime",
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.ServiceResponse"}}}
                    }
                }
            }
        },
        "/periods": {
            "get": {
                "tags": ["Periods"],
                "summary": "Period ledger",
                "parameters": [
                    {"name": "run_id", "in": "query", "description": "run id", "schema": {"type": "string"}},
                    {"name": "status", "in": "query", "description": "running ok skipped nodata error", "schema": {"type": "string"}},
                    {"name": "limit", "in": "query", "description": "max rows, default 100", "schema": {"type": "integer"}}
                ],
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/domain.PeriodRow"}}}}
                    },
                    "400": {
                        "description": "bad filter",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.Envelope"}}}
                    }
                }
            }
        },
        "/periods/stats": {
            "get": {
                "tags": ["Periods"],
                "summary": "Summary stats of one period",
                "parameters": [
                    {"name": "key", "in": "query", "required": true, "description": "period key, e.g. 1A/rising-62L/t00-t20", "schema": {"type": "string"}}
                ],
                "responses": {
                    "200": {
                        "description": "ok",
                        "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/domain.StatsRow"}}}}
                    },
                    "400": {
                        "description": "missing key",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.Envelope"}}}
                    },
                    "404": {
                        "description": "no stats for the period",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.Envelope"}}}
                    },
                    "422": {
                        "description": "malformed key",
                        "content": {"application/json": {"schema": {"$ref": "#/components/schemas/http.Envelope"}}}
                    }
                }
            }
        }
    },
    "components": {
        "schemas": {
            "domain.PeriodRow": {
                "type": "object",
                "properties": {
                    "run_id": {"type": "string", "example": "2f1c6a8e-5b7d-4a09-9a57-2b1f0c3d4e5f"},
                    "period": {"type": "string", "example": "1A/rising-62L/t00-t20"},
                    "status": {"type": "string", "example": "ok"},
                    "origin": {"type": "string", "example": "chunks"},
                    "started_at": {"type": "string", "format": "date-time"},
                    "finished_at": {"type": "string", "format": "date-time"},
                    "sources": {"type": "integer", "example": 3},
                    "rows_in": {"type": "integer", "example": 1210},
                    "rows_out": {"type": "integer", "example": 1200},
                    "overlap_rows": {"type": "integer", "example": 10},
                    "diff_ratio": {"type": "number", "example": 0.001},
                    "nulled_rows": {"type": "integer"},
                    "outliers": {"type": "integer"},
                    "outlier_mass": {"type": "number"},
                    "deleted": {"type": "integer"},
                    "trimmed": {"type": "integer"},
                    "trim_mass": {"type": "number"},
                    "trim_ratio": {"type": "number"},
                    "padded": {"type": "integer"},
                    "suspicious": {"type": "boolean"},
                    "warnings": {"type": "array", "items": {"type": "string"}},
                    "elapsed_ms": {"type": "integer"},
                    "error": {"type": "string"}
                }
            },
            "domain.StatsRow": {
                "type": "object",
                "properties": {
                    "period": {"type": "string", "example": "1A/rising-62L/t00-t20"},
                    "kind": {"type": "string", "example": "av"},
                    "values": {"type": "object", "additionalProperties": {"type": "number"}}
                }
            },
            "http.Envelope": {
                "type": "object",
                "properties": {
                    "status_code": {"type": "integer"},
                    "status": {"type": "string"},
                    "code": {"type": "integer"},
                    "kind": {"type": "string"},
                    "error": {"type": "string"},
                    "field": {"type": "string"},
                    "request_id": {"type": "string"},
                    "data": {}
                }
            },
            "http.HealthResponse": {
                "type": "object",
                "properties": {
                    "ok": {"type": "boolean", "example": true},
                    "service": {"type": "string", "example": "qsmerge-api"},
                    "started": {"type": "string", "example": "2025-09-03T13:00:00Z"},
                    "now": {"type": "string", "example": "2025-09-03T13:05:00Z"}
                }
            },
            "http.ReadyCheck": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "example": "pg"},
                    "status": {"type": "string", "example": "ok"},
                    "error": {"type": "string"}
                }
            },
            "http.ReadyResponse": {
                "type": "object",
                "properties": {
                    "status": {"type": "string", "example": "ok"},
                    "checks": {"type": "array", "items": {"$ref": "#/components/schemas/http.ReadyCheck"}},
                    "now": {"type": "string", "example": "2025-09-03T13:05:00Z"}
                }
            },
            "http.ServiceResponse": {
                "type": "object",
                "properties": {
                    "name": {"type": "string", "example": "qsmerge-api"},
                    "started": {"type": "string", "example": "2025-09-03T13:00:00Z"},
                    "uptime": {"type": "integer", "example": 300}
                }
            },
            "version.BuildInfo": {
                "type": "object",
                "properties": {
                    "service": {"type": "string"},
                    "version": {"type": "string"},
                    "commit": {"type": "string"},
                    "date": {"type": "string"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	BasePath:         "/api/v1",
	Title:            "qsmerge API",
	Description:      "Read only endpoints over the period ledger and summary stats",
	InfoInstanceName: "api",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
