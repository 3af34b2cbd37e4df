package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "College Timetable API",
        "description": "Timetable generation and publishing service for college departments",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Timetables", "description": "Generation, versions and activation"},
        {"name": "Subjects", "description": "Subject catalogue"},
        {"name": "Staff", "description": "Faculty roster"},
        {"name": "ScheduleConfig", "description": "Daily time structure per semester"},
        {"name": "Audit", "description": "Audit trail"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and receive an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Return the authenticated user's claims",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/generate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Generate timetables for a cohort",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GenerateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "503": {"description": "Generation exceeded the execution budget"}
                }
            }
        },
        "/timetables/versions": {
            "get": {
                "tags": ["Timetables"],
                "summary": "List stored timetable versions for a cohort",
                "parameters": [
                    {"name": "type", "in": "query", "required": true, "type": "string", "enum": ["odd", "even"]},
                    {"name": "department", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/timetables/versions/{version}": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get all semester timetables of a cohort at a version",
                "parameters": [
                    {"name": "version", "in": "path", "required": true, "type": "integer"},
                    {"name": "type", "in": "query", "required": true, "type": "string", "enum": ["odd", "even"]},
                    {"name": "department", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Version not found"}
                }
            }
        },
        "/timetables/activate": {
            "post": {
                "tags": ["Timetables"],
                "summary": "Activate a timetable version for a cohort",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ActivateTimetableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Version not found"}
                }
            }
        },
        "/timetables/active": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Get the active timetables for a cohort",
                "parameters": [
                    {"name": "type", "in": "query", "required": true, "type": "string", "enum": ["odd", "even"]},
                    {"name": "department", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No active timetable"}
                }
            }
        },
        "/timetables/export": {
            "get": {
                "tags": ["Timetables"],
                "summary": "Export a timetable version as PDF or CSV",
                "parameters": [
                    {"name": "type", "in": "query", "required": true, "type": "string", "enum": ["odd", "even"]},
                    {"name": "department", "in": "query", "required": true, "type": "string"},
                    {"name": "version", "in": "query", "type": "integer"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/subjects": {
            "get": {
                "tags": ["Subjects"],
                "summary": "List subjects",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "integer"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "type", "in": "query", "type": "string", "enum": ["Lecture", "Lab"]},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Subjects"],
                "summary": "Create subject",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSubjectRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/subjects/{id}": {
            "get": {
                "tags": ["Subjects"],
                "summary": "Get subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Subjects"],
                "summary": "Update subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSubjectRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Subjects"],
                "summary": "Delete subject",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/staff": {
            "get": {
                "tags": ["Staff"],
                "summary": "List staff members",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Staff"],
                "summary": "Create staff member",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStaffRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/staff/{id}": {
            "get": {
                "tags": ["Staff"],
                "summary": "Get staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Staff"],
                "summary": "Update staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStaffRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Staff"],
                "summary": "Delete staff member",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/schedule-configs": {
            "get": {
                "tags": ["ScheduleConfig"],
                "summary": "List schedule configurations",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["ScheduleConfig"],
                "summary": "Create or replace a schedule configuration",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpsertScheduleConfigRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "Configuration rejected by grid expansion"}
                }
            }
        },
        "/schedule-configs/{semester}": {
            "get": {
                "tags": ["ScheduleConfig"],
                "summary": "Get the effective configuration for a semester",
                "parameters": [
                    {"name": "semester", "in": "path", "required": true, "type": "integer"},
                    {"name": "department", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit-logs": {
            "get": {
                "tags": ["Audit"],
                "summary": "List recent audit entries",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "GenerateTimetableRequest": {
            "type": "object",
            "properties": {
                "department": {"type": "string"},
                "type": {"type": "string", "enum": ["odd", "even"]}
            },
            "required": ["department", "type"]
        },
        "ActivateTimetableRequest": {
            "type": "object",
            "properties": {
                "department": {"type": "string"},
                "type": {"type": "string", "enum": ["odd", "even"]},
                "version": {"type": "integer"}
            },
            "required": ["department", "type", "version"]
        },
        "CreateSubjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "code": {"type": "string"},
                "type": {"type": "string", "enum": ["Lecture", "Lab"]},
                "faculty_id": {"type": "string"},
                "periods_per_week": {"type": "integer"},
                "lab_name": {"type": "string"},
                "semester": {"type": "integer"},
                "department": {"type": "string"}
            },
            "required": ["name", "code", "type", "faculty_id", "periods_per_week", "semester", "department"]
        },
        "UpdateSubjectRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "faculty_id": {"type": "string"},
                "periods_per_week": {"type": "integer"},
                "lab_name": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "CreateStaffRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "phone": {"type": "string"},
                "designation": {"type": "string"},
                "department": {"type": "string"}
            },
            "required": ["name", "email", "phone", "designation", "department"]
        },
        "UpdateStaffRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "designation": {"type": "string"},
                "department": {"type": "string"},
                "active": {"type": "boolean"}
            }
        },
        "UpsertScheduleConfigRequest": {
            "type": "object",
            "properties": {
                "semester": {"type": "string"},
                "department": {"type": "string"},
                "class_start_time": {"type": "string"},
                "class_end_time": {"type": "string"},
                "period_duration": {"type": "integer"},
                "periods_per_day": {"type": "integer"},
                "lunch_start": {"type": "string"},
                "lunch_end": {"type": "string"},
                "break_times": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/BreakTime"}
                },
                "assembly_enabled": {"type": "boolean"},
                "assembly_start": {"type": "string"},
                "assembly_end": {"type": "string"},
                "working_days": {
                    "type": "array",
                    "items": {"type": "string"}
                },
                "max_per_day_per_subject": {"type": "integer"}
            },
            "required": ["semester", "class_start_time", "class_end_time", "period_duration", "periods_per_day", "lunch_start", "lunch_end", "working_days"]
        },
        "BreakTime": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "start": {"type": "string"},
                "end": {"type": "string"}
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
