package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Core API",
        "description": "Academic year lifecycle, consolidation and closure gate service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "AcademicYears", "description": "Year lifecycle and consolidation"},
        {"name": "ReopeningWindows", "description": "Scoped temporal exceptions to closure"},
        {"name": "Attendance", "description": "Lessons and attendance marks"},
        {"name": "Evaluations", "description": "Evaluation facts and grade summaries"},
        {"name": "Enrollments", "description": "Annual enrollments and progression"},
        {"name": "TeachingUnits", "description": "Subject + teacher + class assignments"},
        {"name": "History", "description": "Consolidated immutable snapshots"}
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
        "/academic-years": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "List academic years",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "year", "in": "query", "type": "integer"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Open a new academic year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateYearInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"}
                }
            }
        },
        "/academic-years/{id}": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "Get a single academic year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/academic-years/{id}/close": {
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Close an academic year and consolidate it",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Closed with consolidation report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already closed"}
                }
            }
        },
        "/reopening-windows": {
            "get": {
                "tags": ["ReopeningWindows"],
                "summary": "List reopening windows",
                "parameters": [
                    {"name": "yearId", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "pageSize", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["ReopeningWindows"],
                "summary": "Open a reopening window on a closed year",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateWindowInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error"},
                    "403": {"description": "Insufficient capability"},
                    "409": {"description": "Active window already exists"}
                }
            }
        },
        "/reopening-windows/{id}": {
            "get": {
                "tags": ["ReopeningWindows"],
                "summary": "Get a single reopening window",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/reopening-windows/{id}/terminate": {
            "post": {
                "tags": ["ReopeningWindows"],
                "summary": "Terminate a reopening window early",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Terminated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already terminated"}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List lessons of a teaching unit",
                "parameters": [
                    {"name": "unitId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Attendance"],
                "summary": "Register a lesson occurrence",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Blocked by closed year"}
                }
            }
        },
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Record or reclassify an attendance mark",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordMarkInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Blocked by closed year"}
                }
            }
        },
        "/evaluations": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "List evaluation facts for a student in a unit",
                "parameters": [
                    {"name": "unitId", "in": "query", "required": true, "type": "string"},
                    {"name": "studentId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Evaluations"],
                "summary": "Record an evaluation score",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEvaluationInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Blocked by closed year"}
                }
            }
        },
        "/evaluations/{evaluationId}": {
            "patch": {
                "tags": ["Evaluations"],
                "summary": "Correct an evaluation score",
                "parameters": [
                    {"name": "evaluationId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateScoreInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Blocked by closed year"}
                }
            }
        },
        "/grades/recovery": {
            "post": {
                "tags": ["Evaluations"],
                "summary": "Record a recovery score for a student in a unit",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecoveryScoreInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Blocked by closed year"}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List enrollments",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "yearId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll a student into a class group",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEnrollmentInput"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Progression rule violated"},
                    "403": {"description": "Blocked by closed year or missing capability"}
                }
            }
        },
        "/teaching-units": {
            "get": {
                "tags": ["TeachingUnits"],
                "summary": "List teaching units of a year",
                "parameters": [
                    {"name": "yearId", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teaching-units/{unitId}": {
            "get": {
                "tags": ["TeachingUnits"],
                "summary": "Get a teaching unit",
                "parameters": [
                    {"name": "unitId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["TeachingUnits"],
                "summary": "Edit a teaching unit",
                "parameters": [
                    {"name": "unitId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUnitInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Blocked by closed year"}
                }
            }
        },
        "/teaching-units/{unitId}/students/{studentId}/frequency": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Compute a student's frequency summary for a unit",
                "parameters": [
                    {"name": "unitId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teaching-units/{unitId}/students/{studentId}/grade": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "Compute a student's grade summary for a unit",
                "parameters": [
                    {"name": "unitId", "in": "path", "required": true, "type": "string"},
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/historical-records": {
            "get": {
                "tags": ["History"],
                "summary": "List historical records",
                "parameters": [
                    {"name": "studentId", "in": "query", "type": "string"},
                    {"name": "yearId", "in": "query", "type": "string"},
                    {"name": "unitId", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CreateYearInput": {
            "type": "object",
            "required": ["year", "start_date", "end_date"],
            "properties": {
                "year": {"type": "integer"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"}
            }
        },
        "CreateWindowInput": {
            "type": "object",
            "required": ["year_id", "reason", "scopes", "valid_from", "valid_until"],
            "properties": {
                "year_id": {"type": "string"},
                "reason": {"type": "string"},
                "scopes": {"type": "array", "items": {"type": "string"}},
                "valid_from": {"type": "string", "format": "date-time"},
                "valid_until": {"type": "string", "format": "date-time"}
            }
        },
        "CreateLessonInput": {
            "type": "object",
            "required": ["unit_id", "held_on", "hours"],
            "properties": {
                "unit_id": {"type": "string"},
                "held_on": {"type": "string", "format": "date-time"},
                "hours": {"type": "integer"}
            }
        },
        "RecordMarkInput": {
            "type": "object",
            "required": ["lesson_id", "student_id", "status"],
            "properties": {
                "lesson_id": {"type": "string"},
                "student_id": {"type": "string"},
                "status": {"type": "string", "enum": ["PRESENT", "JUSTIFIED", "UNJUSTIFIED"]}
            }
        },
        "CreateEvaluationInput": {
            "type": "object",
            "required": ["unit_id", "student_id", "type", "held_on"],
            "properties": {
                "unit_id": {"type": "string"},
                "student_id": {"type": "string"},
                "type": {"type": "string", "enum": ["TRIMESTER", "EXAM", "ASSIGNMENT", "RECOVERY", "FINAL_EXAM"]},
                "period": {"type": "integer"},
                "held_on": {"type": "string", "format": "date-time"},
                "score": {"type": "number"}
            }
        },
        "RecoveryScoreInput": {
            "type": "object",
            "required": ["unit_id", "student_id", "held_on"],
            "properties": {
                "unit_id": {"type": "string"},
                "student_id": {"type": "string"},
                "held_on": {"type": "string", "format": "date-time"},
                "score": {"type": "number"}
            }
        },
        "UpdateScoreInput": {
            "type": "object",
            "required": ["score"],
            "properties": {
                "score": {"type": "number"}
            }
        },
        "CreateEnrollmentInput": {
            "type": "object",
            "required": ["student_id", "year_id", "class_group_id"],
            "properties": {
                "student_id": {"type": "string"},
                "year_id": {"type": "string"},
                "class_group_id": {"type": "string"},
                "override": {"type": "boolean"}
            }
        },
        "UpdateUnitInput": {
            "type": "object",
            "properties": {
                "teacher_id": {"type": "string"},
                "planned_hours": {"type": "integer"}
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
