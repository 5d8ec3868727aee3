package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Registration API",
        "description": "Enrollment decision engine with section search and course tables",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Student registration and queries"},
        {"name": "Enrollments", "description": "Enroll, drop, force add, grading"},
        {"name": "Sections", "description": "Section search"},
        {"name": "CourseTables", "description": "Weekly course tables and exports"}
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
                    "200": {"description": "Ready"}
                }
            }
        },
        "/students": {
            "post": {
                "tags": ["Students"],
                "summary": "Register a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/major": {
            "get": {
                "tags": ["Students"],
                "summary": "Get the major a student belongs to",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/prerequisites/{courseId}": {
            "get": {
                "tags": ["Students"],
                "summary": "Check prerequisite satisfaction for a course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/grades": {
            "get": {
                "tags": ["Students"],
                "summary": "List a student's courses and grades",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/course-table": {
            "get": {
                "tags": ["CourseTables"],
                "summary": "Get the weekly course table containing a date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}/course-table/exports": {
            "post": {
                "tags": ["CourseTables"],
                "summary": "Queue a course table export",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Attempt to enroll a student in a section",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/enrollments/drop": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Drop an active enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollments/force-add": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Administratively enroll, bypassing the checks",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ForceAddRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/enrollments/grade": {
            "put": {
                "tags": ["Enrollments"],
                "summary": "Assign a grade to an enrollment",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetGradeRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/semesters/{id}/sections/search": {
            "post": {
                "tags": ["Sections"],
                "summary": "Search a semester's sections from a student's perspective",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SearchRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{jobId}": {
            "get": {
                "tags": ["CourseTables"],
                "summary": "Get export job status",
                "parameters": [
                    {"name": "jobId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/download/{token}": {
            "get": {
                "tags": ["CourseTables"],
                "summary": "Download a finished export",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        }
    },
    "definitions": {
        "AddStudentRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "major_id": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "enrolled_date": {"type": "string"}
            },
            "required": ["major_id", "first_name", "last_name", "enrolled_date"]
        },
        "EnrollRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "section_id": {"type": "string"}
            },
            "required": ["student_id", "section_id"]
        },
        "Grade": {
            "type": "object",
            "properties": {
                "kind": {"type": "string", "enum": ["NUMERIC", "PASS_FAIL"]},
                "score": {"type": "number"},
                "passed": {"type": "boolean"}
            }
        },
        "ForceAddRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "section_id": {"type": "string"},
                "grade": {"$ref": "#/definitions/Grade"}
            },
            "required": ["student_id", "section_id"]
        },
        "SetGradeRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "section_id": {"type": "string"},
                "grade": {"$ref": "#/definitions/Grade"}
            },
            "required": ["student_id", "section_id", "grade"]
        },
        "SearchRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"},
                "name": {"type": "string"},
                "instructor": {"type": "string"},
                "day_of_week": {"type": "integer"},
                "class_time": {"type": "integer"},
                "locations": {"type": "array", "items": {"type": "string"}},
                "course_type": {"type": "string"},
                "ignore_full": {"type": "boolean"},
                "ignore_conflict": {"type": "boolean"},
                "ignore_passed": {"type": "boolean"},
                "ignore_missing_prerequisites": {"type": "boolean"},
                "page_size": {"type": "integer"},
                "page_index": {"type": "integer"}
            },
            "required": ["student_id"]
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"},
                "format": {"type": "string", "enum": ["CSV", "PDF"]}
            },
            "required": ["date", "format"]
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
