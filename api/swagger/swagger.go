package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Grading Assistant API",
        "description": "Stages grades, comments, statuses and rubric comments locally and syncs them to the remote gradebook",
        "version": "0.1.0"
    },
    "basePath": "/api",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Config", "description": "Connection settings"},
        {"name": "Catalog", "description": "Read-through calls to the remote gradebook"},
        {"name": "Session", "description": "Drafts staged against the loaded submissions"},
        {"name": "State", "description": "Opaque frontend state blobs"},
        {"name": "History", "description": "Past sync outcomes"}
    ],
    "paths": {
        "/config": {
            "get": {
                "tags": ["Config"],
                "summary": "Redacted connection settings",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Config"],
                "summary": "Merge connection settings",
                "description": "Absent keys are kept, null clears a key, any other value overwrites it.",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConnectionSettings"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid settings", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignments": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Course assignments with submission counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Missing configuration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Remote error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/assignment-details": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Configured assignment with rubric",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Normalized submissions of the configured assignment",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/submissions/{userId}/file/{fileId}": {
            "get": {
                "tags": ["Catalog"],
                "summary": "Stream a submission attachment",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "fileId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Attachment body"},
                    "404": {"description": "Attachment not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/submissions/sync": {
            "post": {
                "tags": ["Catalog"],
                "summary": "Push submission updates as given",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "array", "items": {"$ref": "#/definitions/SubmissionUpdate"}}}
                ],
                "responses": {"200": {"description": "Per-student results", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/load": {
            "post": {
                "tags": ["Session"],
                "summary": "Load submissions, build drafts and restore the autosave snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Load or sync in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session": {
            "get": {
                "tags": ["Session"],
                "summary": "Submissions, drafts and stats",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/stats": {
            "get": {
                "tags": ["Session"],
                "summary": "Aggregate draft counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts/{userId}/grade": {
            "put": {
                "tags": ["Session"],
                "summary": "Stage a grade",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftValueRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts/{userId}/comment": {
            "put": {
                "tags": ["Session"],
                "summary": "Stage the submission comment",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftValueRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts/{userId}/status": {
            "put": {
                "tags": ["Session"],
                "summary": "Stage the submission status",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftValueRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts/{userId}/rubric/{criterionId}": {
            "put": {
                "tags": ["Session"],
                "summary": "Stage the comment of one rubric criterion",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "criterionId", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/DraftValueRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts/{userId}/copy-to-group": {
            "post": {
                "tags": ["Session"],
                "summary": "Copy a grade or comment to the rest of the group",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CopyToGroupRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts": {
            "delete": {
                "tags": ["Session"],
                "summary": "Discard every staged edit",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/drafts/{userId}": {
            "delete": {
                "tags": ["Session"],
                "summary": "Discard the staged edits of one student",
                "parameters": [
                    {"name": "userId", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/session/flush": {
            "post": {
                "tags": ["Session"],
                "summary": "Push every staged draft",
                "responses": {
                    "200": {"description": "Sync summary", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Load or sync in progress", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/session/export": {
            "get": {
                "tags": ["Session"],
                "summary": "Download the grading sheet",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "Grading sheet"}}
            }
        },
        "/state/{key}": {
            "get": {
                "tags": ["State"],
                "summary": "Read a client state blob",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string", "enum": ["autosave", "history", "ui-preferences", "dark-mode", "last-session"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["State"],
                "summary": "Replace a client state blob",
                "parameters": [
                    {"name": "key", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"204": {"description": "Stored"}}
            }
        },
        "/history": {
            "get": {
                "tags": ["History"],
                "summary": "Grading history, newest first",
                "parameters": [
                    {"name": "assignmentId", "in": "query", "type": "string"},
                    {"name": "userId", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "ConnectionSettings": {
            "type": "object",
            "properties": {
                "baseUrl": {"type": "string"},
                "courseId": {"type": "string"},
                "assignmentId": {"type": "string"},
                "accessToken": {"type": "string"},
                "keyBindings": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "SubmissionUpdate": {
            "type": "object",
            "properties": {
                "userId": {"type": "integer"},
                "gradeChanged": {"type": "boolean"},
                "grade": {"type": "number"},
                "commentChanged": {"type": "boolean"},
                "comment": {"type": "string"},
                "statusChanged": {"type": "boolean"},
                "status": {"type": "string", "enum": ["none", "late", "missing", "excused"]},
                "rubricCommentsChanged": {"type": "boolean"},
                "rubricComments": {"type": "object", "additionalProperties": {"type": "string"}}
            },
            "required": ["userId"]
        },
        "DraftValueRequest": {
            "type": "object",
            "properties": {
                "value": {"type": "string"}
            },
            "required": ["value"]
        },
        "CopyToGroupRequest": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "enum": ["grade", "comment"]},
                "value": {"type": "string"}
            },
            "required": ["field"]
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
