package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "EduPulse Presence API",
        "description": "Classroom attendance verification with QR session tokens and BLE proximity analysis",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Attendance", "description": "Scan registration and verification"},
        {"name": "Occurrences", "description": "Class occurrences and session tokens"},
        {"name": "Devices", "description": "Student device binding"},
        {"name": "Students", "description": "Directory and enrolment checks"},
        {"name": "Reference", "description": "Rooms, subjects, semesters"},
        {"name": "Reports", "description": "Problem reports and attendance sheet export"},
        {"name": "Presentations", "description": "Per-occurrence slide deck links"}
    ],
    "paths": {
        "/attendance": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Register attendance with proximity verification",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid or expired token"},
                    "403": {"description": "Student or device rejected"}
                }
            }
        },
        "/attendance/{id}": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Fetch one attendance record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/{id}/confirm": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Manually confirm a pending attendance record",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ConfirmAttendanceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Record already decided"}
                }
            }
        },
        "/occurrences/{id}/token": {
            "post": {
                "tags": ["Occurrences"],
                "summary": "Issue a fresh attendance token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/occurrences/{id}/attendance": {
            "get": {
                "tags": ["Occurrences"],
                "summary": "Attendance list for one occurrence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/occurrences/{id}/attendance/export": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export the attendance sheet as CSV or PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File payload"}
                }
            }
        },
        "/devices/link": {
            "post": {
                "tags": ["Devices"],
                "summary": "Request binding a device to a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LinkDeviceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Device already registered"}
                }
            }
        },
        "/students/{index}/attendance/summary": {
            "get": {
                "tags": ["Students"],
                "summary": "Attendance summary for one semester",
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "string"},
                    {"name": "semester", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterAttendanceRequest": {
            "type": "object",
            "properties": {
                "student_index": {"type": "string"},
                "device_id": {"type": "string"},
                "session_token": {"type": "string"},
                "proximity_detections": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/ProximityDetection"}
                },
                "verification_start_time": {"type": "string"},
                "verification_end_time": {"type": "string"}
            },
            "required": ["student_index", "device_id", "session_token"]
        },
        "ProximityDetection": {
            "type": "object",
            "properties": {
                "beacon_device_id": {"type": "string"},
                "detected_room_id": {"type": "string"},
                "rssi": {"type": "integer"},
                "proximity_level": {"type": "string", "enum": ["NEAR", "MEDIUM", "FAR", "OUT_OF_RANGE"]},
                "estimated_distance_meters": {"type": "number"},
                "detected_at": {"type": "string"},
                "beacon_type": {"type": "string"}
            }
        },
        "ConfirmAttendanceRequest": {
            "type": "object",
            "properties": {
                "proximity_level": {"type": "string", "enum": ["NEAR", "MEDIUM", "FAR", "OUT_OF_RANGE"]}
            },
            "required": ["proximity_level"]
        },
        "LinkDeviceRequest": {
            "type": "object",
            "properties": {
                "student_index": {"type": "string"},
                "device_id": {"type": "string"},
                "device_name": {"type": "string"},
                "device_os": {"type": "string"}
            },
            "required": ["student_index", "device_id", "device_name", "device_os"]
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
