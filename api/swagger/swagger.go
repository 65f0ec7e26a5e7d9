package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Counseling API",
        "description": "Counselor availability, appointment booking, and notifications",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Login and password reset"},
        {"name": "TimeSlots", "description": "Counselor availability windows"},
        {"name": "Appointments", "description": "Booking lifecycle"},
        {"name": "Notifications", "description": "Per-user notification feed"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Access token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Profile claims"},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/auth/reset-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Request password reset",
                "responses": {
                    "202": {"description": "Reset code sent if the account exists"}
                }
            }
        },
        "/auth/reset-password/confirm": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Confirm password reset",
                "responses": {
                    "200": {"description": "Password updated"},
                    "401": {"description": "Invalid or expired code"}
                }
            }
        },
        "/timeslots": {
            "post": {
                "tags": ["TimeSlots"],
                "summary": "Declare availability",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Window created with generated slots"},
                    "409": {"description": "Overlapping window"}
                }
            }
        },
        "/timeslots/my": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "List own availability",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Windows with slots"}
                }
            }
        },
        "/timeslots/range/{id}": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "Get an availability window",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Window with slots"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["TimeSlots"],
                "summary": "Delete an availability window",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/appointments/book": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Book an appointment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Appointment pending"},
                    "409": {"description": "Slot unavailable"}
                }
            }
        },
        "/appointments/{id}/approve": {
            "post": {
                "tags": ["Appointments"],
                "summary": "Approve an appointment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Appointment approved"},
                    "409": {"description": "Not pending"}
                }
            }
        },
        "/appointments/{id}/cancel": {
            "delete": {
                "tags": ["Appointments"],
                "summary": "Cancel an appointment",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Appointment cancelled, slot freed"},
                    "409": {"description": "Already cancelled"}
                }
            }
        },
        "/appointments/pending": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List pending appointments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Pending appointments"}
                }
            }
        },
        "/appointments/approved": {
            "get": {
                "tags": ["Appointments"],
                "summary": "List approved appointments",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Approved appointments"}
                }
            }
        },
        "/notifications": {
            "get": {
                "tags": ["Notifications"],
                "summary": "List notifications",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Notifications, newest first"}
                }
            }
        },
        "/notifications/{id}/read": {
            "patch": {
                "tags": ["Notifications"],
                "summary": "Mark notification read",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "Notification updated"}
                }
            }
        },
        "/notifications/{id}": {
            "delete": {
                "tags": ["Notifications"],
                "summary": "Delete notification",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        }
    },
    "definitions": {
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
