package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	mentorIDKey  = "mentorId"
	studentIDKey = "studentId"
	roleKey      = "role"
)

// Identity reads the caller's role headers into context for downstream
// handlers and logging. Roles are plain strings; request bodies may still
// carry explicit mentor identity, which takes precedence in handlers.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if mentorID := strings.TrimSpace(c.GetHeader("X-Mentor-Id")); mentorID != "" {
			c.Set(mentorIDKey, mentorID)
			c.Set(roleKey, "mentor")
		}
		if studentID := strings.TrimSpace(c.GetHeader("X-Student-Id")); studentID != "" {
			c.Set(studentIDKey, studentID)
			if _, ok := c.Get(roleKey); !ok {
				c.Set(roleKey, "student")
			}
		}
		c.Next()
	}
}

// MentorIDFromContext fetches the mentor ID set by the identity middleware.
func MentorIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(mentorIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// RoleFromContext fetches the caller role set by the identity middleware.
func RoleFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(roleKey)
	if role, ok := val.(string); ok {
		return role
	}
	return ""
}
