package utils

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractClientIP extracts the real client IP address from the request.
//
// Priority order:
// 1. X-Forwarded-For header (first entry)
// 2. X-Real-IP header
// 3. RemoteAddr
func ExtractClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		clientIP := strings.TrimSpace(ips[0])
		if isValidIP(clientIP) {
			return clientIP
		}
	}

	if xri := strings.TrimSpace(c.GetHeader("X-Real-IP")); xri != "" {
		if isValidIP(xri) {
			return xri
		}
	}

	remoteAddr := c.Request.RemoteAddr
	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		ip = remoteAddr
	}
	if isValidIP(ip) {
		return ip
	}

	return "127.0.0.1"
}

func isValidIP(ip string) bool {
	if ip == "" {
		return false
	}
	return net.ParseIP(ip) != nil
}

// IsPrivateIP checks if an IP address is in a private or loopback range
func IsPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsPrivate() || parsed.IsLoopback()
}
