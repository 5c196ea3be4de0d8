package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// CORS adapts go-chi/cors to gin. Preflight requests are answered by the
// cors handler and never reach the route.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	handler := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID, "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	})

	return func(c *gin.Context) {
		passed := false
		handler.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			c.Abort()
		}
	}
}
