package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/M-Alhbyb/inventory-pos-companies/internal/apierror"
	"github.com/M-Alhbyb/inventory-pos-companies/internal/repository"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every access token.
type JWTClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	TokenUse  string `json:"token_use"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.TokenUse != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose JWT role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*JWTClaims)
		if !ok || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// RequireCompany rejects tokens without a company scope (platform
// managers hit the platform routes instead).
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.CompanyID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("company scope required"))
			return
		}
		if _, err := uuid.Parse(claims.CompanyID); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("company scope required"))
			return
		}
		c.Next()
	}
}

// RequireActiveSubscription blocks company routes when the subscription
// has lapsed. Lookup goes through the repository on every request; the
// subscriptions table is tiny and stays in the buffer cache.
func RequireActiveSubscription(companyRepo repository.CompanyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || claims.CompanyID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("company scope required"))
			return
		}
		companyID, err := uuid.Parse(claims.CompanyID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("company scope required"))
			return
		}
		sub, err := companyRepo.FindSubscription(c.Request.Context(), companyID)
		if err != nil || !sub.IsValid(time.Now()) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, apierror.New("subscription expired"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	claims, _ := c.MustGet(ClaimsKey).(*JWTClaims)
	return claims
}

// CompanyID parses the company scope out of the request claims.
func CompanyID(c *gin.Context) uuid.UUID {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, _ := uuid.Parse(claims.CompanyID)
	return id
}

// UserID parses the authenticated user id out of the request claims.
func UserID(c *gin.Context) uuid.UUID {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil
	}
	id, _ := uuid.Parse(claims.UserID)
	return id
}
