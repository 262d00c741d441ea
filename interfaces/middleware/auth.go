package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// UserClaims is the JWT payload this service accepts. Subject carries the
// user id; Pro marks paid accounts with the larger generation budget.
type UserClaims struct {
	jwt.StandardClaims
	Pro bool `json:"pro,omitempty"`
}

// Auth requires a valid bearer token and aborts with 401 otherwise.
func Auth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, err := bearerClaims(ctx, secretKey)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": unauthorizedMessage(err)})
			return
		}
		setIdentity(ctx, claims)
		ctx.Next()
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present
// and lets anonymous requests through untouched.
func OptionalAuth(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Header.Get("Authorization") != "" {
			if claims, err := bearerClaims(ctx, secretKey); err == nil {
				setIdentity(ctx, claims)
			}
		}
		ctx.Next()
	}
}

func setIdentity(ctx *gin.Context, claims *UserClaims) {
	ctx.Set("user_id", claims.Subject)
	ctx.Set("pro", claims.Pro)
}

var errMissingBearer = errors.New("missing bearer token")

func bearerClaims(ctx *gin.Context, secretKey string) (*UserClaims, error) {
	authorization := ctx.Request.Header.Get("Authorization")
	if authorization == "" {
		return nil, errMissingBearer
	}
	parts := strings.SplitN(authorization, "Bearer ", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, errMissingBearer
	}

	var claims UserClaims
	token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Subject == "" {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

func unauthorizedMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token: %v", err)
	}
	return "Unauthorized"
}
