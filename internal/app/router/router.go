// Package router はHTTPルーティングを組み立てます。
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authhandler "chat_backend/internal/feature/auth/transport/handler"
	"chat_backend/internal/platform/http/handler"
)

// NewRouter は /api 配下のルートを登録したエンジンを返します。
// corsOriginsが空の場合、CORSミドルウェアは追加しません。
func NewRouter(authHandler *authhandler.AuthHandler, authRequired gin.HandlerFunc, corsOrigins []string) *gin.Engine {
	r := gin.Default()

	// ルート登録より前に追加しないと既存ルートに適用されない
	if len(corsOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     corsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	api := r.Group("/api")

	// 導通確認用
	api.GET("/health", handler.Health)
	api.HEAD("/health", handler.Health)
	api.OPTIONS("/health", handler.Health)

	auth := api.Group("/auth")
	{
		// 認証不要
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)

		// 認証必須のルート（jwt Cookieが必要）
		protected := auth.Group("/")
		protected.Use(authRequired)
		protected.PUT("/update-profile", authHandler.UpdateProfile)
		protected.GET("/check", authHandler.CheckAuth)
	}

	return r
}
