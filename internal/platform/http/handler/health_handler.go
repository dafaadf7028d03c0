// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthGreeting は /api/health が返す本文です。
const HealthGreeting = "Bom dia"

// Health は /api/health エンドポイントを処理します。
// HEADは200、OPTIONSは204、それ以外はテキストの挨拶を返し、キャッシュを防止します。
func Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	switch c.Request.Method {
	case http.MethodHead:
		c.Status(http.StatusOK)
	case http.MethodOptions:
		c.Status(http.StatusNoContent)
	default:
		c.String(http.StatusOK, HealthGreeting)
	}
}
