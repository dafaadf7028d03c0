package dto

// LoginReq は/loginエンドポイントのリクエストボディを表します。
// 形式の不備も認証失敗と同じ応答にするため、必須チェックのみ行います。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
