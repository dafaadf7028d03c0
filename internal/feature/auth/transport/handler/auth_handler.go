// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"chat_backend/internal/feature/auth/domain/entity"
	"chat_backend/internal/feature/auth/transport/http/dto"
	"chat_backend/internal/feature/auth/usecase"
)

// クライアントに返すメッセージ
const (
	msgMissingFields       = "Preencha todos os campos"
	msgInvalidEmail        = "Email inválido"
	msgPasswordTooShort    = "Senha deve conter 6 digitos"
	msgPasswordTooLong     = "Senha deve conter no máximo 72 caracteres"
	msgEmailTaken          = "Email já cadastrado"
	msgInvalidCredentials  = "Credenciais inválidas"
	msgLoggedOut           = "Deslogado com sucesso"
	msgProfilePicRequired  = "Foto de Perfil é necessária"
	msgInvalidImage        = "Imagem inválida"
	msgUnauthorized        = "Não autorizado"
	msgInternalServerError = "Internal Server Error"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は新規ユーザーを登録し、セッショントークンを返します。
	Signup(ctx context.Context, fullName, email, password string) (*entity.User, string, error)
	// Login はユーザーを認証し、成功時にセッショントークンを返します。
	Login(ctx context.Context, email, password string) (*entity.User, string, error)
	// UpdateProfilePic は画像をアップロードし、更新後のユーザーを返します。
	UpdateProfilePic(ctx context.Context, userID, image string) (*entity.User, error)
}

// SessionCookie はセッションCookieの付与と削除を定義します。
type SessionCookie interface {
	Attach(c *gin.Context, token string)
	Clear(c *gin.Context)
}

// CurrentUserFunc はミドルウェアが添付したユーザーを取り出します。
type CurrentUserFunc func(c *gin.Context) (*entity.User, error)

// AuthHandler は認証操作のHTTPリクエストを処理します。
type AuthHandler struct {
	auth        AuthUsecase
	cookie      SessionCookie
	currentUser CurrentUserFunc
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
func NewAuthHandler(auth AuthUsecase, cookie SessionCookie, currentUser CurrentUserFunc) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, currentUser: currentUser}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - 必須項目の欠落、メール形式、パスワード長の順に検証し400を返却
// - bcryptの上限（72バイト）を超えるパスワードは400を返却
// - メール重複時は400を返却
// - 成功時はCookieを付与し201を返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: signupValidationMessage(err)})
		return
	}

	user, token, err := h.auth.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailAlreadyExists):
			slog.Warn("signup rejected: email taken", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgEmailTaken})
			return
		case errors.Is(err, usecase.ErrPasswordTooLong):
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgPasswordTooLong})
			return
		}
		h.internalError(c, "signup failed", err)
		return
	}

	h.cookie.Attach(c, token)
	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login はユーザーログインAPIエンドポイントを処理します。
// 未登録・パスワード不一致・入力不備はすべて同じ400を返し、ユーザー列挙を防ぎます。
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidCredentials})
		return
	}

	user, token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidCredentials})
			return
		}
		h.internalError(c, "login failed", err)
		return
	}

	h.cookie.Attach(c, token)
	slog.Info("user login successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// Logout はセッションCookieを削除します。トークンは無状態のため他の処理は行いません。
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: msgLoggedOut})
}

// UpdateProfile は認証済みユーザーのプロフィール画像を更新します。
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("update-profile validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgProfilePicRequired})
		return
	}

	updated, err := h.auth.UpdateProfilePic(c.Request.Context(), user.ID, req.ProfilePic)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.NewUserResponse(updated))
	case errors.Is(err, usecase.ErrProfilePicRequired):
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgProfilePicRequired})
	case errors.Is(err, usecase.ErrInvalidImage):
		slog.Warn("profile picture rejected", "error", err, "user_id", user.ID, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: msgInvalidImage})
	default:
		h.internalError(c, "update profile failed", err)
	}
}

// CheckAuth は現在のセッションのユーザーを返します。
func (h *AuthHandler) CheckAuth(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func (h *AuthHandler) requireUser(c *gin.Context) (*entity.User, bool) {
	user, err := h.currentUser(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.MessageResponse{Message: msgUnauthorized})
		return nil, false
	}
	return user, true
}

// internalError は詳細をログにのみ出力し、汎用の500を返します。
func (h *AuthHandler) internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "remote_addr", c.ClientIP())
	c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: msgInternalServerError})
}

// signupValidationMessage はバインドエラーをメッセージに変換します。
// 必須項目の欠落を最優先とし、次にメール形式、最後にパスワード長を報告します。
func signupValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return msgMissingFields
	}

	msg := ""
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			return msgMissingFields
		case fe.Field() == "Email" && msg == "":
			msg = msgInvalidEmail
		case fe.Field() == "Password" && fe.Tag() == "min" && msg == "":
			msg = msgPasswordTooShort
		}
	}
	if msg == "" {
		return msgMissingFields
	}
	return msg
}
