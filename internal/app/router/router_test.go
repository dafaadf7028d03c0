package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"chat_backend/internal/feature/auth/adapters"
	authhandler "chat_backend/internal/feature/auth/transport/handler"
	"chat_backend/internal/feature/auth/usecase"
	jwtmw "chat_backend/internal/platform/jwt"
	"chat_backend/internal/platform/password"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeUploader struct{}

func (fakeUploader) Upload(ctx context.Context, image string) (string, error) {
	if !strings.HasPrefix(image, "data:image/") {
		return "", usecase.ErrInvalidImage
	}
	return "https://cdn.example.com/avatars/me.png", nil
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

// newTestServer はSQLite、bcrypt、JWTを実物で組み立てたルーターを返します。
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&adapters.UserModel{}))

	tokens, err := jwtmw.NewGenerator("router-test-secret", 0)
	require.NoError(t, err)

	authUC := usecase.NewAuthUsecase(adapters.NewUserGorm(db), password.NewBcryptHasher(bcrypt.MinCost), tokens, fakeUploader{})
	cookie := jwtmw.NewSessionCookie(tokens.Expiration(), false)
	h := authhandler.NewAuthHandler(authUC, cookie, jwtmw.CurrentUser)

	return &testServer{
		router: NewRouter(h, jwtmw.AuthRequired(jwtmw.CookieName, tokens, authUC), nil),
		db:     db,
	}
}

func (s *testServer) do(method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) userCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, s.db.Model(&adapters.UserModel{}).Count(&n).Error)
	return n
}

func jwtCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == jwtmw.CookieName {
			return c
		}
	}
	return nil
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	msg, _ := body["message"].(string)
	return msg
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bom dia", w.Body.String())
}

func TestRouter_SignupFlow(t *testing.T) {
	s := newTestServer(t)
	signup := map[string]string{"fullName": "Ana", "email": "ana@x.com", "password": "123456"}

	w := s.do(http.MethodPost, "/api/auth/signup", signup)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "123456")
	cookie := jwtCookie(w)
	require.NotNil(t, cookie)
	assert.NotEmpty(t, cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 7*24*60*60, cookie.MaxAge)

	var stored adapters.UserModel
	require.NoError(t, s.db.Where("email = ?", "ana@x.com").First(&stored).Error)
	assert.NotEqual(t, "123456", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("123456")))

	// the signup cookie is already a session
	w = s.do(http.MethodGet, "/api/auth/check", nil, cookie)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email":"ana@x.com"`)

	// duplicate email leaves the store unchanged
	before := s.userCount(t)
	w = s.do(http.MethodPost, "/api/auth/signup", signup)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email já cadastrado", message(t, w))
	assert.Nil(t, jwtCookie(w))
	assert.Equal(t, before, s.userCount(t))
}

func TestRouter_SignupRejectsPasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": "Ana",
		"email":    "ana@x.com",
		"password": strings.Repeat("a", 80),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Senha deve conter no máximo 72 caracteres", message(t, w))
	assert.Nil(t, jwtCookie(w))
	assert.Zero(t, s.userCount(t))

	// 72 bytes is still accepted
	w = s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"fullName": "Ana",
		"email":    "ana@x.com",
		"password": strings.Repeat("a", 72),
	})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestRouter_LoginDoesNotRevealWhichFieldWasWrong(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{"fullName": "Ana", "email": "ana@x.com", "password": "123456"})
	require.Equal(t, http.StatusCreated, w.Code)

	unknown := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "nobody@x.com", "password": "123456"})
	wrongPw := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@x.com", "password": "654321"})

	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, unknown.Code, wrongPw.Code)
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
	assert.Equal(t, "Credenciais inválidas", message(t, unknown))
	assert.Nil(t, jwtCookie(unknown))
	assert.Nil(t, jwtCookie(wrongPw))

	ok := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ana@x.com", "password": "123456"})
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.NotNil(t, jwtCookie(ok))
}

func TestRouter_LogoutAndProtectedRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deslogado com sucesso", message(t, w))
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")

	w = s.do(http.MethodGet, "/api/auth/check", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Não autorizado", message(t, w))

	w = s.do(http.MethodGet, "/api/auth/check", nil, &http.Cookie{Name: jwtmw.CookieName, Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPut, "/api/auth/update-profile", map[string]string{"profilePic": "data:image/png;base64,AAAA"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_UpdateProfile(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{"fullName": "Ana", "email": "ana@x.com", "password": "123456"})
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := jwtCookie(w)

	w = s.do(http.MethodPut, "/api/auth/update-profile", map[string]string{"profilePic": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Foto de Perfil é necessária", message(t, w))

	w = s.do(http.MethodPut, "/api/auth/update-profile", map[string]string{"profilePic": "not-an-image"}, cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Imagem inválida", message(t, w))

	w = s.do(http.MethodPut, "/api/auth/update-profile", map[string]string{"profilePic": "data:image/png;base64,AAAA"}, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"profilePic":"https://cdn.example.com/avatars/me.png"`)
	assert.NotContains(t, w.Body.String(), "password")

	var stored adapters.UserModel
	require.NoError(t, s.db.Where("email = ?", "ana@x.com").First(&stored).Error)
	assert.Equal(t, "https://cdn.example.com/avatars/me.png", stored.ProfilePic)
}

func TestRouter_DeletedUserTokenIsRejected(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{"fullName": "Ana", "email": "ana@x.com", "password": "123456"})
	require.Equal(t, http.StatusCreated, w.Code)
	cookie := jwtCookie(w)

	require.NoError(t, s.db.Where("1 = 1").Delete(&adapters.UserModel{}).Error)

	w = s.do(http.MethodGet, "/api/auth/check", nil, cookie)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_CORS(t *testing.T) {
	tokens, err := jwtmw.NewGenerator("x", time.Hour)
	require.NoError(t, err)
	h := authhandler.NewAuthHandler(nil, jwtmw.NewSessionCookie(time.Hour, false), jwtmw.CurrentUser)
	r := NewRouter(h, jwtmw.AuthRequired(jwtmw.CookieName, tokens, nil), []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
