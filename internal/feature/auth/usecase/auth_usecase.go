// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chat_backend/internal/feature/auth/domain/entity"
)

// dummyPasswordHash はユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュです。
// Verifyが常に呼ばれることを保証します。
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// MaxPasswordBytes はbcryptが受け付けるパスワードの最大バイト数です。
const MaxPasswordBytes = 72

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化し、IDとタイムスタンプを設定します。
	// 同じメールアドレスのユーザーが既に存在する場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id string) (*entity.User, error)

	// UpdateProfilePic はユーザーのプロフィール画像URLを更新し、更新後のユーザーを返します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	UpdateProfilePic(ctx context.Context, id, url string) (*entity.User, error)
}

// PasswordHasher はパスワードのハッシュ化と検証を定義します。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify は不正な形式のダイジェストに対してもエラーではなくfalseを返します。
	Verify(plaintext, digest string) bool
}

// TokenIssuer はセッショントークン発行のインターフェースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// GenerateToken は指定されたユーザーの署名済みJWTトークンを生成します。
	GenerateToken(userID string) (string, error)
}

// ImageUploader は外部の画像ホスティングへのアップロードを定義します。
type ImageUploader interface {
	// Upload はdata URIまたはURLで指定された画像をアップロードし、公開URLを返します。
	Upload(ctx context.Context, image string) (string, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	uploader ImageUploader
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, uploader ImageUploader) *authUsecase {
	return &authUsecase{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
	}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、セッショントークンを発行します。
// 入力形式の検証はtransport層で完了している前提です。
func (u *authUsecase) Signup(ctx context.Context, fullName, email, password string) (*entity.User, string, error) {
	if len(password) > MaxPasswordBytes {
		return nil, "", ErrPasswordTooLong
	}

	// 既存ユーザーの確認（同時登録の競合はストアの一意制約で検出される）
	if _, err := u.users.FindByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailAlreadyExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		FullName: fullName,
		Email:    email,
		Password: hashed,
	}
	if err := u.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, "", ErrEmailAlreadyExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := u.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// Login はユーザーを認証し、成功時にユーザーとJWTトークンを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもパスワード比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", fmt.Errorf("failed to look up email: %w", err)
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}

	// 常にパスワードを検証
	matched := u.hasher.Verify(password, passwordHash)

	// ユーザー未検出またはパスワード不一致の場合、同一のエラーを返す
	if err != nil || !matched {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.tokens.GenerateToken(user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// UpdateProfilePic は画像をアップロードし、得られたURLをユーザーに保存します。
func (u *authUsecase) UpdateProfilePic(ctx context.Context, userID, image string) (*entity.User, error) {
	if strings.TrimSpace(image) == "" {
		return nil, ErrProfilePicRequired
	}

	url, err := u.uploader.Upload(ctx, image)
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	user, err := u.users.UpdateProfilePic(ctx, userID, url)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile picture: %w", err)
	}
	return user, nil
}

// CurrentUser はセッションミドルウェアから呼ばれ、トークンのsubjectに対応するユーザーを取得します。
func (u *authUsecase) CurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}
