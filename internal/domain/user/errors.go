package user

import "errors"

// User ドメインのエラー定義
var (
	ErrUserNotFound       = errors.New("ユーザーが見つかりません")
	ErrEmailAlreadyExists = errors.New("メールアドレスは既に登録されています")
	ErrInvalidCredentials = errors.New("メールアドレスまたはパスワードが正しくありません")
	ErrInvalidEmail       = errors.New("メールアドレスが不正です")
	ErrPasswordRequired   = errors.New("パスワードは必須です")
	ErrPasswordTooShort   = errors.New("パスワードは6文字以上である必要があります")
)
