package domain

import (
	"errors"
	"fmt"
)

// 生成パスで発生するエラーの分類なのだ。
// すべて呼び出し元（UIアクション or コマンドハンドラ）まで伝播し、
// 通知1回として表示される。自動リトライはしない。
var (
	// ErrNoImage は応答をパースできたものの、既知のどの形にも画像が含まれなかったことを示します。
	ErrNoImage = errors.New("応答に画像が含まれていませんでした")

	// ErrBusy は別の生成リクエストが実行中であることを示します。
	ErrBusy = errors.New("画像生成が既に実行中なのだ")
)

// APIError は非成功HTTPステータスまたは不正なエンベロープを表します。
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("API Error: %d", e.Status)
}

// TextPreviewLimit はテキスト応答エラーに添えるプレビューの最大文字数です。
const TextPreviewLimit = 120

// TextResponseError は、モデルが画像ではなく文章で応答したことを表します。
// 拒否メッセージの先頭部分を Preview として保持します。
type TextResponseError struct {
	Preview string
}

func (e *TextResponseError) Error() string {
	return fmt.Sprintf("モデルが画像ではなくテキストを返しました: %s", e.Preview)
}

// NewTextResponseError はプレビューを切り詰めてエラーを作るのだ。
func NewTextResponseError(text string) *TextResponseError {
	return &TextResponseError{Preview: TruncateRunes(text, TextPreviewLimit)}
}

// ConfigError は、ネットワーク呼び出しの前段で検出された必須設定の欠落を表します。
type ConfigError struct {
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("必須設定 '%s' が見つかりません", e.Field)
}
