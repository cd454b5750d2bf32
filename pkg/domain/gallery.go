package domain

import (
	"time"

	"github.com/google/uuid"
)

// GalleryEntry は生成結果1件の記録を保持します。
// 作成後は削除以外で変更されない、フラットな履歴ログの1行です。
type GalleryEntry struct {
	ID        string `json:"id"`
	ImageData string `json:"imageData"` // Base64エンコード済みの画像バイト列
	MimeType  string `json:"mimeType"`
	Prompt    string `json:"prompt"`              // 200文字に切り詰めて保存するのだ
	Timestamp int64  `json:"timestamp"`           // エポックミリ秒
	MessageID *int   `json:"messageId,omitempty"` // チャット履歴へのインデックス参照（任意）
}

// NewGalleryEntry は生成結果からエントリを作るのだ。
// プロンプトはここで PromptStoreLimit 文字に切り詰めるのだよ。
func NewGalleryEntry(imageData, mimeType, prompt string, messageID *int) GalleryEntry {
	return GalleryEntry{
		ID:        uuid.NewString(),
		ImageData: imageData,
		MimeType:  mimeType,
		Prompt:    TruncateRunes(prompt, PromptStoreLimit),
		Timestamp: time.Now().UnixMilli(),
		MessageID: messageID,
	}
}

// DataURI はエントリの画像を data: URI 形式で返します。
func (e GalleryEntry) DataURI() string {
	return BuildDataURI(e.MimeType, e.ImageData)
}
