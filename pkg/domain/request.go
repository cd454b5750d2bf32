package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Part は生成リクエストを構成するコンテンツ片です。
// Text か InlineImage のどちらか一方だけを持ちます。
type Part struct {
	Text        string
	InlineImage *AvatarImage
}

// TextPart はテキスト片を作るヘルパーなのだ。
func TextPart(text string) Part {
	return Part{Text: text}
}

// ImagePart はインライン画像片を作るヘルパーなのだ。
func ImagePart(img AvatarImage) Part {
	return Part{InlineImage: &img}
}

// IsImage はこの片がインライン画像かどうかを返します。
func (p Part) IsImage() bool {
	return p.InlineImage != nil
}

// GenerationRequest は単一の画像生成要求です。
// Parts の順序には意味があり、シリアライズ時もそのまま維持されます。
type GenerationRequest struct {
	Parts          []Part
	Model          string
	AspectRatio    string
	NegativePrompt string
	NumberOfImages int
	Temperature    float64
	MaxTokens      int
	Stream         bool // 常に false。ストリーミングは扱わないのだ。
}

// TextPrompt は全テキスト片を結合した素のプロンプトを返します。
// 画像片を受け付けないバックエンド（Vertex predict系）への縮退に使います。
func (r GenerationRequest) TextPrompt() string {
	var texts []string
	for _, p := range r.Parts {
		if !p.IsImage() && strings.TrimSpace(p.Text) != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// GenerationResult は生成された画像データとそのメタデータです。
// 1回の呼び出しにつき画像は常に1枚で、複数枚の応答は先頭の1枚に還元されます。
type GenerationResult struct {
	ImageData string // Base64エンコード済み
	MimeType  string
}

// DataURI は結果を data: URI 形式で返すのだ。
func (r GenerationResult) DataURI() string {
	return BuildDataURI(r.MimeType, r.ImageData)
}

// BuildDataURI は MIME タイプと Base64 ペイロードから data: URI を組み立てます。
func BuildDataURI(mimeType, base64Data string) string {
	if mimeType == "" {
		mimeType = DefaultImageMimeType
	}
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
}

// DefaultImageMimeType は MIME タイプが不明な場合のフォールバック値です。
const DefaultImageMimeType = "image/png"

var dataURIRegex = regexp.MustCompile(`^data:([^;,]+);base64,(.+)$`)

// ParseDataURI は data:<mime>;base64,<payload> 形式の文字列を分解するのだ。
// 形式に一致しない場合は ok=false を返すのだ。
func ParseDataURI(uri string) (mimeType, base64Data string, ok bool) {
	m := dataURIRegex.FindStringSubmatch(uri)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// TruncateRunes は文字列を最大 limit 文字（rune単位）に切り詰めます。
func TruncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
