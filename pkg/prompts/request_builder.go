package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// RequestBuilder は、設定とチャット文脈から順序付きのコンテンツ片リストを組み立てます。
// 純粋な構築処理であり、ネットワークアクセスは行いません（アバターは先読み済みで渡されます）。
type RequestBuilder struct{}

// NewRequestBuilder は新しい RequestBuilder を生成します。
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{}
}

// Build は生成リクエストを組み立てるのだ。片の順序は固定なのだ：
//  1. システム指示（空でなければ）
//  2. ペルソナ/キャラクター説明ブロック（includeDescriptions 時のみ）
//  3. シーンプロンプト本体（sender があれば [Message from X]: でラップ）
//  4. アバター参照（useAvatars 時のみ、ラベル片＋画像片のペア）
//
// 欠けている説明・取得できなかったアバターは黙って飛ばす。エラーにはしない。
func (b *RequestBuilder) Build(scenePrompt, sender string, st domain.Settings, pctx domain.PromptContext) domain.GenerationRequest {
	var parts []domain.Part

	// --- 1. システム指示 ---
	if strings.TrimSpace(st.SystemInstruction) != "" {
		parts = append(parts, domain.TextPart(st.SystemInstruction))
	}

	// --- 2. 説明ブロック ---
	if st.IncludeDescriptions {
		if block := buildDescriptionBlock(pctx.Descriptions); block != "" {
			parts = append(parts, domain.TextPart(block))
		}
	}

	// --- 3. シーンプロンプト ---
	scene := scenePrompt
	if sender != "" {
		scene = fmt.Sprintf("[Message from %s]: %s", sender, scenePrompt)
	}
	parts = append(parts, domain.TextPart(scene))

	// --- 4. アバター参照（ラベル片＋画像片） ---
	if st.UseAvatars {
		if pctx.CharacterAvatar != nil {
			parts = append(parts, domain.TextPart(characterReferenceLabel(pctx.Descriptions.CharacterName)))
			parts = append(parts, domain.ImagePart(*pctx.CharacterAvatar))
		}
		if pctx.UserAvatar != nil {
			parts = append(parts, domain.TextPart("Reference image of the user:"))
			parts = append(parts, domain.ImagePart(*pctx.UserAvatar))
		}
	}

	numImages := st.NumberOfImages
	if numImages < 1 {
		numImages = 1
	}

	return domain.GenerationRequest{
		Parts:          parts,
		Model:          st.Model,
		AspectRatio:    st.AspectRatio,
		NegativePrompt: st.NegativePrompt,
		NumberOfImages: numImages,
		Temperature:    defaultTemperature,
		MaxTokens:      defaultMaxTokens,
		Stream:         false,
	}
}

const (
	defaultTemperature = 1.0
	defaultMaxTokens   = 8192
)

// buildDescriptionBlock はペルソナ→キャラクター説明→シナリオの固定順で
// ラベル付きヘッダのブロックを組み立てるのだ。全部空なら空文字列を返すのだ。
func buildDescriptionBlock(d domain.Descriptions) string {
	var sb strings.Builder
	if strings.TrimSpace(d.UserPersona) != "" {
		sb.WriteString("[User Persona]\n")
		sb.WriteString(d.UserPersona)
		sb.WriteString("\n\n")
	}
	if strings.TrimSpace(d.CharacterDescription) != "" {
		sb.WriteString("[Character Description]\n")
		sb.WriteString(d.CharacterDescription)
		sb.WriteString("\n\n")
	}
	if strings.TrimSpace(d.CharacterScenario) != "" {
		sb.WriteString("[Character Scenario]\n")
		sb.WriteString(d.CharacterScenario)
		sb.WriteString("\n\n")
	}
	return strings.TrimSpace(sb.String())
}

func characterReferenceLabel(name string) string {
	if name == "" {
		return "Reference image of the character:"
	}
	return fmt.Sprintf("Reference image of the character %s:", name)
}
