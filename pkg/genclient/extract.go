package genclient

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// extractor は、パース済み応答ボディから画像を取り出す純粋な戦略関数です。
// 画像が見つかれば結果を、決定的な失敗（テキスト応答など）ならエラーを、
// この形ではなかった場合は (nil, nil) を返します。
type extractor func(body gjson.Result) (*domain.GenerationResult, error)

// extractors は応答形ごとの抽出戦略の固定優先順リストなのだ。
// バックエンド構成によって同じ論理リクエストでも返る形が違うため、
// 先頭から順に試して最初に一致したものを採用するのだよ。
var extractors = []extractor{
	extractResponseContentParts,
	extractCandidateParts,
	extractPredictions,
	extractChoiceImageURL,
	extractChoiceText,
}

// extract は応答ボディを既知の形に順番に当てて、最初の画像を取り出すのだ。
// どの形にも一致しなければ ErrNoImage なのだ。
func extract(raw []byte) (*domain.GenerationResult, error) {
	body := gjson.ParseBytes(raw)
	for _, ex := range extractors {
		res, err := ex(body)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, domain.ErrNoImage
}

// extractResponseContentParts は responseContent.parts[] 形式（プロキシ整形済みGemini応答）を処理します。
func extractResponseContentParts(body gjson.Result) (*domain.GenerationResult, error) {
	return firstInlineImage(body.Get("responseContent.parts")), nil
}

// extractCandidateParts は candidates[0].content.parts[] 形式（Gemini RESTの素の応答）を処理します。
func extractCandidateParts(body gjson.Result) (*domain.GenerationResult, error) {
	return firstInlineImage(body.Get("candidates.0.content.parts")), nil
}

// firstInlineImage は parts 配列から最初の inlineData 画像を探す共通ヘルパーです。
// MIMEタイプが無ければ image/png とみなします。
func firstInlineImage(parts gjson.Result) *domain.GenerationResult {
	if !parts.IsArray() {
		return nil
	}
	var found *domain.GenerationResult
	parts.ForEach(func(_, part gjson.Result) bool {
		data := part.Get("inlineData.data")
		if !data.Exists() || data.String() == "" {
			return true
		}
		mimeType := part.Get("inlineData.mimeType").String()
		if mimeType == "" {
			mimeType = domain.DefaultImageMimeType
		}
		found = &domain.GenerationResult{ImageData: data.String(), MimeType: mimeType}
		return false
	})
	return found
}

// extractPredictions は predictions[] 形式（Vertex predict応答）を処理するのだ。
func extractPredictions(body gjson.Result) (*domain.GenerationResult, error) {
	predictions := body.Get("predictions")
	if !predictions.IsArray() {
		return nil, nil
	}
	var found *domain.GenerationResult
	predictions.ForEach(func(_, pred gjson.Result) bool {
		data := pred.Get("bytesBase64Encoded")
		if !data.Exists() || data.String() == "" {
			return true
		}
		mimeType := pred.Get("mimeType").String()
		if mimeType == "" {
			mimeType = domain.DefaultImageMimeType
		}
		found = &domain.GenerationResult{ImageData: data.String(), MimeType: mimeType}
		return false
	})
	return found, nil
}

// extractChoiceImageURL は choices[0].message.content[] 内の image_url パートを処理します。
// URL が data: URI の場合のみ、MIMEタイプとペイロードに分解して返します。
func extractChoiceImageURL(body gjson.Result) (*domain.GenerationResult, error) {
	content := body.Get("choices.0.message.content")
	if !content.IsArray() {
		return nil, nil
	}
	var found *domain.GenerationResult
	content.ForEach(func(_, part gjson.Result) bool {
		if part.Get("type").String() != "image_url" {
			return true
		}
		mimeType, data, ok := domain.ParseDataURI(part.Get("image_url.url").String())
		if !ok {
			return true
		}
		found = &domain.GenerationResult{ImageData: data, MimeType: mimeType}
		return false
	})
	return found, nil
}

// extractChoiceText は choices[0].message.content が素の文字列だった場合の終端なのだ。
// モデルが画像の代わりに文章（拒否など）を返したことを意味するため、決定的な失敗にするのだ。
func extractChoiceText(body gjson.Result) (*domain.GenerationResult, error) {
	content := body.Get("choices.0.message.content")
	if content.Type != gjson.String {
		return nil, nil
	}
	text := strings.TrimSpace(content.String())
	if text == "" {
		return nil, nil
	}
	return nil, domain.NewTextResponseError(text)
}
