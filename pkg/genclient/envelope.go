package genclient

import (
	"fmt"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// バックエンドごとのJSONエンベロープ定義なのだ。
// 同じ論理リクエストでも、送信先によって包み方がまったく違うのだよ。

// --- chat-completions プロキシ用 ---

type chatImageURL struct {
	URL string `json:"url"`
}

type chatContentPart struct {
	Type     string        `json:"type"` // "text" | "image_url"
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatMessage struct {
	Role    string            `json:"role"`
	Content []chatContentPart `json:"content"`
}

type chatEnvelope struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
	AspectRatio string        `json:"aspect_ratio,omitempty"`
}

// buildChatEnvelope は順序付き片リストを chat-completion 形式の messages 配列に写すのだ。
// テキスト片は text パート、画像片は data: URI の image_url パートになるのだ。
func buildChatEnvelope(req domain.GenerationRequest, capability Capability) chatEnvelope {
	content := make([]chatContentPart, 0, len(req.Parts))
	for _, p := range req.Parts {
		if p.IsImage() {
			if !capability.ReferenceImages {
				continue
			}
			content = append(content, chatContentPart{
				Type:     "image_url",
				ImageURL: &chatImageURL{URL: domain.BuildDataURI(p.InlineImage.MimeType, p.InlineImage.Data)},
			})
			continue
		}
		content = append(content, chatContentPart{Type: "text", Text: p.Text})
	}

	env := chatEnvelope{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: content}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	}
	if capability.AspectRatio {
		env.AspectRatio = req.AspectRatio
	}
	return env
}

// --- Vertex 直接呼び出し用 (predict スタイル) ---

type vertexInstance struct {
	Prompt string `json:"prompt"`
}

type vertexParameters struct {
	SampleCount    int    `json:"sampleCount"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
	NegativePrompt string `json:"negativePrompt,omitempty"`
}

type vertexBody struct {
	Instances  []vertexInstance `json:"instances"`
	Parameters vertexParameters `json:"parameters"`
}

type vertexEnvelope struct {
	Endpoint  string     `json:"endpoint"`
	Body      vertexBody `json:"body"`
	ProjectID string     `json:"project_id"`
	Location  string     `json:"location"`
}

// buildVertexEnvelope は instances/parameters 形式のエンベロープを組み立てます。
// predict 側は画像片を受け付けないため、テキスト片の結合のみをプロンプトとして送ります。
func buildVertexEnvelope(req domain.GenerationRequest, capability Capability, projectID, location string) vertexEnvelope {
	params := vertexParameters{SampleCount: 1}
	if capability.MultiImage && req.NumberOfImages > 1 {
		params.SampleCount = req.NumberOfImages
	}
	if capability.AspectRatio {
		params.AspectRatio = req.AspectRatio
	}
	if capability.NegativePrompt {
		params.NegativePrompt = req.NegativePrompt
	}

	return vertexEnvelope{
		Endpoint: fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s",
			projectID, location, req.Model),
		Body: vertexBody{
			Instances:  []vertexInstance{{Prompt: req.TextPrompt()}},
			Parameters: params,
		},
		ProjectID: projectID,
		Location:  location,
	}
}
