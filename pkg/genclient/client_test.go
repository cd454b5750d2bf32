package genclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

func chatRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Parts:       []domain.Part{domain.TextPart("a quiet harbor at dawn")},
		Model:       "gemini-3-pro-image-preview",
		AspectRatio: domain.AspectSquare,
		Temperature: 1.0,
	}
}

func TestClient_Generate_ChatRoute(t *testing.T) {
	var gotPath string
	var gotEnvelope chatEnvelope

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotEnvelope); err != nil {
			t.Errorf("エンベロープのデコードに失敗しました: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responseContent":{"parts":[{"inlineData":{"data":"IMG","mimeType":"image/png"}}]}}`)) //nolint:errcheck
	}))
	defer server.Close()

	client := New(Config{BaseURL: server.URL})
	res, err := client.Generate(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}

	if gotPath != ChatCompletionsPath {
		t.Errorf("送信先パスの期待値 %s, 実際の値 %s", ChatCompletionsPath, gotPath)
	}
	if res.ImageData != "IMG" {
		t.Errorf("抽出結果が想定と異なります: %+v", res)
	}
	if gotEnvelope.Stream {
		t.Error("ストリーミングが無効化されていません")
	}
	if len(gotEnvelope.Messages) != 1 || gotEnvelope.Messages[0].Role != "user" {
		t.Errorf("messages 配列が想定と異なります: %+v", gotEnvelope.Messages)
	}
}

func TestClient_Generate_ChatEnvelopeParts(t *testing.T) {
	req := chatRequest()
	req.Parts = []domain.Part{
		domain.TextPart("system text"),
		domain.TextPart("scene"),
		domain.TextPart("Reference image of the character Aqua:"),
		domain.ImagePart(domain.AvatarImage{MimeType: "image/png", Data: "AVATAR"}),
	}

	env := buildChatEnvelope(req, LookupCapability(req.Model))
	content := env.Messages[0].Content
	if len(content) != 4 {
		t.Fatalf("コンテンツ片数の期待値 4, 実際の値 %d", len(content))
	}
	last := content[3]
	if last.Type != "image_url" || last.ImageURL == nil {
		t.Fatalf("画像片が image_url になっていません: %+v", last)
	}
	if last.ImageURL.URL != "data:image/png;base64,AVATAR" {
		t.Errorf("data URI が想定と異なります: %s", last.ImageURL.URL)
	}
}

func TestClient_Generate_VertexRoute(t *testing.T) {
	var gotPath string
	var gotEnvelope vertexEnvelope

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotEnvelope); err != nil {
			t.Errorf("エンベロープのデコードに失敗しました: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"predictions":[{"bytesBase64Encoded":"VERTEX_IMG"}]}`)) //nolint:errcheck
	}))
	defer server.Close()

	req := chatRequest()
	req.Model = "imagen-3.0-generate-002"
	req.NegativePrompt = "blurry, low quality"
	req.NumberOfImages = 2

	client := New(Config{BaseURL: server.URL, ProjectID: "my-project", Location: "us-central1"})
	res, err := client.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}

	if gotPath != VertexImagePath {
		t.Errorf("送信先パスの期待値 %s, 実際の値 %s", VertexImagePath, gotPath)
	}
	if res.ImageData != "VERTEX_IMG" {
		t.Errorf("抽出結果が想定と異なります: %+v", res)
	}
	if gotEnvelope.ProjectID != "my-project" || gotEnvelope.Location != "us-central1" {
		t.Errorf("クラウド設定が伝わっていません: %+v", gotEnvelope)
	}
	if gotEnvelope.Body.Parameters.NegativePrompt != "blurry, low quality" {
		t.Error("ネガティブプロンプトが Imagen ルートで送られていません")
	}
	if gotEnvelope.Body.Parameters.SampleCount != 2 {
		t.Errorf("生成枚数の期待値 2, 実際の値 %d", gotEnvelope.Body.Parameters.SampleCount)
	}
}

func TestClient_Generate_VertexRequiresProject(t *testing.T) {
	// ネットワークに出る前に設定エラーで落ちること（サーバー不要）
	client := New(Config{BaseURL: "http://127.0.0.1:0"})
	req := chatRequest()
	req.Model = "imagen-3.0-generate-002"

	_, err := client.Generate(context.Background(), req)
	var cfgErr *domain.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("期待値 ConfigError, 実際の値 %v", err)
	}
	if cfgErr.Field != "project_id" {
		t.Errorf("欠落フィールドの期待値 'project_id', 実際の値 '%s'", cfgErr.Field)
	}
}

func TestClient_Generate_APIError(t *testing.T) {
	t.Run("error.message を掘り出せること", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"message":"invalid model"}}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		_, err := client.Generate(context.Background(), chatRequest())

		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("期待値 APIError, 実際の値 %v", err)
		}
		if apiErr.Status != http.StatusBadRequest || apiErr.Message != "invalid model" {
			t.Errorf("エラー内容が想定と異なります: %+v", apiErr)
		}
	})

	t.Run("トップレベルの message にもフォールバックすること", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"message":"quota exceeded"}`)) //nolint:errcheck
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		_, err := client.Generate(context.Background(), chatRequest())

		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("期待値 APIError, 実際の値 %v", err)
		}
		if apiErr.Message != "quota exceeded" {
			t.Errorf("メッセージが想定と異なります: %s", apiErr.Message)
		}
	})

	t.Run("パース不能なボディはステータスだけのエラーになること", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`<html>Internal Server Error</html>`)) //nolint:errcheck
		}))
		defer server.Close()

		client := New(Config{BaseURL: server.URL})
		_, err := client.Generate(context.Background(), chatRequest())

		var apiErr *domain.APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("期待値 APIError, 実際の値 %v", err)
		}
		if apiErr.Error() != "API Error: 500" {
			t.Errorf("フォールバック表記が想定と異なります: %s", apiErr.Error())
		}
	})
}

func TestClient_Generate_HeadersForwarded(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"responseContent":{"parts":[{"inlineData":{"data":"IMG"}}]}}`)) //nolint:errcheck
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("Authorization", "Bearer token123")
	client := New(Config{BaseURL: server.URL, Headers: headers})

	if _, err := client.Generate(context.Background(), chatRequest()); err != nil {
		t.Fatalf("エラーが発生しました: %v", err)
	}
	if gotAuth != "Bearer token123" {
		t.Errorf("認可ヘッダが転送されていません: %s", gotAuth)
	}
}

func TestLookupCapability(t *testing.T) {
	t.Run("Imagen系は Vertex ルートで全パラメータ対応なこと", func(t *testing.T) {
		c := LookupCapability("imagen-3.0-generate-002")
		if c.Route != RouteVertex || !c.NegativePrompt || !c.MultiImage || c.ReferenceImages {
			t.Errorf("対応表が想定と異なります: %+v", c)
		}
	})

	t.Run("Gemini系は chat ルートで参照画像対応なこと", func(t *testing.T) {
		c := LookupCapability("gemini-3-pro-image-preview")
		if c.Route != RouteChat || !c.ReferenceImages || c.NegativePrompt || c.MultiImage {
			t.Errorf("対応表が想定と異なります: %+v", c)
		}
	})
}
