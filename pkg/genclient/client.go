package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// ホスト側の生成エンドポイントのパス定義
const (
	// ChatCompletionsPath は chat-completions プロキシ経由の生成エンドポイントです。
	ChatCompletionsPath = "/api/backends/chat-completions/generate"
	// VertexImagePath は Vertex AI を直接叩くホスト側エンドポイントです。
	VertexImagePath = "/api/vertex/generate-image"
)

// Config は Client の接続設定です。認証ヘッダはホスト側の流儀に従って注入されます。
type Config struct {
	BaseURL    string
	Headers    http.Header   // ホストアプリケーションが供給する認可ヘッダ等
	ProjectID  string        // Vertex 直接ルートの必須設定
	Location   string        // 同上
	Timeout    time.Duration // HTTPClient 未指定時のみ使用
	HTTPClient *http.Client
}

// Client は構成済みバックエンドへの生成リクエストを発行し、応答を照合します。
// リトライもキャッシュもしない、1呼び出し＝1試行のクライアントなのだ。
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New は Client を生成します。
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}
}

// Generate はリクエストをバックエンド固有のエンベロープに包んで送信し、
// 複数の応答形を固定優先順で照合して画像1枚を取り出すのだ。
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error) {
	capability := LookupCapability(req.Model)

	var (
		path    string
		payload any
	)
	switch capability.Route {
	case RouteVertex:
		// ネットワークに出る前に必須設定を検証する
		if c.cfg.ProjectID == "" {
			return nil, &domain.ConfigError{Field: "project_id"}
		}
		if c.cfg.Location == "" {
			return nil, &domain.ConfigError{Field: "location"}
		}
		path = VertexImagePath
		payload = buildVertexEnvelope(req, capability, c.cfg.ProjectID, c.cfg.Location)
	default:
		path = ChatCompletionsPath
		payload = buildChatEnvelope(req, capability)
	}

	slog.InfoContext(ctx, "画像生成リクエストを送信するのだ",
		"model", req.Model,
		"path", path,
		"parts", len(req.Parts),
	)

	raw, err := c.post(ctx, path, payload)
	if err != nil {
		return nil, err
	}

	res, err := extract(raw)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "画像を受信したのだ", "mime_type", res.MimeType, "bytes_base64", len(res.ImageData))
	return res, nil
}

// post はJSONボディをPOSTし、非成功ステータスを APIError に変換して返します。
func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("リクエストのエンコードに失敗したのだ: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗したのだ: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for key, values := range c.cfg.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("生成エンドポイントへの接続に失敗したのだ: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("応答の読み取りに失敗したのだ: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiError(resp.StatusCode, raw)
	}
	return raw, nil
}

// apiError はエラーボディから error.message / message をベストエフォートで掘り出すのだ。
// 何も取れなければ "API Error: <status>" に落ちるのだ。
func apiError(status int, raw []byte) *domain.APIError {
	body := gjson.ParseBytes(raw)
	message := body.Get("error.message").String()
	if message == "" {
		message = body.Get("message").String()
	}
	return &domain.APIError{Status: status, Message: message}
}
