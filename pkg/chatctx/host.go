package chatctx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// CharacterCard はホストが保持するキャラクターレコードのうち、
// プロンプト構築に必要なフィールドだけを写し取ったものです。
type CharacterCard struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Scenario    string `json:"scenario"`
	AvatarFile  string `json:"avatar"` // /characters/<file> で取得するファイル名
}

// Snapshot はホストアプリケーションのライブ状態の静止画なのだ。
// チャット履歴・アクティブキャラクター・ペルソナを1リクエスト分だけ写すのだよ。
type Snapshot struct {
	Messages           []domain.ChatMessage `json:"chat"`
	Character          CharacterCard        `json:"character"`
	PersonaDescription string               `json:"persona_description"`
	UserAvatarURL      string               `json:"user_avatar_url"`
}

// LoadSnapshot はJSONバイト列からスナップショットをデコードします。
func LoadSnapshot(raw []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("チャットスナップショットのデコードに失敗したのだ: %w", err)
	}
	return snap, nil
}

// HostProvider はホストのHTTP面とスナップショットを組み合わせた Provider 実装です。
// アバター取得はTTLキャッシュと singleflight で重複排除されます。
type HostProvider struct {
	snap       Snapshot
	baseURL    string
	httpClient *http.Client
	cache      *gocache.Cache
	group      singleflight.Group
}

// NewHostProvider は HostProvider を初期化済みの状態で生成します。
func NewHostProvider(snap Snapshot, baseURL string, httpClient *http.Client, cacheTTL time.Duration) *HostProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HostProvider{
		snap:       snap,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      gocache.New(cacheTTL, 2*cacheTTL),
	}
}

func (h *HostProvider) LastMessage(_ context.Context) (domain.ChatMessage, bool) {
	return lastEligibleMessage(h.snap.Messages)
}

func (h *HostProvider) Descriptions(_ context.Context) domain.Descriptions {
	return domain.Descriptions{
		CharacterName:        h.snap.Character.Name,
		CharacterDescription: h.snap.Character.Description,
		CharacterScenario:    h.snap.Character.Scenario,
		UserPersona:          h.snap.PersonaDescription,
	}
}

func (h *HostProvider) CharacterAvatar(ctx context.Context) *domain.AvatarImage {
	if h.snap.Character.AvatarFile == "" {
		return nil
	}
	avatarURL := h.baseURL + "/characters/" + url.PathEscape(h.snap.Character.AvatarFile)
	return h.fetchAvatar(ctx, avatarURL)
}

func (h *HostProvider) UserAvatar(ctx context.Context) *domain.AvatarImage {
	raw := h.snap.UserAvatarURL
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "/") {
		raw = h.baseURL + raw
	}
	return h.fetchAvatar(ctx, raw)
}

// fetchAvatar はアバターを取得してBase64化するのだ。
// どんな失敗でも nil を返すだけで、エラーは呼び出し元に出さないのが契約なのだ。
func (h *HostProvider) fetchAvatar(ctx context.Context, avatarURL string) *domain.AvatarImage {
	if cached, ok := h.cache.Get(avatarURL); ok {
		img := cached.(domain.AvatarImage)
		return &img
	}

	// 同じURLへの同時取得は singleflight で1回に集約する
	val, err, _ := h.group.Do(avatarURL, func() (interface{}, error) {
		if cached, ok := h.cache.Get(avatarURL); ok {
			return cached.(domain.AvatarImage), nil
		}
		img, fetchErr := h.doFetch(ctx, avatarURL)
		if fetchErr != nil {
			return nil, fetchErr
		}
		h.cache.SetDefault(avatarURL, img)
		return img, nil
	})
	if err != nil {
		slog.Debug("アバター取得に失敗したため参照画像なしで続行するのだ", "url", avatarURL, "error", err)
		return nil
	}
	img := val.(domain.AvatarImage)
	return &img
}

func (h *HostProvider) doFetch(ctx context.Context, avatarURL string) (domain.AvatarImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, avatarURL, nil)
	if err != nil {
		return domain.AvatarImage{}, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return domain.AvatarImage{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AvatarImage{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AvatarImage{}, err
	}
	return domain.AvatarImage{
		MimeType: mimeTypeOf(resp.Header.Get("Content-Type")),
		Data:     base64.StdEncoding.EncodeToString(data),
	}, nil
}

// mimeTypeOf は Content-Type ヘッダからMIMEタイプを取り出します。
// パース不能・非画像など曖昧な場合は image/png にフォールバックします。
func mimeTypeOf(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "image/") {
		return domain.DefaultImageMimeType
	}
	return mediaType
}
