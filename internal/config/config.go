package config

import (
	"time"

	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義なのだ
const (
	DefaultHostURL        = "http://127.0.0.1:8000"
	DefaultHTTPTimeout    = 120 * time.Second
	DefaultRateInterval   = 5 * time.Second
	DefaultAvatarCacheTTL = 5 * time.Minute
	DefaultSaveDebounce   = 1 * time.Second
	DefaultSettingsFile   = "illustrator_settings.json"
)

// Config はアプリケーション全体の環境設定（ホスト接続やクラウド設定）を保持する構造体なのだ。
// ユーザー設定ブロブ（pkg/domain.Settings）とは別物で、こちらは環境側の値だけを持つのだ。
type Config struct {
	HostURL    string // チャットホストのベースURL
	HostAPIKey string // ホストへの Authorization に使うトークン（任意）
	ProjectID  string // Vertex 直接ルート用の Google Cloud Project ID
	LocationID string // 例: "us-central1"

	HTTPTimeout    time.Duration
	RateInterval   time.Duration
	AvatarCacheTTL time.Duration
	SaveDebounce   time.Duration

	Options GenerateOptions
}

// LoadConfig は環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	return &Config{
		HostURL:        envutil.GetEnv("CHAT_HOST_URL", DefaultHostURL),
		HostAPIKey:     envutil.GetEnv("CHAT_HOST_API_KEY", ""),
		ProjectID:      envutil.GetEnv("PROJECT_ID", ""),
		LocationID:     envutil.GetEnv("REGION", ""),
		HTTPTimeout:    DefaultHTTPTimeout,
		RateInterval:   DefaultRateInterval,
		AvatarCacheTTL: DefaultAvatarCacheTTL,
		SaveDebounce:   DefaultSaveDebounce,
	}
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 設定・入力関連
	SettingsFile string // --settings-file
	ChatFile     string // --chat-file: ホスト状態のスナップショットJSON

	// ユーザー設定の上書き（指定されたフラグだけを反映する）
	Model             string // --model
	AspectRatio       string // --aspect-ratio
	UseAvatars        bool   // --avatars
	NoDescriptions    bool   // --no-descriptions
	SystemInstruction string // --system-instruction
	NegativePrompt    string // --negative-prompt
	NumberOfImages    int    // --count

	// ギャラリー操作関連
	Yes     bool   // --yes: 対話的確認をスキップ
	OutFile string // --out: 画像の書き出し先
}
