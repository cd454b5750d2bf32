package builder

import (
	"fmt"
	"net/http"
	"os"

	"golang.org/x/time/rate"

	"github.com/shouni/go-chat-illustrator/internal/config"
	"github.com/shouni/go-chat-illustrator/pkg/chatctx"
	"github.com/shouni/go-chat-illustrator/pkg/gallery"
	"github.com/shouni/go-chat-illustrator/pkg/genclient"
	"github.com/shouni/go-chat-illustrator/pkg/prompts"
	"github.com/shouni/go-chat-illustrator/pkg/settings"

	"github.com/shouni/go-chat-illustrator/internal/runner"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config   *config.Config
	Store    *settings.Store
	Gallery  *gallery.Gallery
	Provider chatctx.Provider
	Client   *genclient.Client
	Runner   *runner.GenerateRunner
}

// NewAppContext は設定から全コンポーネントを組み立てるのだ。
// 設定ファイルが無ければデフォルト設定で開始するのだよ。
func NewAppContext(cfg *config.Config) (*AppContext, error) {
	store, err := buildStore(cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	if cfg.HostAPIKey != "" {
		headers.Set("Authorization", "Bearer "+cfg.HostAPIKey)
	}
	client := genclient.New(genclient.Config{
		BaseURL:   cfg.HostURL,
		Headers:   headers,
		ProjectID: cfg.ProjectID,
		Location:  cfg.LocationID,
		Timeout:   cfg.HTTPTimeout,
	})

	gal := gallery.New(store)
	limiter := rate.NewLimiter(rate.Every(cfg.RateInterval), 1)
	gen := runner.NewGenerateRunner(provider, prompts.NewRequestBuilder(), client, store, gal, limiter)

	return &AppContext{
		Config:   cfg,
		Store:    store,
		Gallery:  gal,
		Provider: provider,
		Client:   client,
		Runner:   gen,
	}, nil
}

// buildStore は設定ファイルを読み込んだ Store を構築します。
// 保存は同じファイルへの書き戻しとして注入されます。
func buildStore(cfg *config.Config) (*settings.Store, error) {
	path := cfg.Options.SettingsFile
	if path == "" {
		path = config.DefaultSettingsFile
	}

	saver := func(data []byte) error {
		return os.WriteFile(path, data, 0o644)
	}
	store := settings.NewStore(saver, cfg.SaveDebounce)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, fmt.Errorf("設定ファイル '%s' の読み込みに失敗したのだ: %w", path, err)
	}
	if err := store.Load(raw); err != nil {
		return nil, err
	}
	return store, nil
}

// buildProvider はチャットスナップショットの有無で Provider 実装を切り替えるのだ。
func buildProvider(cfg *config.Config) (chatctx.Provider, error) {
	if cfg.Options.ChatFile == "" {
		// スナップショット無しでも素のプロンプト生成はできる
		return &chatctx.StaticProvider{}, nil
	}

	raw, err := os.ReadFile(cfg.Options.ChatFile)
	if err != nil {
		return nil, fmt.Errorf("チャットファイル '%s' の読み込みに失敗したのだ: %w", cfg.Options.ChatFile, err)
	}
	snap, err := chatctx.LoadSnapshot(raw)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	return chatctx.NewHostProvider(snap, cfg.HostURL, httpClient, cfg.AvatarCacheTTL), nil
}
