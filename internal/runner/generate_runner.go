package runner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/shouni/go-chat-illustrator/pkg/chatctx"
	"github.com/shouni/go-chat-illustrator/pkg/domain"
	"github.com/shouni/go-chat-illustrator/pkg/gallery"
	"github.com/shouni/go-chat-illustrator/pkg/prompts"
	"github.com/shouni/go-chat-illustrator/pkg/settings"
)

// ImageGenerator は GenerateRunner が依存する生成クライアントの契約です。
// テストではこの契約を満たすダブルを差し込みます。
type ImageGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationResult, error)
}

// GenerateRunner は文脈読み取り→プロンプト構築→生成→ギャラリー保存の一連の流れを管理します。
// 実行中トークンにより同時実行は1件に制限されます（busyフラグではなく本物の排他なのだ）。
type GenerateRunner struct {
	provider chatctx.Provider
	builder  *prompts.RequestBuilder
	client   ImageGenerator
	store    *settings.Store
	gallery  *gallery.Gallery
	limiter  *rate.Limiter
	inflight chan struct{} // 容量1の実行中トークン
}

// NewGenerateRunner は、依存関係を注入して初期化します。
func NewGenerateRunner(
	provider chatctx.Provider,
	builder *prompts.RequestBuilder,
	client ImageGenerator,
	store *settings.Store,
	gal *gallery.Gallery,
	limiter *rate.Limiter,
) *GenerateRunner {
	return &GenerateRunner{
		provider: provider,
		builder:  builder,
		client:   client,
		store:    store,
		gallery:  gal,
		limiter:  limiter,
		inflight: make(chan struct{}, 1),
	}
}

// Generate はシーンプロンプトから画像を1枚生成し、ギャラリーに記録するのだ。
// 別の生成が実行中の場合は ErrBusy で即座に失敗するのだ（二重クリック対策）。
func (r *GenerateRunner) Generate(ctx context.Context, scenePrompt, sender string, messageID *int) (*domain.GenerationResult, error) {
	select {
	case r.inflight <- struct{}{}:
		defer func() { <-r.inflight }()
	default:
		return nil, domain.ErrBusy
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("レートリミッタ待機中に中断されたのだ: %w", err)
		}
	}

	st := r.store.Snapshot()
	pctx := chatctx.BuildPromptContext(ctx, r.provider, st.IncludeDescriptions, st.UseAvatars)
	req := r.builder.Build(scenePrompt, sender, st, pctx)

	slog.InfoContext(ctx, "シーンの画像生成を開始するのだ",
		"model", st.Model,
		"aspect_ratio", st.AspectRatio,
		"use_avatars", st.UseAvatars,
	)

	res, err := r.client.Generate(ctx, req)
	if err != nil {
		slog.ErrorContext(ctx, "画像生成に失敗したのだ", "error", err)
		return nil, err
	}

	// 完了順でギャラリー先頭に入る（開始順は保証しない）
	entry := r.gallery.Add(res.ImageData, res.MimeType, scenePrompt, messageID)
	slog.InfoContext(ctx, "ギャラリーに保存したのだ", "entry_id", entry.ID, "mime_type", res.MimeType)

	return res, nil
}

// IllustrateLastMessage は最新の対象メッセージをシーンプロンプトとして画像化するのだ。
// メッセージ行のアクションボタンに相当する入口なのだよ。
func (r *GenerateRunner) IllustrateLastMessage(ctx context.Context) (*domain.GenerationResult, error) {
	msg, ok := r.provider.LastMessage(ctx)
	if !ok {
		return nil, fmt.Errorf("画像化できるメッセージが見つからなかったのだ")
	}
	index := msg.Index
	return r.Generate(ctx, msg.Text, msg.Name, &index)
}
