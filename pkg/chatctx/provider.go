package chatctx

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// Provider はホストアプリケーションのライブ状態に対する読み取り専用アクセサ群です。
// テスト時には固定フィクスチャを返す実装（StaticProvider）を差し込めます。
type Provider interface {
	// LastMessage はチャット履歴を末尾から走査し、システムメッセージを飛ばして
	// 最初に見つかったユーザー/キャラクター発言を返します。
	// 対象がなければ ok=false を返します（エラーにはしません）。
	LastMessage(ctx context.Context) (msg domain.ChatMessage, ok bool)

	// Descriptions は現在のキャラクター説明・シナリオとユーザーペルソナを返します。
	// 欠けているフィールドはすべて空文字列です。
	Descriptions(ctx context.Context) domain.Descriptions

	// CharacterAvatar / UserAvatar はアバター画像を取得してBase64化して返します。
	// 取得に失敗した場合は nil を返し、エラーは決して伝播させません。
	CharacterAvatar(ctx context.Context) *domain.AvatarImage
	UserAvatar(ctx context.Context) *domain.AvatarImage
}

// BuildPromptContext はリクエスト1回分の文脈情報を組み立てるのだ。
// アバターが必要な場合はキャラクターとユーザーの2枚を並列で先読みするのだよ。
func BuildPromptContext(ctx context.Context, p Provider, includeDescriptions, includeAvatars bool) domain.PromptContext {
	pctx := domain.PromptContext{}
	if includeDescriptions {
		pctx.Descriptions = p.Descriptions(ctx)
	} else {
		// 説明を含めない場合でも、ラベル用にキャラクター名だけは保持する
		pctx.Descriptions.CharacterName = p.Descriptions(ctx).CharacterName
	}

	if includeAvatars {
		eg, egCtx := errgroup.WithContext(ctx)
		eg.Go(func() error {
			pctx.CharacterAvatar = p.CharacterAvatar(egCtx)
			return nil
		})
		eg.Go(func() error {
			pctx.UserAvatar = p.UserAvatar(egCtx)
			return nil
		})
		eg.Wait() //nolint:errcheck // アバター取得失敗は常に黙殺する契約なのだ
	}
	return pctx
}

// StaticProvider は固定値を返す Provider 実装です。
// テストのほか、チャットスナップショット無しでのCLI実行にも使われます。
type StaticProvider struct {
	Messages  []domain.ChatMessage
	Desc      domain.Descriptions
	CharImage *domain.AvatarImage
	UserImage *domain.AvatarImage
}

func (s *StaticProvider) LastMessage(_ context.Context) (domain.ChatMessage, bool) {
	return lastEligibleMessage(s.Messages)
}

func (s *StaticProvider) Descriptions(_ context.Context) domain.Descriptions {
	return s.Desc
}

func (s *StaticProvider) CharacterAvatar(_ context.Context) *domain.AvatarImage {
	return s.CharImage
}

func (s *StaticProvider) UserAvatar(_ context.Context) *domain.AvatarImage {
	return s.UserImage
}

// lastEligibleMessage は履歴を末尾から走査する共通ヘルパーなのだ。
func lastEligibleMessage(messages []domain.ChatMessage) (domain.ChatMessage, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsSystem {
			continue
		}
		msg := messages[i]
		msg.Index = i
		return msg, true
	}
	return domain.ChatMessage{}, false
}
