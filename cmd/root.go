package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-chat-illustrator/internal/builder"
	"github.com/shouni/go-chat-illustrator/internal/config"
	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// opts は全コマンドで共有されるCLIフラグの置き場なのだ。
var opts config.GenerateOptions

var rootCmd = &cobra.Command{
	Use:   "chat-illustrator",
	Short: "チャットの文脈からシーンのイラストを生成するのだ。",
	Long: `チャットホストの現在の会話・キャラクター情報からプロンプトを組み立て、
画像生成バックエンド（Gemini系 / Vertex Imagen系）を呼び出してイラストを作るのだ。
結果はギャラリーに記録され、data: URI として出力されるのだよ。`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 入力・設定ファイル関連 ---
	rootCmd.PersistentFlags().StringVarP(&opts.SettingsFile, "settings-file", "s", config.DefaultSettingsFile, "ユーザー設定ブロブの保存パスなのだ。")
	rootCmd.PersistentFlags().StringVarP(&opts.ChatFile, "chat-file", "f", "", "チャットホスト状態のスナップショットJSONなのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.Model, "model", "", "使用する画像生成モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.AspectRatio, "aspect-ratio", "", "アスペクト比（1:1, 3:4, 4:3, 9:16, 16:9）なのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.UseAvatars, "avatars", false, "アバターを参照画像として添付するのだ。")
	rootCmd.PersistentFlags().BoolVar(&opts.NoDescriptions, "no-descriptions", false, "キャラクター説明・ペルソナの注入を無効にするのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.SystemInstruction, "system-instruction", "", "全プロンプトの先頭に付ける指示文なのだ。")

	// --- Imagen (Vertex) 固有設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.NegativePrompt, "negative-prompt", "", "避けたい要素（Imagen系のみ有効）なのだ。")
	rootCmd.PersistentFlags().IntVar(&opts.NumberOfImages, "count", 0, "生成枚数（Imagen系のみ有効、最小1）なのだ。")
}

// newAppContext は環境変数とフラグから AppContext を組み立てる共通入口なのだ。
// 明示的に変更されたフラグだけをユーザー設定に反映するのだよ。
func newAppContext(cmd *cobra.Command) (*builder.AppContext, error) {
	cfg := config.LoadConfig()
	cfg.Options = opts

	appCtx, err := builder.NewAppContext(cfg)
	if err != nil {
		return nil, err
	}

	if opts.AspectRatio != "" && !domain.IsValidAspectRatio(opts.AspectRatio) {
		return nil, fmt.Errorf("アスペクト比 '%s' は許可されていないのだ", opts.AspectRatio)
	}

	// 文字列・数値系は mergo でゼロ値スキップのマージ
	if err := appCtx.Store.Apply(domain.Settings{
		Model:             opts.Model,
		AspectRatio:       opts.AspectRatio,
		SystemInstruction: opts.SystemInstruction,
		NegativePrompt:    opts.NegativePrompt,
		NumberOfImages:    opts.NumberOfImages,
	}); err != nil {
		return nil, err
	}

	// bool系はゼロ値と「未指定」を区別できないため Changed で判定する
	flags := cmd.Flags()
	if flags.Changed("avatars") {
		appCtx.Store.Update(func(s *domain.Settings) { s.UseAvatars = opts.UseAvatars })
	}
	if flags.Changed("no-descriptions") {
		appCtx.Store.Update(func(s *domain.Settings) { s.IncludeDescriptions = !opts.NoDescriptions })
	}

	return appCtx, nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	addAppFlags(rootCmd)
	rootCmd.AddCommand(generateCmd, lastCmd, galleryCmd, settingsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}
