package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// generateCmd は、引数のプロンプトからシーンのイラストを生成するのだ。
// スラッシュコマンド（/vimg 等）に対応する入口なのだよ。
var generateCmd = &cobra.Command{
	Use:     "generate <prompt>",
	Aliases: []string{"vimg", "verteximagine"},
	Short:   "プロンプトから画像を生成して data: URI を出力するのだ。",
	Long: `指定されたプロンプトを現在の設定・チャット文脈と組み合わせて画像を生成するのだ。
成功時は data: URI を標準出力に書き、結果はギャラリーにも記録されるのだよ。
失敗は標準エラーへの通知のみで、標準出力は空のままになるのだ。`,
	Args: cobra.MinimumNArgs(1),
	RunE: generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	scenePrompt := strings.TrimSpace(strings.Join(args, " "))
	if scenePrompt == "" {
		return fmt.Errorf("プロンプトを指定してほしいのだ")
	}

	appCtx, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer appCtx.Store.Flush() //nolint:errcheck

	res, err := appCtx.Runner.Generate(ctx, scenePrompt, "", nil)
	if err != nil {
		// 失敗は帯域外（stderr）の通知に留め、出力チャネルは空のままにする
		slog.Error("画像生成に失敗したのだ", "error", err)
		fmt.Fprintf(os.Stderr, "画像を生成できなかったのだ: %v\n", err)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.DataURI())
	return nil
}

// lastCmd は、最新のチャットメッセージをシーンとして画像化するのだ。
// メッセージ行に注入されるアクションボタンに相当するのだ。
var lastCmd = &cobra.Command{
	Use:   "last",
	Short: "最新のチャットメッセージからシーンを画像化するのだ。",
	RunE:  lastCommand,
}

func lastCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if opts.ChatFile == "" {
		return fmt.Errorf("チャットスナップショット（--chat-file）を指定してほしいのだ")
	}

	appCtx, err := newAppContext(cmd)
	if err != nil {
		return err
	}
	defer appCtx.Store.Flush() //nolint:errcheck

	res, err := appCtx.Runner.IllustrateLastMessage(ctx)
	if err != nil {
		slog.Error("画像生成に失敗したのだ", "error", err)
		fmt.Fprintf(os.Stderr, "画像を生成できなかったのだ: %v\n", err)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.DataURI())
	return nil
}
