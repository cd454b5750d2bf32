package cmd

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// galleryCmd は過去の生成結果（上限付きLIFOログ）を操作するコマンド群なのだ。
var galleryCmd = &cobra.Command{
	Use:   "gallery",
	Short: "生成履歴ギャラリーを一覧・閲覧・削除するのだ。",
}

var galleryListCmd = &cobra.Command{
	Use:   "list",
	Short: "ギャラリーのエントリを新しい順に一覧するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext(cmd)
		if err != nil {
			return err
		}

		entries := appCtx.Gallery.Entries()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "ギャラリーは空なのだ。")
			return nil
		}
		for i, e := range entries {
			ts := time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04:05")
			fmt.Fprintf(cmd.OutOrStdout(), "[%d] %s  %s  %s\n", i, ts, e.MimeType, e.Prompt)
		}
		return nil
	},
}

var galleryViewCmd = &cobra.Command{
	Use:   "view <index>",
	Short: "エントリの data: URI を出力（--out でファイル書き出し）するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("インデックスは整数で指定してほしいのだ: %w", err)
		}

		appCtx, err := newAppContext(cmd)
		if err != nil {
			return err
		}

		entry, ok := appCtx.Gallery.View(index)
		if !ok {
			// 存在しないエントリの閲覧は no-op なのだ
			return nil
		}

		if opts.OutFile != "" {
			data, err := base64.StdEncoding.DecodeString(entry.ImageData)
			if err != nil {
				return fmt.Errorf("画像データのデコードに失敗したのだ: %w", err)
			}
			if err := os.WriteFile(opts.OutFile, data, 0o644); err != nil {
				return fmt.Errorf("画像の書き出しに失敗したのだ: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s に書き出したのだ (%d bytes)\n", opts.OutFile, len(data))
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), entry.DataURI())
		return nil
	},
}

var galleryDeleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "エントリを1件削除するのだ（範囲外は何もしない）。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("インデックスは整数で指定してほしいのだ: %w", err)
		}

		appCtx, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer appCtx.Store.Flush() //nolint:errcheck

		if appCtx.Gallery.Delete(index) {
			fmt.Fprintf(cmd.OutOrStdout(), "エントリ %d を削除したのだ。\n", index)
		}
		return nil
	},
}

var galleryClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "ギャラリーを空にするのだ（--yes で確認をスキップ）。",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		defer appCtx.Store.Flush() //nolint:errcheck

		if !opts.Yes && !confirm(cmd, "ギャラリーを全消去するのだ。よいか？ [y/N]: ") {
			fmt.Fprintln(cmd.OutOrStdout(), "中止したのだ。")
			return nil
		}

		count := appCtx.Gallery.Clear()
		fmt.Fprintf(cmd.OutOrStdout(), "%d 件のエントリを削除したのだ。\n", count)
		return nil
	},
}

// confirm は標準入力からの対話的確認なのだ。
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.OutOrStdout(), prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func init() {
	galleryClearCmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "確認なしで実行するのだ。")
	galleryViewCmd.Flags().StringVarP(&opts.OutFile, "out", "o", "", "画像の書き出し先パスなのだ。")
	galleryCmd.AddCommand(galleryListCmd, galleryViewCmd, galleryDeleteCmd, galleryClearCmd)
}
