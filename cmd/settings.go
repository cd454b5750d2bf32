package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// settingsCmd は現在のユーザー設定を表示・保存するのだ。
// フラグで渡した上書きを恒久化したいときは save を使うのだよ。
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "現在のユーザー設定を表示するのだ。",
	RunE:  settingsCommand,
}

var settingsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "フラグの上書きを反映した設定を保存するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx, err := newAppContext(cmd)
		if err != nil {
			return err
		}
		if err := appCtx.Store.Flush(); err != nil {
			return fmt.Errorf("設定の保存に失敗したのだ: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "設定を保存したのだ。")
		return nil
	},
}

func settingsCommand(cmd *cobra.Command, args []string) error {
	appCtx, err := newAppContext(cmd)
	if err != nil {
		return err
	}

	st := appCtx.Store.Snapshot()
	// 表示時はギャラリーの中身（巨大なBase64）を件数に置き換える
	display := struct {
		domain.Settings
		Gallery      []domain.GalleryEntry `json:"gallery,omitempty"`
		GalleryCount int                   `json:"galleryCount"`
	}{Settings: st, Gallery: nil, GalleryCount: len(st.Gallery)}

	data, err := json.MarshalIndent(display, "", "  ")
	if err != nil {
		return fmt.Errorf("設定のエンコードに失敗したのだ: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func init() {
	settingsCmd.AddCommand(settingsSaveCmd)
}
