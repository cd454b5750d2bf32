package gallery

import (
	"github.com/shouni/go-chat-illustrator/pkg/domain"
	"github.com/shouni/go-chat-illustrator/pkg/settings"
)

// Gallery は Settings.Gallery の上に載る、上限付きLIFOログの操作層です。
// 挿入順がそのまま新しさを定義し、重複排除は行いません。
type Gallery struct {
	store *settings.Store
}

// New は Store を包む Gallery を生成します。
func New(store *settings.Store) *Gallery {
	return &Gallery{store: store}
}

// Add は新しいエントリを先頭に追加するのだ。
// リストは常に最新 GalleryLimit 件に切り詰められ、保存は Store 側でデバウンスされるのだ。
func (g *Gallery) Add(imageData, mimeType, prompt string, messageID *int) domain.GalleryEntry {
	entry := domain.NewGalleryEntry(imageData, mimeType, prompt, messageID)
	g.store.Update(func(s *domain.Settings) {
		s.Gallery = append([]domain.GalleryEntry{entry}, s.Gallery...)
		if len(s.Gallery) > domain.GalleryLimit {
			s.Gallery = s.Gallery[:domain.GalleryLimit]
		}
	})
	return entry
}

// Entries は現在のエントリ一覧（新しい順）のコピーを返します。
func (g *Gallery) Entries() []domain.GalleryEntry {
	return g.store.Snapshot().Gallery
}

// View は位置指定の読み取り専用ルックアップです。範囲外なら ok=false を返します。
func (g *Gallery) View(index int) (domain.GalleryEntry, bool) {
	entries := g.Entries()
	if index < 0 || index >= len(entries) {
		return domain.GalleryEntry{}, false
	}
	return entries[index], true
}

// Delete は位置指定でエントリを1件削除するのだ。
// 範囲外のインデックスは黙って無視する（エラーではなく仕様なのだ）。
func (g *Gallery) Delete(index int) bool {
	removed := false
	g.store.Update(func(s *domain.Settings) {
		if index < 0 || index >= len(s.Gallery) {
			return
		}
		s.Gallery = append(s.Gallery[:index], s.Gallery[index+1:]...)
		removed = true
	})
	return removed
}

// Clear は全エントリを削除し、削除した件数を返します。
// 対話的な確認は呼び出し側（UI / CLI）の責務です。
func (g *Gallery) Clear() int {
	count := 0
	g.store.Update(func(s *domain.Settings) {
		count = len(s.Gallery)
		s.Gallery = []domain.GalleryEntry{}
	})
	return count
}
