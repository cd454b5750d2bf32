package gallery

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
	"github.com/shouni/go-chat-illustrator/pkg/settings"
)

func newTestGallery() *Gallery {
	return New(settings.NewStore(nil, 0))
}

func TestGallery_Add(t *testing.T) {
	t.Run("最新のエントリが常に先頭に来ること", func(t *testing.T) {
		g := newTestGallery()
		g.Add("IMG1", "image/png", "first", nil)
		g.Add("IMG2", "image/png", "second", nil)

		entries := g.Entries()
		if len(entries) != 2 {
			t.Fatalf("エントリ数の期待値 2, 実際の値 %d", len(entries))
		}
		if entries[0].Prompt != "second" {
			t.Errorf("先頭が最新エントリではありません: %s", entries[0].Prompt)
		}
	})

	t.Run("上限を超えたら古いエントリから切り捨てられること", func(t *testing.T) {
		g := newTestGallery()
		for i := 0; i < domain.GalleryLimit+10; i++ {
			g.Add("IMG", "image/png", fmt.Sprintf("prompt-%d", i), nil)
		}

		entries := g.Entries()
		if len(entries) != domain.GalleryLimit {
			t.Fatalf("上限の期待値 %d, 実際の値 %d", domain.GalleryLimit, len(entries))
		}
		// 最後に追加したものが先頭、最初期のものは消えていること
		if entries[0].Prompt != fmt.Sprintf("prompt-%d", domain.GalleryLimit+9) {
			t.Errorf("先頭エントリが想定と異なります: %s", entries[0].Prompt)
		}
	})

	t.Run("プロンプトが200文字に切り詰められること", func(t *testing.T) {
		g := newTestGallery()
		entry := g.Add("IMG", "image/png", strings.Repeat("あ", 500), nil)
		if got := len([]rune(entry.Prompt)); got != domain.PromptStoreLimit {
			t.Errorf("切り詰め後の文字数の期待値 %d, 実際の値 %d", domain.PromptStoreLimit, got)
		}
	})

	t.Run("メッセージ参照が保持されること", func(t *testing.T) {
		g := newTestGallery()
		id := 42
		entry := g.Add("IMG", "image/png", "with message", &id)
		if entry.MessageID == nil || *entry.MessageID != 42 {
			t.Error("MessageID が保持されていません")
		}
	})
}

func TestGallery_Delete(t *testing.T) {
	g := newTestGallery()
	g.Add("IMG1", "image/png", "first", nil)
	g.Add("IMG2", "image/png", "second", nil)

	t.Run("位置指定でちょうど1件削除されること", func(t *testing.T) {
		if !g.Delete(0) {
			t.Fatal("削除が行われませんでした")
		}
		entries := g.Entries()
		if len(entries) != 1 || entries[0].Prompt != "first" {
			t.Errorf("削除後の状態が想定と異なります: %+v", entries)
		}
	})

	t.Run("範囲外のインデックスは黙って無視されること", func(t *testing.T) {
		before := len(g.Entries())
		for _, index := range []int{-1, 5, 100} {
			if g.Delete(index) {
				t.Errorf("範囲外インデックス %d で削除が実行されました", index)
			}
		}
		if len(g.Entries()) != before {
			t.Error("範囲外削除でギャラリーが変化しました")
		}
	})
}

func TestGallery_View(t *testing.T) {
	g := newTestGallery()
	g.Add("IMG1", "image/jpeg", "only", nil)

	t.Run("存在するエントリを閲覧できること", func(t *testing.T) {
		entry, ok := g.View(0)
		if !ok {
			t.Fatal("エントリが見つかりませんでした")
		}
		if entry.DataURI() != "data:image/jpeg;base64,IMG1" {
			t.Errorf("data URI が想定と異なります: %s", entry.DataURI())
		}
	})

	t.Run("存在しないエントリは ok=false になること", func(t *testing.T) {
		if _, ok := g.View(99); ok {
			t.Error("存在しないはずのエントリが返りました")
		}
	})
}

func TestGallery_Clear(t *testing.T) {
	g := newTestGallery()
	g.Add("IMG1", "image/png", "a", nil)
	g.Add("IMG2", "image/png", "b", nil)

	if count := g.Clear(); count != 2 {
		t.Errorf("削除件数の期待値 2, 実際の値 %d", count)
	}
	if len(g.Entries()) != 0 {
		t.Error("クリア後もエントリが残っています")
	}
}
