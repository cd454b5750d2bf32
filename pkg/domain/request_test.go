package domain

import (
	"strings"
	"testing"
)

func TestParseDataURI(t *testing.T) {
	t.Run("正しい data: URI を分解できること", func(t *testing.T) {
		mimeType, data, ok := ParseDataURI("data:image/jpeg;base64,QUJD")
		if !ok {
			t.Fatal("パースに失敗しました")
		}
		if mimeType != "image/jpeg" {
			t.Errorf("期待値 'image/jpeg', 実際の値 '%s'", mimeType)
		}
		if data != "QUJD" {
			t.Errorf("期待値 'QUJD', 実際の値 '%s'", data)
		}
	})

	t.Run("形式に一致しない文字列で ok=false になること", func(t *testing.T) {
		cases := []string{
			"https://example.com/image.png",
			"data:image/png,plainbody",
			"画像です",
			"",
		}
		for _, c := range cases {
			if _, _, ok := ParseDataURI(c); ok {
				t.Errorf("不正な入力 '%s' がパースされてしまいました", c)
			}
		}
	})
}

func TestBuildDataURI(t *testing.T) {
	if got := BuildDataURI("image/webp", "AAAA"); got != "data:image/webp;base64,AAAA" {
		t.Errorf("予期しない data URI: %s", got)
	}

	// MIMEタイプ未指定時は image/png にフォールバックすること
	if got := BuildDataURI("", "AAAA"); got != "data:image/png;base64,AAAA" {
		t.Errorf("フォールバックが効いていません: %s", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Run("上限以下はそのまま返ること", func(t *testing.T) {
		if got := TruncateRunes("abc", 5); got != "abc" {
			t.Errorf("期待値 'abc', 実際の値 '%s'", got)
		}
	})

	t.Run("マルチバイト文字でもrune単位で切り詰められること", func(t *testing.T) {
		got := TruncateRunes("こんにちは世界", 5)
		if got != "こんにちは" {
			t.Errorf("期待値 'こんにちは', 実際の値 '%s'", got)
		}
	})
}

func TestNewGalleryEntry(t *testing.T) {
	longPrompt := strings.Repeat("x", 300)
	entry := NewGalleryEntry("IMGDATA", "image/png", longPrompt, nil)

	if len([]rune(entry.Prompt)) != PromptStoreLimit {
		t.Errorf("プロンプトが %d 文字に切り詰められていません（実際: %d）", PromptStoreLimit, len([]rune(entry.Prompt)))
	}
	if entry.ID == "" {
		t.Error("IDが採番されていません")
	}
	if entry.Timestamp == 0 {
		t.Error("タイムスタンプが設定されていません")
	}
	if entry.MessageID != nil {
		t.Error("MessageID は指定がなければ nil のはずです")
	}
}

func TestGenerationRequest_TextPrompt(t *testing.T) {
	req := GenerationRequest{Parts: []Part{
		TextPart("first"),
		ImagePart(AvatarImage{MimeType: "image/png", Data: "AA"}),
		TextPart("second"),
		TextPart("   "),
	}}

	got := req.TextPrompt()
	if got != "first\n\nsecond" {
		t.Errorf("予期しない結合結果: %q", got)
	}
}
