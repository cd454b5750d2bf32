package genclient

import "strings"

// Route は生成リクエストの送信先バックエンド面を表します。
type Route int

const (
	// RouteChat はホストの chat-completions プロキシ経由のルートです（Gemini系）。
	RouteChat Route = iota
	// RouteVertex はホストの Vertex 直接呼び出しルートです（Imagen系）。
	RouteVertex
)

// Capability はモデルファミリーごとのパラメータ対応表なのだ。
// 各バリアントが暗黙に仮定していた対応有無を、明示的な表にまとめたのだよ。
type Capability struct {
	Route           Route
	NegativePrompt  bool // ネガティブプロンプトを送れるか
	MultiImage      bool // 複数枚の生成数を指定できるか
	ReferenceImages bool // 参照画像（アバター）をインライン添付できるか
	AspectRatio     bool // アスペクト比を透過できるか
}

// LookupCapability はモデル名からその対応表を引きます。
// Imagen系は Vertex predict ルート、それ以外は chat-completions ルートとして扱います。
func LookupCapability(model string) Capability {
	if strings.Contains(strings.ToLower(model), "imagen") {
		return Capability{
			Route:           RouteVertex,
			NegativePrompt:  true,
			MultiImage:      true,
			ReferenceImages: false,
			AspectRatio:     true,
		}
	}
	return Capability{
		Route:           RouteChat,
		NegativePrompt:  false,
		MultiImage:      false,
		ReferenceImages: true,
		AspectRatio:     true,
	}
}
