package domain

// アスペクト比の定義なのだ。バックエンドが受け付けるのはこの固定セットだけなのだ。
const (
	AspectSquare    = "1:1"
	AspectPortrait  = "3:4"
	AspectLandscape = "4:3"
	AspectTall      = "9:16"
	AspectWide      = "16:9"
)

// 設定とギャラリーの上限値の定義
const (
	// GalleryLimit はギャラリーに保持する最大エントリ数です。
	GalleryLimit = 50
	// PromptStoreLimit はギャラリーに保存するプロンプトの最大文字数です。
	PromptStoreLimit = 200
)

var validAspectRatios = map[string]bool{
	AspectSquare:    true,
	AspectPortrait:  true,
	AspectLandscape: true,
	AspectTall:      true,
	AspectWide:      true,
}

// IsValidAspectRatio は指定されたアスペクト比が許可されたセットに含まれるかを返します。
func IsValidAspectRatio(ratio string) bool {
	return validAspectRatios[ratio]
}

// Settings は、インストールごとに1つ保持されるユーザー設定ブロブなのだ。
// ホスト側に永続化され、起動時にデフォルト値でバックフィルされるのだよ。
type Settings struct {
	Model               string         `json:"model"`
	AspectRatio         string         `json:"aspectRatio"`
	UseAvatars          bool           `json:"useAvatars"`
	IncludeDescriptions bool           `json:"includeDescriptions"`
	SystemInstruction   string         `json:"systemInstruction"`
	NegativePrompt      string         `json:"negativePrompt"` // Imagen系モデルのみ有効
	NumberOfImages      int            `json:"numberOfImages"` // Imagen系モデルのみ有効（最小1）
	Gallery             []GalleryEntry `json:"gallery"`
}

// DefaultSettings は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultSettings() Settings {
	return Settings{
		Model:               "gemini-3-pro-image-preview",
		AspectRatio:         AspectSquare,
		UseAvatars:          true,
		IncludeDescriptions: true,
		SystemInstruction:   "",
		NegativePrompt:      "",
		NumberOfImages:      1,
		Gallery:             []GalleryEntry{},
	}
}

// Clone は設定の防御的コピーを返すのだ。
// Galleryスライスも新しく割り当てるため、呼び出し元の変更が内部状態に漏れないのだ。
func (s Settings) Clone() Settings {
	copied := s
	copied.Gallery = make([]GalleryEntry, len(s.Gallery))
	copy(copied.Gallery, s.Gallery)
	return copied
}
