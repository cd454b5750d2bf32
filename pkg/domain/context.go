package domain

// AvatarImage はリクエストに添付する参照画像（アバター）を保持します。
type AvatarImage struct {
	MimeType string
	Data     string // Base64エンコード済みの画像バイト列
}

// ChatMessage はホストのチャット履歴のうち、生成に必要な要素だけを保持します。
type ChatMessage struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	IsUser   bool   `json:"is_user"`
	IsSystem bool   `json:"is_system"`
	Text     string `json:"mes"`
}

// Descriptions はキャラクターとユーザーペルソナの説明テキスト群なのだ。
// 欠けているフィールドはすべて空文字列にフォールバックするのだ。
type Descriptions struct {
	CharacterName        string
	CharacterDescription string
	CharacterScenario    string
	UserPersona          string
}

// PromptContext はリクエスト1回ごとに組み立て直される一時的な文脈情報です。
// ホストのライブ状態から導出され、永続化はされません。
type PromptContext struct {
	Descriptions    Descriptions
	CharacterAvatar *AvatarImage // 取得失敗時は nil（エラーにはしない）
	UserAvatar      *AvatarImage
}
