package settings

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"dario.cat/mergo"

	"github.com/shouni/go-chat-illustrator/pkg/domain"
)

// Saver は設定ブロブ全体を永続化する注入可能な保存手段です。
// ホスト側のストレージ（ファイル、ブラウザ設定など）への書き込みを抽象化します。
type Saver func(data []byte) error

// Store はプロセス内で共有される設定レコードの唯一の保持者なのだ。
// 読み書きはすべてミューテックスで直列化され、保存はデバウンスされるのだよ。
type Store struct {
	mu       sync.Mutex
	current  domain.Settings
	saver    Saver
	debounce time.Duration
	timer    *time.Timer
}

// NewStore はデフォルト設定で初期化された Store を生成します。
// saver が nil の場合、保存は何もしない操作になります（テスト用途）。
func NewStore(saver Saver, debounce time.Duration) *Store {
	if saver == nil {
		saver = func([]byte) error { return nil }
	}
	return &Store{
		current:  domain.DefaultSettings(),
		saver:    saver,
		debounce: debounce,
	}
}

// Load は永続化済みのJSONブロブを読み込み、デフォルト値でバックフィルするのだ。
// 既存のキーは決して上書きせず、欠けているキーだけをデフォルトで埋めるのだ。
func (s *Store) Load(raw []byte) error {
	loaded := domain.DefaultSettings()
	if len(raw) > 0 {
		// デフォルト構造体の上にデコードすることで、JSONに存在するキーだけが上書きされる
		if err := json.Unmarshal(raw, &loaded); err != nil {
			return fmt.Errorf("設定JSONのデコードに失敗したのだ: %w", err)
		}
	}
	if loaded.NumberOfImages < 1 {
		loaded.NumberOfImages = 1
	}
	if !domain.IsValidAspectRatio(loaded.AspectRatio) {
		loaded.AspectRatio = domain.DefaultSettings().AspectRatio
	}
	if loaded.Gallery == nil {
		loaded.Gallery = []domain.GalleryEntry{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = loaded
	return nil
}

// Snapshot は現在の設定の防御的コピーを返します。
func (s *Store) Snapshot() domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update は設定をその場で書き換え、デバウンス保存を予約します。
func (s *Store) Update(fn func(*domain.Settings)) {
	s.mu.Lock()
	fn(&s.current)
	s.mu.Unlock()
	s.scheduleSave()
}

// Apply は部分的なパッチ設定をマージするのだ。
// ゼロ値でないフィールドだけが現在値を上書きする（CLIフラグの反映用）。
func (s *Store) Apply(patch domain.Settings) error {
	patch.Gallery = nil // ギャラリーはパッチ経由では触らせない

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := mergo.Merge(&s.current, patch, mergo.WithOverride); err != nil {
		return fmt.Errorf("設定パッチのマージに失敗したのだ: %w", err)
	}
	return nil
}

// Flush は保留中のデバウンスを破棄して即時保存します。
func (s *Store) Flush() error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	data, err := json.MarshalIndent(s.current, "", "  ")
	saver := s.saver
	s.mu.Unlock()

	if err != nil {
		return fmt.Errorf("設定のエンコードに失敗したのだ: %w", err)
	}
	return saver(data)
}

// scheduleSave は保存をデバウンス付きで予約するのだ。
// 既に予約済みならタイマーを巻き戻すだけなのだ。
func (s *Store) scheduleSave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.debounce <= 0 {
		// デバウンス無効時は同期保存にフォールバック
		go s.Flush() //nolint:errcheck
		return
	}
	if s.timer != nil {
		s.timer.Reset(s.debounce)
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.Flush() //nolint:errcheck
	})
}
