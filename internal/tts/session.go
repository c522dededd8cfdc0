package tts

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/example/supertonic-go/internal/onnx"
	"github.com/example/supertonic-go/internal/text"
	"github.com/example/supertonic-go/internal/voice"
)

// Session holds everything the façade needs after the one-shot asset load:
// config, codepoint indexer, four inference graphs, and the voice style
// store. It is immutable after Init returns and safe for concurrent use.
type Session struct {
	Config  Config
	Indexer *text.Indexer
	Engine  *onnx.Engine
	Voices  *voice.Store
}

var (
	sessionOnce sync.Once
	session     *Session
	sessionErr  error
)

// InitOnce lazy-loads tts.json, unicode_indexer.json, the four ONNX
// sessions, and constructs the voice style store from assetRoot. It
// converges concurrent first-use callers to a single load: the global is
// set once and never replaced. There is no teardown.
func InitOnce(assetRoot string, runtimeCfg onnx.RunnerConfig) (*Session, error) {
	sessionOnce.Do(func() {
		session, sessionErr = buildSession(assetRoot, runtimeCfg)
	})

	if sessionErr != nil {
		return nil, sessionErr
	}

	return session, nil
}

func buildSession(assetRoot string, runtimeCfg onnx.RunnerConfig) (*Session, error) {
	cfg, err := LoadConfig(filepath.Join(assetRoot, "tts.json"))
	if err != nil {
		return nil, err
	}

	indexer, err := text.LoadIndexer(filepath.Join(assetRoot, "unicode_indexer.json"))
	if err != nil {
		return nil, newError(ConfigError, "InitOnce", fmt.Errorf("load codepoint indexer: %w", err))
	}

	engine, err := onnx.NewEngineFromAssetRoot(assetRoot, runtimeCfg)
	if err != nil {
		return nil, newError(ConfigError, "InitOnce", fmt.Errorf("load inference sessions: %w", err))
	}

	styles := voice.NewStore(filepath.Join(assetRoot, "voice_styles"))

	return &Session{
		Config:  cfg,
		Indexer: indexer,
		Engine:  engine,
		Voices:  styles,
	}, nil
}

// resetForTest clears the single-init guard so package tests can exercise
// InitOnce repeatedly with different asset roots. Test-only.
func resetForTest() {
	sessionOnce = sync.Once{}
	session = nil
	sessionErr = nil
}
