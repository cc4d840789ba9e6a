package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/board-sync/internal/board"
	"github.com/DoyleJ11/board-sync/internal/debounce"
	"github.com/DoyleJ11/board-sync/pkg/types"
)

const (
	DefaultTranslationDelay = 320 * time.Millisecond
	NoticeUnavailable       = "Translation unavailable"
)

// Translator fetches a translation for the given source.
type Translator interface {
	Translate(ctx context.Context, req types.TranslateRequest) (types.TranslateResponse, error)
}

type CacheState int

const (
	Idle CacheState = iota
	Scheduled
	InFlight
)

func (s CacheState) String() string {
	switch s {
	case Scheduled:
		return "scheduled"
	case InFlight:
		return "in-flight"
	default:
		return "idle"
	}
}

// Token identifies one translation request. A response is applied only if
// its token is still the live one when it arrives.
type Token uint64

// TranslationCache overlays board text with translations fetched in the
// background. Content changes are debounced; identical content is never
// requested twice in a row.
type TranslationCache struct {
	translator Translator
	debouncer  *debounce.Debouncer
	log        *zap.Logger
	onNotice   func(string)
	onApplied  func()

	mu        sync.Mutex
	enabled   bool
	lang      string
	state     CacheState
	live      Token
	cancel    context.CancelFunc
	source    types.Board
	signature string
	titles    map[string]string
	texts     map[string]string
}

type CacheOption func(*TranslationCache)

func WithDelay(d time.Duration) CacheOption {
	return func(c *TranslationCache) { c.debouncer = debounce.New(d) }
}

// WithNotice receives user-visible notices such as NoticeUnavailable.
func WithNotice(fn func(string)) CacheOption {
	return func(c *TranslationCache) { c.onNotice = fn }
}

// WithApplied is called after a translation replaced the cache.
func WithApplied(fn func()) CacheOption {
	return func(c *TranslationCache) { c.onApplied = fn }
}

func WithCacheLogger(l *zap.Logger) CacheOption {
	return func(c *TranslationCache) { c.log = l.Named("translation") }
}

func NewTranslationCache(t Translator, opts ...CacheOption) *TranslationCache {
	c := &TranslationCache{
		translator: t,
		debouncer:  debounce.New(DefaultTranslationDelay),
		log:        zap.NewNop(),
		titles:     map[string]string{},
		texts:      map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enable turns the overlay on for lang and schedules a translation of
// current. Switching language drops the cache.
func (c *TranslationCache) Enable(lang string, current types.Board) {
	c.mu.Lock()
	if lang != c.lang {
		c.titles = map[string]string{}
		c.texts = map[string]string{}
		c.signature = ""
	}
	c.enabled = true
	c.lang = lang
	c.source = current.Clone()
	c.mu.Unlock()
	c.schedule()
}

// Disable turns the overlay off. A pending request is cancelled and any
// response still in flight is discarded.
func (c *TranslationCache) Disable() {
	c.debouncer.Cancel()
	c.mu.Lock()
	c.enabled = false
	c.live++
	c.state = Idle
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

func (c *TranslationCache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *TranslationCache) State() CacheState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ContentChanged records the latest board content. It is a no-op while the
// overlay is disabled apart from remembering the source.
func (c *TranslationCache) ContentChanged(b types.Board) {
	c.mu.Lock()
	c.source = b.Clone()
	enabled := c.enabled
	c.mu.Unlock()
	if enabled {
		c.schedule()
	}
}

func (c *TranslationCache) schedule() {
	c.mu.Lock()
	if c.state != InFlight {
		c.state = Scheduled
	}
	c.mu.Unlock()
	c.debouncer.Trigger(c.run)
}

// run is the debounced request. It executes on the debouncer's goroutine.
func (c *TranslationCache) run() {
	c.mu.Lock()
	if !c.enabled {
		c.mu.Unlock()
		return
	}
	sig := board.TranslationSignature(c.source.Sections)
	if sig == c.signature {
		c.state = Idle
		c.mu.Unlock()
		return
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.live++
	tok := c.live
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = InFlight
	req := types.TranslationSource(c.source, c.lang)
	c.mu.Unlock()

	resp, err := c.translator.Translate(ctx, req)
	c.complete(tok, sig, resp, err)
}

func (c *TranslationCache) complete(tok Token, sig string, resp types.TranslateResponse, err error) {
	c.mu.Lock()
	if tok != c.live {
		c.mu.Unlock()
		c.log.Debug("stale translation discarded", zap.Uint64("token", uint64(tok)))
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if !c.debouncer.Pending() {
		c.state = Idle
	} else {
		c.state = Scheduled
	}

	if err != nil {
		c.mu.Unlock()
		c.log.Warn("translation failed", zap.Error(err))
		if c.onNotice != nil {
			c.onNotice(NoticeUnavailable)
		}
		return
	}

	titles := map[string]string{}
	texts := map[string]string{}
	for _, s := range resp.Sections {
		if s.ID == "" {
			continue
		}
		if t := strings.TrimSpace(s.Title); t != "" {
			titles[s.ID] = t
		}
		for _, task := range s.Tasks {
			if task.ID == "" {
				continue
			}
			if t := strings.TrimSpace(task.Text); t != "" {
				texts[taskKey(s.ID, task.ID)] = t
			}
		}
	}
	c.titles = titles
	c.texts = texts
	c.signature = sig
	enabled := c.enabled
	c.mu.Unlock()

	if enabled && c.onApplied != nil {
		c.onApplied()
	}
}

// SectionTitle returns the translated title when the overlay is on and one
// is cached, else the source title.
func (c *TranslationCache) SectionTitle(s types.Section) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.titles[s.ID]; ok && c.enabled {
		return t
	}
	return s.Title
}

func (c *TranslationCache) TaskText(sectionID string, t types.Task) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if text, ok := c.texts[taskKey(sectionID, t.ID)]; ok && c.enabled {
		return text
	}
	return t.Text
}

func taskKey(sectionID, taskID string) string {
	return sectionID + ":" + taskID
}
