package composer

import (
	"context"
	"sync"
	"time"

	"github.com/debemdeboas/archive-comments/internal/bus"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/user"
)

type notification struct {
	msg string
	typ model.NotifyType
}

type fakeView struct {
	mu sync.Mutex

	placeholder string
	sendButton  string
	fields      map[model.ProfileField]string

	content      string
	caret        int
	heightAdjust int
	focus        int
	scrolls      int

	inputVisible  bool
	bottomVisible bool
	bannerVisible bool

	toggles          []string
	active           map[string]bool
	mounted          map[string]Panel
	mounts           map[string]int
	panelVisible     map[string]bool
	containerVisible bool

	replyLabel string
	replyShown bool

	loading      int
	loadingShown int
	notes        []notification
}

func newFakeView() *fakeView {
	return &fakeView{
		fields:        make(map[model.ProfileField]string),
		active:        make(map[string]bool),
		mounted:       make(map[string]Panel),
		mounts:        make(map[string]int),
		panelVisible:  make(map[string]bool),
		inputVisible:  true,
		bottomVisible: true,
	}
}

func (v *fakeView) SetPlaceholder(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.placeholder = text
}

func (v *fakeView) SetSendButtonText(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sendButton = text
}

func (v *fakeView) SetFieldValue(field model.ProfileField, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.fields[field] = value
}

func (v *fakeView) RenderContent(text string, caret int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.content = text
	v.caret = caret
}

func (v *fakeView) AdjustHeight() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.heightAdjust++
}

func (v *fakeView) Focus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focus++
}

func (v *fakeView) ScrollIntoView() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrolls++
}

func (v *fakeView) SetInputVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.inputVisible = visible
}

func (v *fakeView) SetBottomVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bottomVisible = visible
}

func (v *fakeView) SetClosedBannerVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.bannerVisible = visible
}

func (v *fakeView) AddPluginToggle(name, markup string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = append(v.toggles, name)
}

func (v *fakeView) SetActiveToggle(name string, active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.active[name] = active
}

func (v *fakeView) MountPanel(name string, panel Panel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted[name] = panel
	v.mounts[name]++
}

func (v *fakeView) SetPanelVisible(name string, visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panelVisible[name] = visible
}

func (v *fakeView) SetPanelContainerVisible(visible bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.containerVisible = visible
}

func (v *fakeView) ClearPanels() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.mounted = make(map[string]Panel)
	v.panelVisible = make(map[string]bool)
}

func (v *fakeView) ResetPlugins() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.toggles = nil
	v.active = make(map[string]bool)
	v.mounted = make(map[string]Panel)
	v.panelVisible = make(map[string]bool)
}

func (v *fakeView) ShowReply(label string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.replyLabel = label
	v.replyShown = true
}

func (v *fakeView) HideReply() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.replyLabel = ""
	v.replyShown = false
}

func (v *fakeView) ShowLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading++
	v.loadingShown++
}

func (v *fakeView) HideLoading() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading--
}

func (v *fakeView) Notify(msg string, typ model.NotifyType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notes = append(v.notes, notification{msg: msg, typ: typ})
}

func (v *fakeView) visiblePanels() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []string
	for name, visible := range v.panelVisible {
		if _, ok := v.mounted[name]; ok && visible && v.containerVisible {
			out = append(out, name)
		}
	}
	return out
}

func (v *fakeView) notifications() []notification {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]notification(nil), v.notes...)
}

type lookupCall struct {
	ctx   context.Context
	nick  string
	email string
}

type fakeTransport struct {
	mu sync.Mutex

	lookups  []lookupCall
	lookupFn func(ctx context.Context, nick, email string) (*model.IdentityResult, error)

	payloads []model.CommentPayload
	createFn func(ctx context.Context, payload model.CommentPayload) (*model.Comment, error)
}

func (t *fakeTransport) LookupIdentity(ctx context.Context, nick, email string) (*model.IdentityResult, error) {
	t.mu.Lock()
	t.lookups = append(t.lookups, lookupCall{ctx: ctx, nick: nick, email: email})
	fn := t.lookupFn
	t.mu.Unlock()

	if fn == nil {
		return &model.IdentityResult{}, nil
	}
	return fn(ctx, nick, email)
}

func (t *fakeTransport) CreateComment(ctx context.Context, payload model.CommentPayload) (*model.Comment, error) {
	t.mu.Lock()
	t.payloads = append(t.payloads, payload)
	fn := t.createFn
	t.mu.Unlock()

	if fn == nil {
		return &model.Comment{ID: 1, Content: payload.Content, Nick: payload.Nick, RID: payload.RID}, nil
	}
	return fn(ctx, payload)
}

func (t *fakeTransport) lookupCalls() []lookupCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]lookupCall(nil), t.lookups...)
}

func (t *fakeTransport) createCalls() []model.CommentPayload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.CommentPayload(nil), t.payloads...)
}

type memStorage struct {
	mu   sync.Mutex
	data map[string]string
	err  error
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (s *memStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", false, s.err
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.data[key] = value
	return nil
}

func (s *memStorage) value(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key]
}

type fakeTimer struct {
	clock   *fakeClock
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock hands out timers that only fire when the test says so.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, f func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every timer that has not been stopped yet.
func (c *fakeClock) fire() {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func (c *fakeClock) stoppedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.stopped {
			n++
		}
	}
	return n
}

type recorder struct {
	mu     sync.Mutex
	events []bus.Topic
	last   map[bus.Topic]any
}

func record(b *bus.Bus, topics ...bus.Topic) *recorder {
	r := &recorder{last: make(map[bus.Topic]any)}
	for _, topic := range topics {
		b.Subscribe(topic, func(payload any) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, topic)
			r.last[topic] = payload
		})
	}
	return r
}

func (r *recorder) topics() []bus.Topic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bus.Topic(nil), r.events...)
}

func (r *recorder) payload(topic bus.Topic) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.last[topic]
	return p, ok
}

type serverError struct{ msg string }

func (e *serverError) Error() string         { return "server error: " + e.msg }
func (e *serverError) ServerMessage() string { return e.msg }

// testPlugin records its lifecycle and optionally upper-cases the draft.
type testPlugin struct {
	name      string
	transform func(string) string

	mu      sync.Mutex
	shows   int
	hides   int
	changes []string
}

func (p *testPlugin) Name() string         { return p.name }
func (p *testPlugin) ToggleMarkup() string { return "[" + p.name + "]" }
func (p *testPlugin) Panel() Panel         { return PanelFunc(func() string { return p.name + " panel" }) }

func (p *testPlugin) OnShow() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shows++
}

func (p *testPlugin) OnHide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hides++
}

func (p *testPlugin) counts() (shows, hides int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shows, p.hides
}

type transformingPlugin struct {
	*testPlugin
}

func (p transformingPlugin) Transform(content string) string {
	return p.transform(content)
}

type observingPlugin struct {
	*testPlugin
}

func (p observingPlugin) ContentChanged(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, content)
}

type harness struct {
	editor    *Editor
	view      *fakeView
	bus       *bus.Bus
	transport *fakeTransport
	storage   *memStorage
	session   *user.Session
	clock     *fakeClock
}

func newHarness(opts Options, setup ...func(h *harness)) *harness {
	h := &harness{
		view:      newFakeView(),
		bus:       bus.New(),
		transport: &fakeTransport{},
		storage:   newMemStorage(),
		clock:     &fakeClock{},
	}
	for _, f := range setup {
		f(h)
	}
	if h.session == nil {
		h.session = user.NewSession(h.storage, "profile")
	}
	h.editor = NewEditor(h.view, h.bus, h.transport, h.session, h.storage, opts)
	h.editor.identity.afterFunc = h.clock.afterFunc
	return h
}
