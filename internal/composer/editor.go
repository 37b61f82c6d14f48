// Package composer implements the comment composer: draft autosave, the
// debounced identity lookup, plugin panels, reply targeting and submission.
package composer

import (
	"strings"
	"sync"
	"time"

	"github.com/debemdeboas/archive-comments/internal/bus"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/user"
	"github.com/rs/zerolog"
)

var composerLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	composerLogger = l
}

const (
	DefaultPlaceholder = "Leave a comment..."
	DefaultSendButton  = "Send"
	DefaultDraftKey    = "ArchiveCommentDraft"

	msgDraftRestored = "Draft restored"
	msgCommentFailed = "Comment failed, "
)

type Key int

const (
	KeyTab Key = iota + 1
)

type Options struct {
	Placeholder string
	SendButton  string
	DraftKey    string
	PageKey     string
	Debounce    time.Duration
	Plugins     []PluginFactory
}

func (o *Options) applyDefaults() {
	if o.Placeholder == "" {
		o.Placeholder = DefaultPlaceholder
	}
	if o.SendButton == "" {
		o.SendButton = DefaultSendButton
	}
	if o.DraftKey == "" {
		o.DraftKey = DefaultDraftKey
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
}

// State is a snapshot of the composer.
type State struct {
	IsOpen         bool
	CommentsClosed bool
	OpenPlugin     string
	ReplyTarget    *model.CommentRef
}

// Editor owns the composer state. One mutex guards it and every component;
// bus publications and plugin callbacks queued while it is held run after it
// is released.
type Editor struct {
	mu     sync.Mutex
	outbox []func()

	view      View
	bus       *bus.Bus
	transport Transport
	session   *user.Session
	opts      Options

	drafts   *DraftStore
	identity *IdentityResolver
	plugins  *PluginHost
	reply    *ReplyTracker

	buffer   []rune
	caret    int
	selStart int
	selEnd   int

	isOpen         bool
	commentsClosed bool

	disposers []func()
	disposed  bool
}

// NewEditor builds the composer, restores the saved draft and subscribes to
// the lifecycle topics on b.
func NewEditor(view View, b *bus.Bus, transport Transport, session *user.Session, storage Storage, opts Options) *Editor {
	opts.applyDefaults()

	e := &Editor{
		view:      view,
		bus:       b,
		transport: transport,
		session:   session,
		opts:      opts,
		isOpen:    true,
	}
	e.drafts = NewDraftStore(storage, opts.DraftKey)
	e.identity = newIdentityResolver(e, transport, opts.Debounce)
	e.plugins = newPluginHost(e, view, opts.Plugins)
	e.reply = newReplyTracker(view)

	e.lock()
	view.SetPlaceholder(opts.Placeholder)
	view.SetSendButtonText(opts.SendButton)

	profile := session.Profile()
	for _, field := range []model.ProfileField{model.FieldNick, model.FieldEmail, model.FieldLink} {
		view.SetFieldValue(field, profile.Get(field))
	}

	e.plugins.init()

	if saved := e.drafts.Restore(); strings.TrimSpace(saved) != "" {
		e.setContent(saved)
		view.Notify(msgDraftRestored, model.NotifyInfo)
	}
	e.unlock()

	e.subscribe()
	return e
}

func (e *Editor) subscribe() {
	if e.bus == nil {
		return
	}
	e.disposers = append(e.disposers,
		e.bus.Subscribe(bus.EditorOpen, func(any) { e.Open() }),
		e.bus.Subscribe(bus.EditorClose, func(any) { e.Close() }),
		e.bus.Subscribe(bus.EditorReply, func(payload any) {
			if ref, ok := commentRef(payload); ok {
				e.SetReply(ref)
			}
		}),
		e.bus.Subscribe(bus.EditorShowLoading, func(any) { e.ShowLoading() }),
		e.bus.Subscribe(bus.EditorHideLoading, func(any) { e.HideLoading() }),
		e.bus.Subscribe(bus.EditorNotify, func(payload any) {
			if n, ok := payload.(bus.Notify); ok {
				e.Notify(n.Msg, n.Type)
			}
		}),
	)
}

func commentRef(payload any) (model.CommentRef, bool) {
	switch v := payload.(type) {
	case model.CommentRef:
		return v, true
	case *model.CommentRef:
		if v != nil {
			return *v, true
		}
	case *model.Comment:
		if v != nil {
			return v.Ref(), true
		}
	}
	composerLogger.Warn().Type("payload", payload).Msg("Ignoring editor-reply with unexpected payload")
	return model.CommentRef{}, false
}

func (e *Editor) lock() {
	e.mu.Lock()
}

// unlock releases the lock and then runs everything queued with later.
func (e *Editor) unlock() {
	queued := e.outbox
	e.outbox = nil
	e.mu.Unlock()

	for _, f := range queued {
		f()
	}
}

// later queues f to run once the lock is released.
func (e *Editor) later(f func()) {
	e.outbox = append(e.outbox, f)
}

func (e *Editor) publish(topic bus.Topic, payload any) {
	if e.bus == nil {
		return
	}
	e.later(func() { e.bus.Publish(topic, payload) })
}

// Dispose cancels any pending identity lookup and releases the bus
// subscriptions. It is safe to call more than once.
func (e *Editor) Dispose() {
	e.lock()
	if e.disposed {
		e.unlock()
		return
	}
	e.disposed = true
	e.identity.Stop()
	disposers := e.disposers
	e.disposers = nil
	e.unlock()

	for _, dispose := range disposers {
		dispose()
	}
}

func (e *Editor) State() State {
	e.lock()
	defer e.unlock()
	return State{
		IsOpen:         e.isOpen,
		CommentsClosed: e.commentsClosed,
		OpenPlugin:     e.plugins.Open(),
		ReplyTarget:    e.reply.Target(),
	}
}

// Content reading and writing

func (e *Editor) setContentAt(text []rune, caret int) {
	e.buffer = text
	e.caret = caret
	e.selStart, e.selEnd = caret, caret

	raw := string(text)
	e.view.RenderContent(raw, caret)
	e.view.AdjustHeight()
	e.drafts.Save(raw)
	e.notifyObservers()
}

func (e *Editor) setContent(text string) {
	runes := []rune(text)
	e.setContentAt(runes, len(runes))
}

func (e *Editor) notifyObservers() {
	observers := e.plugins.observers()
	if len(observers) == 0 {
		return
	}
	content := e.plugins.Transform(string(e.buffer))
	for _, o := range observers {
		e.later(func() { o.ContentChanged(content) })
	}
}

// Input records text typed by the user with the caret at its end.
func (e *Editor) Input(text string) {
	e.lock()
	defer e.unlock()

	e.buffer = []rune(text)
	e.caret = len(e.buffer)
	e.selStart, e.selEnd = e.caret, e.caret
	e.view.AdjustHeight()
	e.drafts.Save(text)
	e.notifyObservers()
}

func (e *Editor) SetContent(text string) {
	e.lock()
	defer e.unlock()
	e.setContent(text)
}

// Select records the selection reported by the view, in rune offsets.
func (e *Editor) Select(start, end int) {
	e.lock()
	defer e.unlock()

	n := len(e.buffer)
	start = min(max(start, 0), n)
	end = min(max(end, start), n)
	e.selStart, e.selEnd = start, end
	e.caret = end
}

func (e *Editor) insertContent(text string) {
	ins := []rune(text)
	out := make([]rune, 0, len(e.buffer)-(e.selEnd-e.selStart)+len(ins))
	out = append(out, e.buffer[:e.selStart]...)
	out = append(out, ins...)
	out = append(out, e.buffer[e.selEnd:]...)

	e.setContentAt(out, e.selStart+len(ins))
	e.view.Focus()
}

// InsertContent replaces the selection with text and moves the caret after
// it.
func (e *Editor) InsertContent(text string) {
	e.lock()
	defer e.unlock()
	e.insertContent(text)
}

// Content returns the draft after plugin transforms.
func (e *Editor) Content() string {
	e.lock()
	defer e.unlock()
	return e.plugins.Transform(string(e.buffer))
}

// ContentOriginal returns the raw draft.
func (e *Editor) ContentOriginal() string {
	e.lock()
	defer e.unlock()
	return string(e.buffer)
}

func (e *Editor) clearEditor() {
	e.setContent("")
	e.drafts.Clear()
	e.reply.CancelReply()
}

// ClearEditor empties the draft, its slot and the reply target.
func (e *Editor) ClearEditor() {
	e.lock()
	defer e.unlock()
	e.clearEditor()
}

// HandleKey handles keys the text area must not process itself and reports
// whether k was consumed.
func (e *Editor) HandleKey(k Key) bool {
	switch k {
	case KeyTab:
		e.InsertContent("\t")
		return true
	}
	return false
}

// Header fields

// SetField stores a header field edit. Changing the nick or email drops the
// credentials and schedules an identity lookup.
func (e *Editor) SetField(field model.ProfileField, value string) {
	e.lock()
	defer e.unlock()

	if !e.session.SetField(field, value) {
		return
	}
	e.saveProfile()

	if field.Identifying() {
		e.session.ClearCredentials()
		p := e.session.Profile()
		e.identity.Trigger(p.Nick, p.Email)
	}
}

func (e *Editor) saveProfile() {
	if err := e.session.Save(); err != nil {
		composerLogger.Warn().Err(err).Msg("Failed to save profile")
	}
	e.publish(bus.UserChanged, e.session.Profile())
}

func (e *Editor) applyIdentity(res *model.IdentityResult) {
	if !res.IsLogin {
		e.session.ClearCredentials()
	}

	e.publish(bus.UnreadUpdate, bus.UnreadPayload{Notifies: res.Unread})

	profile := e.session.Profile()
	if res.User != nil && res.User.IsAdmin && profile.HasBasicInfo() && !res.IsLogin {
		e.publish(bus.CheckerAdmin, bus.AdminCheck{
			Nick:      profile.Nick,
			Email:     profile.Email,
			OnSuccess: e.adminVerified,
		})
	}

	if res.User != nil && res.User.Link != "" {
		e.session.SetLink(res.User.Link)
		e.view.SetFieldValue(model.FieldLink, e.session.Profile().Link)
		if err := e.session.Save(); err != nil {
			composerLogger.Warn().Err(err).Msg("Failed to save profile")
		}
	}
}

// adminVerified stores the token obtained by a successful login challenge.
func (e *Editor) adminVerified(token string) {
	e.lock()
	defer e.unlock()

	e.session.SetCredentials(token, true)
	e.saveProfile()
}

// Plugins

func (e *Editor) TogglePlugin(name string) error {
	e.lock()
	defer e.unlock()
	return e.plugins.Toggle(name)
}

func (e *Editor) ClosePlugins() {
	e.lock()
	defer e.unlock()
	e.plugins.CloseAll()
}

func (e *Editor) ResetPlugins() {
	e.lock()
	defer e.unlock()
	e.plugins.Reset()
}

func (e *Editor) PluginNames() []string {
	e.lock()
	defer e.unlock()
	return e.plugins.Names()
}

// Reply

func (e *Editor) SetReply(target model.CommentRef) {
	e.lock()
	defer e.unlock()
	e.reply.SetReply(target)
}

func (e *Editor) CancelReply() {
	e.lock()
	defer e.unlock()
	e.reply.CancelReply()
}

// Lifecycle

// Close shows the closed banner. Non-administrators also lose the input, the
// plugin panels and the action bar.
func (e *Editor) Close() {
	e.lock()
	defer e.unlock()

	e.view.SetClosedBannerVisible(true)
	e.commentsClosed = true

	if e.session.IsAdmin() {
		e.view.SetInputVisible(true)
		e.view.SetBottomVisible(true)
		e.isOpen = true
		return
	}

	e.view.SetInputVisible(false)
	e.plugins.CloseAll()
	e.view.SetBottomVisible(false)
	e.isOpen = false
}

func (e *Editor) Open() {
	e.lock()
	defer e.unlock()

	e.view.SetClosedBannerVisible(false)
	e.view.SetInputVisible(true)
	e.view.SetBottomVisible(true)
	e.commentsClosed = false
	e.isOpen = true
}

func (e *Editor) ShowLoading() {
	e.lock()
	defer e.unlock()
	e.view.ShowLoading()
}

func (e *Editor) HideLoading() {
	e.lock()
	defer e.unlock()
	e.view.HideLoading()
}

func (e *Editor) Notify(msg string, typ model.NotifyType) {
	e.lock()
	defer e.unlock()
	e.view.Notify(msg, typ)
}
