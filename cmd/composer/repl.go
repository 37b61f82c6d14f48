package main

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/archive-comments/internal/auth"
	"github.com/debemdeboas/archive-comments/internal/bus"
	"github.com/debemdeboas/archive-comments/internal/composer"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/tui"
	"github.com/debemdeboas/archive-comments/internal/user"
)

// backend is the part of the API client the REPL calls directly.
type backend interface {
	ListComments(ctx context.Context, pageKey string) ([]model.Comment, error)
	MarkRead(ctx context.Context, email string, ids ...int64) error
	Challenge(ctx context.Context) ([]byte, error)
	VerifyAdmin(ctx context.Context, signature []byte) (string, error)
}

// picker is implemented by plugins that insert an item chosen by key.
type picker interface {
	Pick(key string) bool
}

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorAccent)).Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorInfo))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(config.ColorError))
)

const helpText = `Type to write. Commands:
  /nick NAME  /email ADDR  /link URL   edit the commenter header
  /reply ID NICK  /cancel              reply to a comment, or stop replying
  /plugin NAME                         toggle a plugin panel
  /pick KEY                            insert an item from the open picker
  /tab  /clear                         insert a tab, clear the draft
  /send                                submit the comment
  /comments  /read                     list the page, mark replies read
  /open  /close                        reopen or close comments
  /help  /quit`

type repl struct {
	ctx     context.Context
	out     io.Writer
	outMu   sync.Mutex
	editor  *composer.Editor
	view    *tui.View
	bus     *bus.Bus
	session *user.Session
	backend backend
	pageKey string
	loadKey func() (ed25519.PrivateKey, error)

	pickMu  sync.Mutex
	pickers map[string]picker

	disposers []func()
	logins    sync.WaitGroup
}

func newREPL(ctx context.Context, out io.Writer, view *tui.View, b *bus.Bus, session *user.Session, be backend, pageKey, keyFile string) *repl {
	return &repl{
		ctx:     ctx,
		out:     out,
		view:    view,
		bus:     b,
		session: session,
		backend: be,
		pageKey: pageKey,
		loadKey: func() (ed25519.PrivateKey, error) {
			if keyFile == "" {
				return nil, fmt.Errorf("no admin key configured, pass --key")
			}
			return auth.LoadPrivateKey(keyFile)
		},
		pickers: make(map[string]picker),
	}
}

// track wraps factories so the REPL can reach plugins that pick items.
func (r *repl) track(factories []composer.PluginFactory) []composer.PluginFactory {
	wrapped := make([]composer.PluginFactory, len(factories))
	for i, f := range factories {
		wrapped[i] = func(e *composer.Editor) composer.Plugin {
			p := f(e)
			if pk, ok := p.(picker); ok {
				r.pickMu.Lock()
				r.pickers[p.Name()] = pk
				r.pickMu.Unlock()
			}
			return p
		}
	}
	return wrapped
}

func (r *repl) attach(e *composer.Editor) {
	r.editor = e
	r.disposers = append(r.disposers,
		r.bus.Subscribe(bus.CheckerAdmin, func(payload any) {
			check, ok := payload.(bus.AdminCheck)
			if !ok {
				return
			}
			r.logins.Add(1)
			go func() {
				defer r.logins.Done()
				r.login(check)
			}()
		}),
		r.bus.Subscribe(bus.UnreadUpdate, func(payload any) {
			if unread, ok := payload.(bus.UnreadPayload); ok && len(unread.Notifies) > 0 {
				r.println(infoStyle.Render(fmt.Sprintf("%d unread replies, /read to dismiss", len(unread.Notifies))))
			}
		}),
		r.bus.Subscribe(bus.ListInsert, func(payload any) {
			if c, ok := payload.(*model.Comment); ok {
				r.println(infoStyle.Render(fmt.Sprintf("Posted #%d on %s", c.ID, c.PageKey)))
			}
		}),
		r.bus.Subscribe(bus.EditorSubmitted, func(any) {
			r.editor.Notify("Comment sent", model.NotifySuccess)
		}),
	)
}

func (r *repl) dispose() {
	for _, d := range r.disposers {
		d()
	}
	r.disposers = nil
	r.logins.Wait()
}

// login answers the admin check by signing the server challenge.
func (r *repl) login(check bus.AdminCheck) {
	key, err := r.loadKey()
	if err != nil {
		r.println(errorStyle.Render("Administrator login needed: " + err.Error()))
		return
	}

	challenge, err := r.backend.Challenge(r.ctx)
	if err != nil {
		r.println(errorStyle.Render("Failed to fetch login challenge: " + err.Error()))
		return
	}
	token, err := r.backend.VerifyAdmin(r.ctx, ed25519.Sign(key, challenge))
	if err != nil {
		r.println(errorStyle.Render("Administrator login failed: " + err.Error()))
		return
	}

	check.OnSuccess(token)
	r.println(infoStyle.Render("Logged in as administrator " + check.Nick))
}

func (r *repl) println(s string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintln(r.out, s)
}

// run reads lines from in until EOF or /quit.
func (r *repl) run(in io.Reader) error {
	r.println(helpText)
	r.render()

	scanner := bufio.NewScanner(in)
	for {
		r.outMu.Lock()
		fmt.Fprint(r.out, promptStyle.Render("> "))
		r.outMu.Unlock()

		if !scanner.Scan() {
			break
		}
		if quit := r.exec(scanner.Text()); quit {
			break
		}
		r.render()
	}
	return scanner.Err()
}

func (r *repl) render() {
	frame := r.view.Render()
	r.view.Notifications()
	r.println(frame)
}

// exec runs one input line and reports whether the session should end.
func (r *repl) exec(line string) bool {
	if !strings.HasPrefix(line, "/") {
		r.write(line)
		return false
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "quit", "q":
		return true
	case "help":
		r.println(helpText)
	case "nick":
		r.editor.SetField(model.FieldNick, arg)
	case "email":
		r.editor.SetField(model.FieldEmail, arg)
	case "link":
		r.editor.SetField(model.FieldLink, arg)
	case "reply":
		r.reply(arg)
	case "cancel":
		r.editor.CancelReply()
	case "plugin":
		if err := r.editor.TogglePlugin(arg); err != nil {
			r.println(errorStyle.Render(err.Error()))
		}
	case "pick":
		r.pick(arg)
	case "tab":
		r.editor.HandleKey(composer.KeyTab)
	case "clear":
		r.editor.ClearEditor()
	case "send":
		res := r.editor.Submit(r.ctx)
		if res.State == composer.SubmitBlocked {
			r.println(infoStyle.Render("Nothing to send"))
		}
	case "comments":
		r.listComments()
	case "read":
		r.markRead()
	case "open":
		r.bus.Publish(bus.EditorOpen, nil)
	case "close":
		r.bus.Publish(bus.EditorClose, nil)
	default:
		r.println(errorStyle.Render("Unknown command /" + cmd + ", try /help"))
	}
	return false
}

// write appends a typed line to the draft.
func (r *repl) write(line string) {
	if r.editor.ContentOriginal() != "" {
		line = "\n" + line
	}
	r.editor.InsertContent(line)
}

func (r *repl) reply(arg string) {
	idText, nick, _ := strings.Cut(arg, " ")
	id, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || id <= 0 {
		r.println(errorStyle.Render("Usage: /reply ID NICK"))
		return
	}
	r.editor.SetReply(model.CommentRef{ID: model.CommentID(id), Nick: strings.TrimSpace(nick)})
}

func (r *repl) pick(key string) {
	open := r.editor.State().OpenPlugin

	r.pickMu.Lock()
	p, ok := r.pickers[open]
	r.pickMu.Unlock()

	if !ok {
		r.println(errorStyle.Render("Open a picker first, e.g. /plugin emoticons"))
		return
	}
	if !p.Pick(key) {
		r.println(errorStyle.Render("Unknown item " + key))
	}
}

func (r *repl) listComments() {
	comments, err := r.backend.ListComments(r.ctx, r.pageKey)
	if err != nil {
		r.println(errorStyle.Render("Failed to list comments: " + err.Error()))
		return
	}
	if len(comments) == 0 {
		r.println(infoStyle.Render("No comments yet"))
		return
	}
	for _, c := range comments {
		prefix := fmt.Sprintf("#%d %s", c.ID, c.Nick)
		if c.RID != 0 {
			prefix += fmt.Sprintf(" (re #%d)", c.RID)
		}
		r.println(promptStyle.Render(prefix) + " " + c.Content)
	}
}

func (r *repl) markRead() {
	email := r.session.Profile().Email
	if email == "" {
		r.println(errorStyle.Render("Set /email first"))
		return
	}
	if err := r.backend.MarkRead(r.ctx, email); err != nil {
		r.println(errorStyle.Render("Failed to mark replies read: " + err.Error()))
		return
	}
	r.println(infoStyle.Render("Replies marked read"))
}
