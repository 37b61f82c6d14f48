package composer

import (
	"context"
	"errors"
	"strings"

	"github.com/debemdeboas/archive-comments/internal/bus"
	"github.com/debemdeboas/archive-comments/internal/model"
)

type SubmitState int

const (
	// SubmitBlocked means nothing was sent: the draft is empty or the
	// composer is closed.
	SubmitBlocked SubmitState = iota
	SubmitSucceeded
	SubmitFailed
)

func (s SubmitState) String() string {
	switch s {
	case SubmitBlocked:
		return "blocked"
	case SubmitSucceeded:
		return "succeeded"
	case SubmitFailed:
		return "failed"
	}
	return "unknown"
}

type SubmitResult struct {
	State   SubmitState
	Comment *model.Comment
	Err     error
}

// Submit sends the draft as a new comment. Failures are reported to the user
// and returned in the result; the draft is kept. Concurrent calls are not
// coalesced.
func (e *Editor) Submit(ctx context.Context) SubmitResult {
	e.lock()
	if !e.isOpen {
		e.unlock()
		return SubmitResult{State: SubmitBlocked}
	}

	content := e.plugins.Transform(string(e.buffer))
	if strings.TrimSpace(content) == "" {
		e.view.Focus()
		e.unlock()
		return SubmitResult{State: SubmitBlocked}
	}

	profile := e.session.Profile()
	payload := model.CommentPayload{
		Content: content,
		Nick:    profile.Nick,
		Email:   profile.Email,
		Link:    profile.Link,
		RID:     e.reply.rid(),
		PageKey: e.opts.PageKey,
	}

	e.publish(bus.EditorSubmit, nil)
	e.view.ShowLoading()
	e.unlock()

	comment, err := e.transport.CreateComment(ctx, payload)

	e.lock()
	defer e.unlock()
	e.view.HideLoading()

	if err != nil {
		composerLogger.Warn().Err(err).Int64("rid", int64(payload.RID)).Msg("Comment submission failed")
		e.view.Notify(msgCommentFailed+errorMessage(err), model.NotifyError)
		return SubmitResult{State: SubmitFailed, Err: err}
	}

	e.publish(bus.ListInsert, comment)
	e.clearEditor()
	e.publish(bus.EditorSubmitted, nil)

	return SubmitResult{State: SubmitSucceeded, Comment: comment}
}

func errorMessage(err error) string {
	var sm serverMessager
	if errors.As(err, &sm) && sm.ServerMessage() != "" {
		return sm.ServerMessage()
	}
	return err.Error()
}
