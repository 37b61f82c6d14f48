package composer

import "github.com/debemdeboas/archive-comments/internal/model"

// ReplyTracker holds the comment being replied to and drives its affordance.
type ReplyTracker struct {
	view   View
	target *model.CommentRef
}

func newReplyTracker(view View) *ReplyTracker {
	return &ReplyTracker{view: view}
}

func (r *ReplyTracker) Target() *model.CommentRef {
	if r.target == nil {
		return nil
	}
	t := *r.target
	return &t
}

func (r *ReplyTracker) SetReply(target model.CommentRef) {
	if r.target != nil {
		r.CancelReply()
	}

	r.view.ShowReply("@" + target.Nick)
	r.target = &target

	r.view.ScrollIntoView()
	r.view.Focus()
}

// CancelReply drops the target. It is safe to call without an active reply.
func (r *ReplyTracker) CancelReply() {
	if r.target == nil {
		return
	}
	r.view.HideReply()
	r.target = nil
}

func (r *ReplyTracker) rid() model.CommentID {
	if r.target == nil {
		return 0
	}
	return r.target.ID
}
