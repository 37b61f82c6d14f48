package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/debemdeboas/archive-comments/internal/cache"
	"github.com/debemdeboas/archive-comments/internal/db"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/util/compression"
)

const commentColumns = `id, page_key, rid, nick, email, link, content, is_admin, created_at`

type DBCommentRepository struct { // implements CommentRepository
	commentCache *cache.Cache[model.CommentID, *model.Comment]

	mu             sync.RWMutex
	insertNotifier func(model.Comment)

	db         db.DB
	compressor compression.Compressor
}

func NewDBCommentRepository(db db.DB) *DBCommentRepository {
	return &DBCommentRepository{
		commentCache: cache.NewCache[model.CommentID, *model.Comment](),

		db: db,

		compressor: compression.ZstdCompressor{},
	}
}

func (r *DBCommentRepository) SetInsertNotifier(notifier func(model.Comment)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertNotifier = notifier
}

func (r *DBCommentRepository) Create(c *model.Comment) error {
	compressed, err := r.compress(c.Content)
	if err != nil {
		return err
	}

	var parent *model.Comment
	if c.RID != 0 {
		parent, err = r.Get(c.RID)
		if err != nil {
			return err
		}
	}

	tx, err := r.db.Get().Begin()
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	createdAt := time.Now().UTC()
	res, err := tx.Exec(
		`INSERT INTO comments (page_key, rid, nick, email, link, content, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.PageKey, int64(c.RID), c.Nick, c.Email, c.Link, compressed, c.IsAdmin, createdAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("error reading comment id: %w", err)
	}

	if parent != nil && parent.Email != "" && !strings.EqualFold(parent.Email, c.Email) {
		_, err = tx.Exec(
			`INSERT INTO notifies (email, comment_id, page_key, created_at) VALUES (?, ?, ?, ?)`,
			parent.Email, id, c.PageKey, createdAt,
		)
		if err != nil {
			return fmt.Errorf("error inserting notify: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing comment: %w", err)
	}

	c.ID = model.CommentID(id)
	c.CreatedAt = createdAt
	stored := *c
	r.commentCache.Set(c.ID, &stored)

	repoLogger.Info().Int64("id", id).Str("page_key", c.PageKey).Int64("rid", int64(c.RID)).Msg("Comment created")

	r.mu.RLock()
	notifier := r.insertNotifier
	r.mu.RUnlock()
	if notifier != nil {
		notifier(stored)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *DBCommentRepository) scanComment(s scanner) (*model.Comment, error) {
	var c model.Comment
	var id, rid int64
	var compressed []byte

	if err := s.Scan(&id, &c.PageKey, &rid, &c.Nick, &c.Email, &c.Link, &compressed, &c.IsAdmin, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID = model.CommentID(id)
	c.RID = model.CommentID(rid)

	if len(compressed) > 0 {
		content, err := compression.Unpack(compressed)
		if err != nil {
			return nil, fmt.Errorf("error decompressing comment %d: %w", id, err)
		}
		c.Content = string(content)
	}
	return &c, nil
}

func (r *DBCommentRepository) compress(content string) ([]byte, error) {
	if content == "" {
		return []byte{}, nil
	}
	compressed, err := r.compressor.Compress([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("error compressing comment: %w", err)
	}
	return compressed, nil
}

func (r *DBCommentRepository) Get(id model.CommentID) (*model.Comment, error) {
	if c, ok := r.commentCache.Get(id); ok {
		cp := *c
		return &cp, nil
	}

	row := r.db.QueryRow(`SELECT `+commentColumns+` FROM comments WHERE id = ?`, int64(id))
	c, err := r.scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrCommentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading comment %d: %w", id, err)
	}

	stored := *c
	r.commentCache.Set(id, &stored)
	return c, nil
}

func (r *DBCommentRepository) List(pageKey string) ([]model.Comment, error) {
	rows, err := r.db.Query(`SELECT `+commentColumns+` FROM comments WHERE page_key = ? ORDER BY id`, pageKey)
	if err != nil {
		return nil, fmt.Errorf("error querying comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		c, err := r.scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}

func (r *DBCommentRepository) LatestByEmail(email string) (*model.Comment, error) {
	row := r.db.QueryRow(
		`SELECT `+commentColumns+` FROM comments WHERE email = ? COLLATE NOCASE ORDER BY id DESC LIMIT 1`,
		email,
	)
	c, err := r.scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no comment by %s", ErrCommentNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading latest comment: %w", err)
	}
	return c, nil
}

func (r *DBCommentRepository) UnreadNotifies(email string) ([]model.Notify, error) {
	rows, err := r.db.Query(
		`SELECT id, comment_id, page_key, is_read, created_at FROM notifies
		WHERE email = ? COLLATE NOCASE AND is_read = 0 ORDER BY id`,
		email,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying notifies: %w", err)
	}
	defer rows.Close()

	notifies := make([]model.Notify, 0)
	for rows.Next() {
		var n model.Notify
		var commentID int64
		if err := rows.Scan(&n.ID, &commentID, &n.PageKey, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning notify: %w", err)
		}
		n.CommentID = model.CommentID(commentID)
		notifies = append(notifies, n)
	}
	return notifies, rows.Err()
}

// MarkRead marks the given notifies of email as read, or all of them when no
// ids are given.
func (r *DBCommentRepository) MarkRead(email string, ids ...int64) error {
	query := `UPDATE notifies SET is_read = 1 WHERE email = ? COLLATE NOCASE`
	args := []any{email}
	if len(ids) > 0 {
		query += ` AND id IN (?` + strings.Repeat(`, ?`, len(ids)-1) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}

	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("error marking notifies read: %w", err)
	}
	return nil
}
