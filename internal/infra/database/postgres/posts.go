package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

func (r *PGRepo) posts() string   { return fmt.Sprintf("%s.posts", r.schema) }
func (r *PGRepo) members() string { return fmt.Sprintf("%s.members", r.schema) }

func (r *PGRepo) CreatePost(ctx context.Context, author domain.MemberID, slug, title, content string) (domain.Post, error) {
	q := r.qb().Insert(r.posts()).
		Columns("author_uuid", "slug", "title", "content").
		Values(author, slug, title, content).
		Suffix("RETURNING id, author_uuid, slug, title, content, view_count, created_at, updated_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreatePost", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var p domain.Post
	if err := row.Scan(&p.ID, &p.AuthorUUID, &p.Slug, &p.Title, &p.Content, &p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		r.logger.Printf("CreatePost scan error after %s: %v", time.Since(start), err)
		return domain.Post{}, mapPGErr(err)
	}
	r.logger.Printf("CreatePost ok in %s slug=%s", time.Since(start), p.Slug)
	return p, nil
}

// PostBySlug — вместе с автором (uuid + username)
func (r *PGRepo) PostBySlug(ctx context.Context, slug string) (domain.Post, error) {
	q := r.qb().Select(
		"p.id", "p.author_uuid", "m.username", "p.slug", "p.title", "p.content",
		"p.view_count", "p.created_at", "p.updated_at",
	).From(r.posts() + " p").
		Join(r.members() + " m ON m.uuid = p.author_uuid").
		Where(sq.Eq{"p.slug": slug})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("PostBySlug", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var p domain.Post
	if err := row.Scan(&p.ID, &p.AuthorUUID, &p.AuthorName, &p.Slug, &p.Title, &p.Content,
		&p.ViewCount, &p.CreatedAt, &p.UpdatedAt); err != nil {
		r.logger.Printf("PostBySlug scan error after %s: %v", time.Since(start), err)
		return domain.Post{}, mapPGErr(err)
	}
	r.logger.Printf("PostBySlug ok in %s slug=%s", time.Since(start), slug)
	return p, nil
}

// IncrementViews: bulk-апдейт счётчика, updated_at не трогаем.
// false — поста с таким slug нет.
func (r *PGRepo) IncrementViews(ctx context.Context, slug string) (bool, error) {
	q := r.qb().Update(r.posts()).
		Set("view_count", sq.Expr("view_count + 1")).
		Where(sq.Eq{"slug": slug})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("IncrementViews", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("IncrementViews exec error after %s: %v", time.Since(start), err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) UpdatePost(ctx context.Context, slug string, title, content *string) error {
	set := map[string]any{"updated_at": sq.Expr("now()")}
	if title != nil {
		set["title"] = *title
	}
	if content != nil {
		set["content"] = *content
	}

	q := r.qb().Update(r.posts()).SetMap(set).Where(sq.Eq{"slug": slug})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UpdatePost", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("UpdatePost exec error after %s: %v", time.Since(start), err)
		return mapPGErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("UpdatePost ok in %s slug=%s", time.Since(start), slug)
	return nil
}

func (r *PGRepo) DeletePost(ctx context.Context, slug string) error {
	q := r.qb().Delete(r.posts()).Where(sq.Eq{"slug": slug})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeletePost", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeletePost exec error after %s: %v", time.Since(start), err)
		return mapPGErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logger.Printf("DeletePost ok in %s slug=%s", time.Since(start), slug)
	return nil
}

// ListPosts: свежие сверху, порядок стабилизирован вторичным ключом id
func (r *PGRepo) ListPosts(ctx context.Context, page, size int) (domain.PostPage, error) {
	if size < 1 {
		size = 1
	}
	if size > 20 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	var total int64
	cq := r.qb().Select("COUNT(*)").From(r.posts())
	sqlStr, args, _ := cq.ToSql()
	r.logSQL("ListPosts.count", sqlStr, args)
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		r.logger.Printf("ListPosts count error: %v", err)
		return domain.PostPage{}, err
	}

	q := r.qb().Select("p.slug", "p.title", "m.username", "p.view_count", "p.created_at").
		From(r.posts() + " p").
		Join(r.members() + " m ON m.uuid = p.author_uuid").
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(uint64(size)).
		Offset(uint64(page * size))

	sqlStr, args, _ = q.ToSql()
	r.logSQL("ListPosts", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ListPosts query error after %s: %v", time.Since(start), err)
		return domain.PostPage{}, err
	}
	defer rows.Close()

	out := domain.PostPage{Page: page, Size: size, TotalElements: total, Posts: []domain.PostSummary{}}
	for rows.Next() {
		var s domain.PostSummary
		if err := rows.Scan(&s.Slug, &s.Title, &s.AuthorName, &s.ViewCount, &s.CreatedAt); err != nil {
			r.logger.Printf("ListPosts scan error: %v", err)
			return domain.PostPage{}, err
		}
		out.Posts = append(out.Posts, s)
	}
	if err := rows.Err(); err != nil {
		return domain.PostPage{}, err
	}

	out.TotalPages = int((total + int64(size) - 1) / int64(size))
	out.HasNext = page+1 < out.TotalPages
	out.HasPrevious = page > 0
	r.logger.Printf("ListPosts ok in %s page=%d size=%d total=%d", time.Since(start), page, size, total)
	return out, nil
}
