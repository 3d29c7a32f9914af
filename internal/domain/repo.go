package domain

import "context"

type MembersRepo interface {
	Close()
	Ping(context.Context) error
	CreateMember(ctx context.Context, email, passHash, username string, role Role) (Member, error)
	MemberByEmail(ctx context.Context, email string) (Member, error)
	MemberByUUID(ctx context.Context, id MemberID) (Member, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	UpdateUsername(ctx context.Context, id MemberID, username string) error
	UpdatePassword(ctx context.Context, id MemberID, passHash string) error
	DeleteMember(ctx context.Context, id MemberID) error
}

type PostsRepo interface {
	// CreatePost возвращает ErrConflict при гонке по уникальному slug —
	// хендлер повторяет с новым суффиксом.
	CreatePost(ctx context.Context, author MemberID, slug, title, content string) (Post, error)
	// PostBySlug — вместе с автором (uuid + username)
	PostBySlug(ctx context.Context, slug string) (Post, error)
	// IncrementViews: +1 атомарно; false — поста нет
	IncrementViews(ctx context.Context, slug string) (bool, error)
	UpdatePost(ctx context.Context, slug string, title, content *string) error
	DeletePost(ctx context.Context, slug string) error
	ListPosts(ctx context.Context, page, size int) (PostPage, error)
}
