package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Базовые идентификаторы
type MemberID = uuid.UUID

// Роль участника (хранится строкой и в БД, и в claims токена)
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToUpper(s)) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// Участник блога
type Member struct {
	UUID      MemberID  `json:"uuid"`
	Email     string    `json:"email"`
	PassHash  string    `json:"-"` // никогда не отдаём наружу
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Пост. Slug — внешний идентификатор, неизменяемый после создания.
type Post struct {
	ID         int64     `json:"-"`
	AuthorUUID MemberID  `json:"author_uuid"`
	AuthorName string    `json:"author_username"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ViewCount  int64     `json:"view_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Краткая строка списка (без тела поста)
type PostSummary struct {
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_username"`
	ViewCount  int64     `json:"view_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Страница списка постов
type PostPage struct {
	Posts         []PostSummary `json:"posts"`
	Page          int           `json:"page"`
	Size          int           `json:"size"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	HasNext       bool          `json:"hasNext"`
	HasPrevious   bool          `json:"hasPrevious"`
}
