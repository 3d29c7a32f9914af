package web

import "github.com/Ozymandias089/devlog-api/internal/domain"

type Repos struct {
	Members domain.MembersRepo
	Posts   domain.PostsRepo
}

type AuthDeps struct {
	Hasher domain.PasswordHasher
	Tokens domain.TokenService
}
