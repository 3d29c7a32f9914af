package post

import (
	"log"

	"github.com/Ozymandias089/devlog-api/internal/domain"
)

type Handler struct {
	Log   *log.Logger
	Posts domain.PostsRepo
}
