package board

import (
	"fmt"

	"github.com/CrestNiraj12/boardhud/domain"
)

func post(num int, comment string, files ...domain.File) *domain.Post {
	return &domain.Post{Num: num, Comment: comment, Files: files}
}

func thumb(url string, w, h int) domain.File {
	return domain.File{Thumbnail: url, TnWidth: w, TnHeight: h, Type: domain.FileTypeJPG}
}

func seeded(n int) *Store {
	s := NewStore()
	for i := 1; i <= n; i++ {
		s.Ingest(post(i, fmt.Sprintf("post %d", i)))
	}
	return s
}

func nums(posts []*domain.Post) []int {
	out := make([]int, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Num)
	}
	return out
}
