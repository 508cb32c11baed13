package mapper

import (
	bookmarkdomain "github.com/AlibekovAA/linkmark/internal/bookmark/domain"
	"github.com/AlibekovAA/linkmark/internal/common/dto"
)

func BookmarkToDTO(b bookmarkdomain.Bookmark) dto.Bookmark {
	return dto.Bookmark{
		ID:        int64(b.ID),
		Body:      b.Body,
		URL:       b.URL,
		ShortURL:  b.ShortCode,
		Visits:    b.Visits,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
		UserID:    string(b.UserID),
		User:      UserSummaryToDTO(b.Owner),
	}
}

func BookmarksToDTO(bookmarks []bookmarkdomain.Bookmark) []dto.Bookmark {
	out := make([]dto.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		out = append(out, BookmarkToDTO(b))
	}
	return out
}

func StatsToDTO(stats []bookmarkdomain.Stat) []dto.BookmarkStat {
	out := make([]dto.BookmarkStat, 0, len(stats))
	for _, s := range stats {
		out = append(out, dto.BookmarkStat{
			ID:        int64(s.ID),
			URL:       s.URL,
			ShortCode: s.ShortCode,
			Visits:    s.Visits,
		})
	}
	return out
}
