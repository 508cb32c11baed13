package mapper

import (
	"github.com/AlibekovAA/linkmark/internal/common/dto"
	userdomain "github.com/AlibekovAA/linkmark/internal/user/domain"
)

func UserToDTO(user userdomain.User) dto.User {
	return UserSummaryToDTO(user.Summary())
}

func UserSummaryToDTO(summary userdomain.Summary) dto.User {
	return dto.User{
		ID:        string(summary.ID),
		Email:     summary.Email,
		CreatedAt: summary.CreatedAt,
	}
}
