package services

import (
	"context"

	userrepo "github.com/VAshish07243/Chai-Shots/internal/data/repos/user"
	"github.com/VAshish07243/Chai-Shots/internal/domain/user"
	"github.com/VAshish07243/Chai-Shots/internal/pkg/logger"
)

type UserService interface {
	List(ctx context.Context) ([]*user.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo userrepo.UserRepo
}

func NewUserService(log *logger.Logger, userRepo userrepo.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) List(ctx context.Context) ([]*user.User, error) {
	return us.userRepo.List(ctx, nil)
}
