package core

import (
	"context"

	"github.com/Evgen-Mutagen/finances/internal/model"
)

type (
	AuthService interface {
		Login(ctx context.Context, email, password string) (string, error)
		Authorize(tokenString string) (*model.Identity, error)
	}

	UserService interface {
		CreateUser(ctx context.Context, in model.CreateUserInput) (*model.User, error)
		GetUser(ctx context.Context, id string) (*model.User, error)
		GetUserByEmail(ctx context.Context, email string) (*model.User, error)
		ListUsers(ctx context.Context) ([]*model.User, error)
		UpdateUser(ctx context.Context, id string, in model.UpdateUserInput) (*model.User, error)
		DeleteUser(ctx context.Context, id string) error
		ValidateCredential(ctx context.Context, email, password string) (bool, error)
	}

	LedgerService interface {
		CreateReceive(ctx context.Context, in model.CreateReceiveInput) (*model.Receive, error)
		ListReceives(ctx context.Context, userID, date string) ([]*model.Receive, error)
		ListAllReceives(ctx context.Context) ([]*model.Receive, error)
		GetReceive(ctx context.Context, id string) (*model.Receive, error)
		UpdateReceive(ctx context.Context, id string, in model.UpdateReceiveInput) (*model.Receive, error)
		DeleteReceive(ctx context.Context, id string) error
	}
)
