package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/Evgen-Mutagen/finances/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerService owns receives and is the only code that moves a user's
// balance because of them.
//
// With compensate unset, only CreateReceive touches the balance: editing or
// deleting a receive leaves the owner's balance as it was. With compensate
// set, UpdateReceive and DeleteReceive apply the difference in effect inside
// the same transaction.
type LedgerService struct {
	store      repository.Store
	logger     *zap.Logger
	compensate bool
}

func NewLedgerService(store repository.Store, logger *zap.Logger, compensate bool) *LedgerService {
	return &LedgerService{
		store:      store,
		logger:     logger,
		compensate: compensate,
	}
}

var _ core.LedgerService = (*LedgerService)(nil)

func (s *LedgerService) CreateReceive(ctx context.Context, in model.CreateReceiveInput) (*model.Receive, error) {
	if err := validateCreateReceive(in); err != nil {
		return nil, err
	}

	receive := &model.Receive{
		ID:          uuid.NewString(),
		Description: strings.TrimSpace(in.Description),
		Value:       in.Value,
		Type:        model.ReceiveType(in.Type),
		Date:        strings.TrimSpace(in.Date),
		UserID:      strings.TrimSpace(in.UserID),
	}

	var balance decimal.Decimal
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		owner, err := repos.Users().GetByIDForUpdate(ctx, receive.UserID)
		if err != nil {
			return userLookupError(err)
		}

		if !receive.Type.Valid() {
			return core.NewValidationError("type", errInvalidTransactionType)
		}

		if err := repos.Receives().Create(ctx, receive); err != nil {
			return fmt.Errorf("failed to create receive: %w", err)
		}

		balance = owner.Balance.Add(receive.Effect())
		if err := checkBalance(balance); err != nil {
			return err
		}
		if err := repos.Users().UpdateBalance(ctx, owner.ID, balance); err != nil {
			return fmt.Errorf("failed to update balance: %w", err)
		}

		receive.User = &model.UserRef{ID: owner.ID, Name: owner.Name, Email: owner.Email}
		return nil
	})
	if err != nil {
		s.logFailure("Create receive failed", err, zap.String("user_id", receive.UserID))
		return nil, err
	}

	s.logger.Info("Receive created",
		zap.String("receive_id", receive.ID),
		zap.String("user_id", receive.UserID),
		zap.String("type", string(receive.Type)),
		zap.String("value", receive.Value.String()),
		zap.String("balance", balance.String()))

	return receive, nil
}

// ListReceives reports core.ErrNoReceivesForDate instead of an empty list.
// Keys are trimmed the same way CreateReceive and UpdateReceive store them.
func (s *LedgerService) ListReceives(ctx context.Context, userID, date string) ([]*model.Receive, error) {
	receives, err := s.store.Receives().ListByUserAndDate(ctx, strings.TrimSpace(userID), strings.TrimSpace(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list receives: %w", err)
	}
	if len(receives) == 0 {
		return nil, core.ErrNoReceivesForDate
	}
	return receives, nil
}

func (s *LedgerService) ListAllReceives(ctx context.Context) ([]*model.Receive, error) {
	receives, err := s.store.Receives().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list receives: %w", err)
	}
	return receives, nil
}

func (s *LedgerService) GetReceive(ctx context.Context, id string) (*model.Receive, error) {
	receive, err := s.store.Receives().GetByID(ctx, id)
	if err != nil {
		return nil, receiveLookupError(err)
	}
	return receive, nil
}

func (s *LedgerService) UpdateReceive(ctx context.Context, id string, in model.UpdateReceiveInput) (*model.Receive, error) {
	if err := validateUpdateReceive(in); err != nil {
		return nil, err
	}

	var updated *model.Receive
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		receive, owner, err := s.loadReceive(ctx, repos, id)
		if err != nil {
			return err
		}

		before := receive.Effect()
		in.Apply(receive)

		if err := repos.Receives().Update(ctx, receive); err != nil {
			return receiveLookupError(err)
		}

		if owner != nil {
			balance := owner.Balance.Add(receive.Effect().Sub(before))
			if err := checkBalance(balance); err != nil {
				return err
			}
			if err := repos.Users().UpdateBalance(ctx, owner.ID, balance); err != nil {
				return fmt.Errorf("failed to update balance: %w", err)
			}
		}

		updated = receive
		return nil
	})
	if err != nil {
		s.logFailure("Update receive failed", err, zap.String("receive_id", id))
		return nil, err
	}

	s.logger.Info("Receive updated",
		zap.String("receive_id", updated.ID),
		zap.Bool("balance_compensated", s.compensate))

	return updated, nil
}

func (s *LedgerService) DeleteReceive(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		receive, owner, err := s.loadReceive(ctx, repos, id)
		if err != nil {
			return err
		}

		if err := repos.Receives().Delete(ctx, receive.ID); err != nil {
			return receiveLookupError(err)
		}

		if owner != nil {
			balance := owner.Balance.Sub(receive.Effect())
			if err := checkBalance(balance); err != nil {
				return err
			}
			if err := repos.Users().UpdateBalance(ctx, owner.ID, balance); err != nil {
				return fmt.Errorf("failed to update balance: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logFailure("Delete receive failed", err, zap.String("receive_id", id))
		return err
	}

	s.logger.Info("Receive deleted",
		zap.String("receive_id", id),
		zap.Bool("balance_compensated", s.compensate))

	return nil
}

// loadReceive reads the receive inside a transaction. When balances are
// compensated it also locks the owner and reads the receive again under that
// lock, so the effect being reversed is the committed one. owner is nil when
// no balance change is due.
func (s *LedgerService) loadReceive(ctx context.Context, repos repository.Repositories, id string) (*model.Receive, *model.User, error) {
	receive, err := repos.Receives().GetByID(ctx, id)
	if err != nil {
		return nil, nil, receiveLookupError(err)
	}
	if !s.compensate {
		return receive, nil, nil
	}

	owner, err := repos.Users().GetByIDForUpdate(ctx, receive.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lock owner: %w", err)
	}

	receive, err = repos.Receives().GetByID(ctx, id)
	if err != nil {
		return nil, nil, receiveLookupError(err)
	}
	return receive, owner, nil
}

func (s *LedgerService) logFailure(msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if core.Kind(err) == "internal" {
		s.logger.Error(msg, fields...)
		return
	}
	s.logger.Debug(msg, fields...)
}

func receiveLookupError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return core.ErrReceiveNotFound
	}
	return fmt.Errorf("failed to get receive: %w", err)
}
