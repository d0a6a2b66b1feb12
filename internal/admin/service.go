// Package admin implements the privileged operations of the gateway: generic
// table access and backup management. Every operation resolves the caller's
// token and requires the admin role before anything else happens.
package admin

import (
	"context"
	"fmt"

	"github.com/hongminglow/dbgate/internal/audit"
	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/logging"
	"github.com/hongminglow/dbgate/internal/models"
	"github.com/hongminglow/dbgate/internal/schema"
	"github.com/hongminglow/dbgate/internal/storage"
)

// Authorizer resolves bearer tokens and checks roles.
type Authorizer interface {
	Resolve(ctx context.Context, token string) (models.User, error)
	RequireAdmin(user models.User) error
}

// Backups is the backup lifecycle the service delegates to.
type Backups interface {
	Create(ctx context.Context, name string) (models.Backup, error)
	Delete(ctx context.Context, name string) error
	Restore(ctx context.Context, name string) error
	List(ctx context.Context) ([]models.Backup, error)
}

type Service struct {
	auth    Authorizer
	guard   *schema.Guard
	tables  storage.TableStore
	backups Backups
	audit   *audit.Recorder
	log     logging.Logger
}

func NewService(
	auth Authorizer,
	guard *schema.Guard,
	tables storage.TableStore,
	backups Backups,
	recorder *audit.Recorder,
	log logging.Logger,
) *Service {
	return &Service{
		auth:    auth,
		guard:   guard,
		tables:  tables,
		backups: backups,
		audit:   recorder,
		log:     log,
	}
}

// authorize is the first step of every operation in this package.
func (s *Service) authorize(ctx context.Context, token, op string) (models.User, error) {
	user, err := s.auth.Resolve(ctx, token)
	if err != nil {
		return models.User{}, err
	}
	if err := s.auth.RequireAdmin(user); err != nil {
		s.log.Warn(ctx, "admin operation denied", "action", op, "user_id", user.ID)
		return models.User{}, err
	}
	return user, nil
}

func unexpected(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", common.ErrUnexpected, op, err)
}
