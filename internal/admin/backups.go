package admin

import "context"

const (
	opCreateBackup  = "CREATE_BACKUP"
	opDeleteBackup  = "DELETE_BACKUP"
	opRestoreBackup = "RESTORE_BACKUP"
	opListBackups   = "LIST_BACKUPS"
)

func (s *Service) CreateBackup(ctx context.Context, token, name string) (created string, err error) {
	user, err := s.authorize(ctx, token, opCreateBackup)
	if err != nil {
		return "", err
	}
	defer func() { s.audit.Outcome(ctx, opCreateBackup, user.ID, err) }()

	b, err := s.backups.Create(ctx, name)
	if err != nil {
		return "", err
	}
	return b.Name, nil
}

func (s *Service) DeleteBackup(ctx context.Context, token, name string) (err error) {
	user, err := s.authorize(ctx, token, opDeleteBackup)
	if err != nil {
		return err
	}
	defer func() { s.audit.Outcome(ctx, opDeleteBackup, user.ID, err) }()

	return s.backups.Delete(ctx, name)
}

// RestoreBackup replaces the live database with the named artifact.
func (s *Service) RestoreBackup(ctx context.Context, token, name string) (err error) {
	user, err := s.authorize(ctx, token, opRestoreBackup)
	if err != nil {
		return err
	}
	defer func() { s.audit.Outcome(ctx, opRestoreBackup, user.ID, err) }()

	return s.backups.Restore(ctx, name)
}

func (s *Service) ListBackups(ctx context.Context, token string) (names []string, err error) {
	user, err := s.authorize(ctx, token, opListBackups)
	if err != nil {
		return nil, err
	}
	defer func() { s.audit.Outcome(ctx, opListBackups, user.ID, err) }()

	list, err := s.backups.List(ctx)
	if err != nil {
		return nil, err
	}
	names = make([]string, 0, len(list))
	for _, b := range list {
		names = append(names, b.Name)
	}
	return names, nil
}
