package auth

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/models"
)

type usersFile struct {
	Users []struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Email    string `yaml:"email"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// SeedFromFile registers the users listed in a YAML file. Entries whose
// username or email is taken are skipped, so seeding is repeatable.
func (s *Service) SeedFromFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for _, u := range uf.Users {
		role := u.Role
		if role == "" {
			role = models.NormalUser
		}
		if !models.ValidRole(role) {
			return created, fmt.Errorf("seed user %q: unknown role %q", u.Username, role)
		}
		_, err := s.register(ctx, u.Username, u.Password, u.Email, role)
		switch {
		case err == nil:
			created++
		case errors.Is(err, common.ErrDuplicateUser):
		default:
			return created, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}
	return created, nil
}
