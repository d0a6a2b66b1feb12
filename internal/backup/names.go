package backup

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hongminglow/dbgate/internal/common"
)

// Extension is appended to a backup name to form its file name.
const Extension = ".sql"

const partialSuffix = ".partial"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// ValidateName rejects names that could escape the backup directory or
// collide with temporary files.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) || strings.Contains(name, "..") || strings.HasSuffix(name, partialSuffix) {
		return common.ErrInvalidBackupName
	}
	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+Extension)
}
