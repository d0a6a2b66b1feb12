package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/hongminglow/dbgate/internal/config"
)

// waitDelay bounds how long Run waits for output pipes after the child is killed.
var waitDelay = 5 * time.Second

// Runner produces and replays database dumps.
type Runner interface {
	Dump(ctx context.Context, path string) error
	Restore(ctx context.Context, path string) error
}

// PgRunner shells out to pg_dump and pg_restore using the custom archive
// format. The password is handed to each child through its own environment and
// never set on the gateway process.
type PgRunner struct {
	DumpPath    string
	RestorePath string
	Target      config.DatabaseTarget
}

func NewPgRunner(dumpPath, restorePath string, target config.DatabaseTarget) *PgRunner {
	return &PgRunner{DumpPath: dumpPath, RestorePath: restorePath, Target: target}
}

func (r *PgRunner) Dump(ctx context.Context, path string) error {
	return r.run(ctx, r.DumpPath, dumpArgs(r.Target, path))
}

func (r *PgRunner) Restore(ctx context.Context, path string) error {
	return r.run(ctx, r.RestorePath, restoreArgs(r.Target, path))
}

func (r *PgRunner) run(ctx context.Context, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	// a killed child's descendants may still hold stderr open
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), "PGPASSWORD="+r.Target.Password)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s killed: %w", bin, ctxErr)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%s exited with status %d: %s", bin, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("run %s: %w", bin, err)
	}
	return nil
}

func connArgs(t config.DatabaseTarget) []string {
	var args []string
	if t.Host != "" {
		args = append(args, "-h", t.Host)
	}
	if t.Port != 0 {
		args = append(args, "-p", strconv.Itoa(int(t.Port)))
	}
	if t.User != "" {
		args = append(args, "-U", t.User)
	}
	return args
}

func dumpArgs(t config.DatabaseTarget, path string) []string {
	args := connArgs(t)
	return append(args, "-F", "c", "-f", path, t.Database)
}

// restoreArgs runs in clean mode: conflicting objects are dropped before the
// archive is loaded.
func restoreArgs(t config.DatabaseTarget, path string) []string {
	args := append([]string{"--clean"}, connArgs(t)...)
	return append(args, "-d", t.Database, "-F", "c", path)
}
