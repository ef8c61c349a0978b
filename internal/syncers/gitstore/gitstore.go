// Package gitstoresyncer keeps directive CSV files in a local git repository,
// committing every dump so the data carries its own history.
package gitstoresyncer

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

//go:embed manifest.yaml
var ManifestYAML []byte

// Summary is the one-line description shown by syncer listings.
const Summary = "git repository of CSV files, one commit per dump"

const (
	defaultAuthorName  = "sgtool"
	defaultAuthorEmail = "sgtool@localhost"
)

// Syncer maps directive NAME onto NAME.csv inside a git worktree. Dumps
// overwrite the file and commit it; loads read the worktree copy.
type Syncer struct {
	syncer.Base `mapstructure:",squash"`

	Directory   string `mapstructure:"directory" validate:"required"`
	AuthorName  string `mapstructure:"author_name"`
	AuthorEmail string `mapstructure:"author_email"`

	repo *git.Repository
}

// New returns an unconfigured gitstore syncer.
func New() syncer.Syncer {
	return &Syncer{}
}

var (
	_ syncer.Syncer    = (*Syncer)(nil)
	_ syncer.Finalizer = (*Syncer)(nil)
)

// Finalize opens the repository at the configured directory, initializing a
// fresh one when none exists yet. A second call on an open instance is a
// no-op.
func (s *Syncer) Finalize(context.Context) error {
	if s.repo != nil {
		return nil
	}

	repo, err := git.PlainOpen(s.Directory)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(s.Directory, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", s.Directory, err)
		}
		repo, err = git.PlainInit(s.Directory, false)
		if err != nil {
			return fmt.Errorf("init repository %s: %w", s.Directory, err)
		}
		s.Log().Debug().Str("directory", s.Directory).Msg("initialized repository")
	} else if err != nil {
		return fmt.Errorf("open repository %s: %w", s.Directory, err)
	}

	s.repo = repo
	return nil
}

// Load reads the worktree copy of the directive's file. Cell values come back
// as strings, the CSV decoding behavior.
func (s *Syncer) Load(_ context.Context, directive string) ([]syncer.Record, error) {
	f, err := os.Open(s.path(directive))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.path(directive), err)
	}
	defer f.Close()

	rows, err := syncer.ReadCSV(f, 0)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path(directive), err)
	}
	return rows, nil
}

// Dump writes the directive's file and commits it. Content identical to the
// last commit leaves history unchanged. An empty dump logs a warning and
// commits nothing.
func (s *Syncer) Dump(_ context.Context, directive string, rows []syncer.Record) error {
	name := directive + ".csv"
	if len(rows) == 0 {
		s.Log().Warn().Str("file", name).Msg("no rows to dump")
		return nil
	}

	f, err := os.Create(s.path(directive))
	if err != nil {
		return fmt.Errorf("create %s: %w", s.path(directive), err)
	}
	if err := syncer.WriteCSV(f, rows, 0); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", s.path(directive), err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return s.commit(name, len(rows))
}

func (s *Syncer) commit(name string, nrows int) error {
	wt, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree %s: %w", s.Directory, err)
	}
	if _, err := wt.Add(name); err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}

	message := fmt.Sprintf("sgtool: dump %s (%d rows)", name, nrows)
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.authorName(),
			Email: s.authorEmail(),
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		s.Log().Debug().Str("file", name).Msg("content unchanged, nothing to commit")
		return nil
	}
	if err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}

	s.Log().Debug().Str("file", name).Str("commit", hash.String()[:8]).Msg("committed dump")
	return nil
}

func (s *Syncer) path(directive string) string {
	return filepath.Join(s.Directory, directive+".csv")
}

func (s *Syncer) authorName() string {
	if s.AuthorName != "" {
		return s.AuthorName
	}
	return defaultAuthorName
}

func (s *Syncer) authorEmail() string {
	if s.AuthorEmail != "" {
		return s.AuthorEmail
	}
	return defaultAuthorEmail
}
