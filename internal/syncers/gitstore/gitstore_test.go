package gitstoresyncer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sightglass-data/sgtool/pkg/syncer"
)

func openSyncer(t *testing.T, dir string, logOut *bytes.Buffer) *Syncer {
	t.Helper()

	s, ok := New().(*Syncer)
	require.True(t, ok)

	log := zerolog.Nop()
	if logOut != nil {
		log = zerolog.New(logOut)
	}
	s.Bind("gitstore", log)
	s.Directory = dir

	require.NoError(t, s.Finalize(context.Background()))
	return s
}

func commitCount(t *testing.T, dir string) int {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)

	head, err := repo.Head()
	if err != nil {
		return 0
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	require.NoError(t, err)

	count := 0
	require.NoError(t, iter.ForEach(func(*object.Commit) error {
		count++
		return nil
	}))
	return count
}

func headCommit(t *testing.T, dir string) *object.Commit {
	t.Helper()

	repo, err := git.PlainOpen(dir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	commit, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	return commit
}

func TestSyncer_FinalizeInitializesRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	openSyncer(t, dir, nil)

	info, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Zero(t, commitCount(t, dir))
}

func TestSyncer_DumpCommitsEachChange(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s := openSyncer(t, dir, nil)
	ctx := context.Background()

	require.NoError(t, s.Dump(ctx, "metrics", []syncer.Record{{"id": "1", "label": "alpha"}}))
	require.Equal(t, 1, commitCount(t, dir))

	require.NoError(t, s.Dump(ctx, "metrics", []syncer.Record{{"id": "2", "label": "beta"}}))
	require.Equal(t, 2, commitCount(t, dir))

	commit := headCommit(t, dir)
	require.Contains(t, commit.Message, "metrics.csv")
	require.Equal(t, "sgtool", commit.Author.Name)
	require.Equal(t, "sgtool@localhost", commit.Author.Email)
}

func TestSyncer_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s := openSyncer(t, dir, nil)
	ctx := context.Background()

	rows := []syncer.Record{
		{"id": "1", "label": "alpha"},
		{"id": "2", "label": "beta"},
	}
	require.NoError(t, s.Dump(ctx, "metrics", rows))

	got, err := s.Load(ctx, "metrics")
	require.NoError(t, err)
	require.Equal(t, rows, got)
}

func TestSyncer_IdenticalDumpLeavesHistoryUnchanged(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s := openSyncer(t, dir, nil)
	ctx := context.Background()

	rows := []syncer.Record{{"id": "1", "label": "alpha"}}
	require.NoError(t, s.Dump(ctx, "metrics", rows))
	require.NoError(t, s.Dump(ctx, "metrics", rows))
	require.Equal(t, 1, commitCount(t, dir))
}

func TestSyncer_EmptyDumpWarnsAndCommitsNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	var logOut bytes.Buffer
	s := openSyncer(t, dir, &logOut)

	require.NoError(t, s.Dump(context.Background(), "metrics", nil))
	require.Zero(t, commitCount(t, dir))
	require.NoFileExists(t, filepath.Join(dir, "metrics.csv"))
	require.Contains(t, logOut.String(), "no rows to dump")
}

func TestSyncer_CustomAuthorSignsCommits(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s := openSyncer(t, dir, nil)
	s.AuthorName = "Pipeline Bot"
	s.AuthorEmail = "bot@sightglass.example"

	require.NoError(t, s.Dump(context.Background(), "metrics", []syncer.Record{{"id": "1"}}))

	commit := headCommit(t, dir)
	require.Equal(t, "Pipeline Bot", commit.Author.Name)
	require.Equal(t, "bot@sightglass.example", commit.Author.Email)
}

func TestSyncer_FinalizeOpensExistingRepository(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	ctx := context.Background()

	first := openSyncer(t, dir, nil)
	require.NoError(t, first.Dump(ctx, "metrics", []syncer.Record{{"id": "1"}}))

	second := openSyncer(t, dir, nil)
	got, err := second.Load(ctx, "metrics")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, 1, commitCount(t, dir))
}

func TestSyncer_LoadMissingFileFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	s := openSyncer(t, dir, nil)

	_, err := s.Load(context.Background(), "absent")
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}
