package yum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/repomirror/internal/layout"
	"github.com/ralt/repomirror/internal/metadata"
	"github.com/ralt/repomirror/internal/models"
	"github.com/ralt/repomirror/internal/runner"
)

type call struct {
	command string
	display bool
}

func newRepo(t *testing.T, exitCode int) (*Repository, *[]call) {
	t.Helper()
	d, err := models.NewRepositoryDescriptor("epel-ppc64le", "EPEL", models.TypeOSPackage, "ppc64le", "rhel7")
	require.NoError(t, err)

	var calls []call
	r := runner.Func(func(_ context.Context, command string, display bool) (runner.Result, error) {
		calls = append(calls, call{command, display})
		return runner.Result{ExitCode: exitCode}, nil
	})
	root := t.TempDir()
	return New(d, layout.For(root, d), r, metadata.NewBuilder(r)), &calls
}

func TestSyncCommand(t *testing.T) {
	repo, calls := newRepo(t, 0)

	require.NoError(t, repo.Sync(context.Background(), "", models.SyncFilter{}))
	require.Len(t, *calls, 1)
	assert.Equal(t, "reposync -a ppc64le -r epel-ppc64le -p "+repo.Layout().SyncParent+" -l -m", (*calls)[0].command)
	assert.True(t, (*calls)[0].display)
}

func TestSyncFailureIsFatal(t *testing.T) {
	repo, _ := newRepo(t, 1)

	err := repo.Sync(context.Background(), "", models.SyncFilter{})
	require.Error(t, err)
	assert.True(t, models.IsFatal(err))
	assert.True(t, models.IsType(err, models.ErrSync))
}

func TestSyncRejectsConflictingFilter(t *testing.T) {
	repo, calls := newRepo(t, 0)

	err := repo.Sync(context.Background(), "", models.SyncFilter{Accept: []string{"a"}, Reject: []string{"b"}})
	require.Error(t, err)
	assert.True(t, models.IsType(err, models.ErrInvalidConfig))
	assert.Empty(t, *calls)
}

func TestBuildMetadata(t *testing.T) {
	repo, calls := newRepo(t, 0)

	require.NoError(t, repo.BuildMetadata(context.Background(), true))
	assert.Equal(t, "createrepo -v --update "+repo.Layout().RepoDir, (*calls)[0].command)
}

func TestBuildMetadataFailureNamesRepo(t *testing.T) {
	repo, _ := newRepo(t, 2)

	err := repo.BuildMetadata(context.Background(), false)
	require.Error(t, err)
	var re *models.RepoError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "epel-ppc64le", re.Repo)
	assert.Equal(t, models.ErrMetadata, re.Type)
}
