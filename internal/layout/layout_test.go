package layout

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ralt/repomirror/internal/models"
)

func descriptor(t *testing.T, id string, typ models.RepoType) models.RepositoryDescriptor {
	t.Helper()
	d, err := models.NewRepositoryDescriptor(id, id, typ, "ppc64le", "rhel7")
	require.NoError(t, err)
	return d
}

func TestForOSPackage(t *testing.T) {
	l := For("/srv", descriptor(t, "epel-ppc64le", models.TypeOSPackage))

	assert.Equal(t, "/srv/epel-ppc64le", l.StagingDir)
	assert.Equal(t, "/srv/repos/epel-ppc64le/rhel7/epel-ppc64le", l.RepoDir)
	assert.Equal(t, "/srv/repos/epel-ppc64le/rhel7", l.SyncParent)
	assert.Equal(t, "/srv/repos/epel-ppc64le/rhel7/epel-ppc64le/repodata", l.MetadataDir)
}

func TestForFlatLayouts(t *testing.T) {
	conda := For("/srv/", descriptor(t, "anaconda", models.TypeArchiveIndex))
	assert.Equal(t, "/srv/repos/anaconda", conda.RepoDir)
	assert.Equal(t, "/srv/repos/anaconda", conda.MetadataDir)

	pypi := For("/srv", descriptor(t, "pypi", models.TypeLanguagePackage))
	assert.Equal(t, "/srv/repos/pypi", pypi.RepoDir)
	assert.Equal(t, "/srv/repos/pypi/simple", pypi.MetadataDir)
}

func TestForIsDeterministic(t *testing.T) {
	a := For("/srv", descriptor(t, "tools", models.TypeOSPackage))
	b := For("/srv", descriptor(t, "tools", models.TypeOSPackage))
	assert.Equal(t, a, b)
}

func TestForDisjointByID(t *testing.T) {
	a := For("/srv", descriptor(t, "tools", models.TypeOSPackage))
	b := For("/srv", descriptor(t, "tools2", models.TypeOSPackage))

	for _, pa := range []string{a.StagingDir, a.RepoDir, a.MetadataDir} {
		for _, pb := range []string{b.StagingDir, b.RepoDir, b.MetadataDir} {
			assert.False(t, within(pa, pb), "%s overlaps %s", pa, pb)
			assert.False(t, within(pb, pa), "%s overlaps %s", pb, pa)
		}
	}
}

func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && !strings.HasPrefix(rel, "..")
}

func TestRelativeToRoot(t *testing.T) {
	l := For("/srv", descriptor(t, "tools", models.TypeOSPackage))
	assert.Equal(t, "/repos/tools/rhel7/tools", l.RelativeToRoot(l.RepoDir))
	assert.Equal(t, "/opt/other", l.RelativeToRoot("/opt/other"))
}

func TestNameDir(t *testing.T) {
	assert.Equal(t, "cuda-driver", NameDir("CUDA Driver Repository"))
	assert.Equal(t, "powerai", NameDir("PowerAI content"))
}
