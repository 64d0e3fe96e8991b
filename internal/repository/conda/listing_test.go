package conda

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListing = `<html>
<head><title>linux-ppc64le</title></head>
<body>
<h2>linux-ppc64le</h2>
<p>Files: 5</p>
<table>
<tr>
  <td><a href="numpy-1.15.0-py36.tar.bz2">numpy-1.15.0-py36.tar.bz2</a></td>
  <td>4 MB</td>
</tr>
<tr>
  <td><a href="scipy-1.1.0-py36.tar.bz2">scipy-1.1.0-py36.tar.bz2</a></td>
  <td>18 MB</td>
</tr>
<tr>
  <td><a href="pandas-0.23.4-py36.tar.bz2">pandas-0.23.4-py36.tar.bz2</a></td>
  <td>9 MB</td>
</tr>
<tr>
  <td><a href="six-1.11.0-py36.tar.bz2">six-1.11.0-py36.tar.bz2</a></td>
  <td>21 KB</td>
</tr>
<tr>
  <td><a href="zlib-1.2.11-0.tar.bz2">zlib-1.2.11-0.tar.bz2</a></td>
  <td>100 KB</td>
</tr>
</table>
<p>Updated: 2018-10-01 Files: 5</p>
</body>
</html>
`

func writeChannel(t *testing.T, listing string, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(listing), 0644))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("pkg"), 0644))
	}
	return dir
}

func nonRowLines(s string) []string {
	var lines []string
	inRow := false
	for _, line := range strings.SplitAfter(s, "\n") {
		if strings.Contains(line, "<tr>") {
			inRow = true
		}
		if !inRow && line != "" {
			lines = append(lines, strings.ReplaceAll(line, "Files: 5", "Files: 3"))
		}
		if strings.Contains(line, "</tr>") {
			inRow = false
		}
	}
	return lines
}

func TestRepairListingKeepsPresentRows(t *testing.T) {
	dir := writeChannel(t, sampleListing,
		"numpy-1.15.0-py36.tar.bz2", "pandas-0.23.4-py36.tar.bz2", "zlib-1.2.11-0.tar.bz2")

	kept, err := RepairListing(dir)
	require.NoError(t, err)
	assert.Equal(t, 3, kept)

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	out := string(data)

	assert.Equal(t, 3, strings.Count(out, "<tr>"))
	assert.Contains(t, out, `href="numpy-1.15.0-py36.tar.bz2"`)
	assert.Contains(t, out, `href="pandas-0.23.4-py36.tar.bz2"`)
	assert.Contains(t, out, `href="zlib-1.2.11-0.tar.bz2"`)
	assert.NotContains(t, out, "scipy")
	assert.NotContains(t, out, "six-1.11.0")

	assert.Contains(t, out, "<p>Files: 3</p>")
	assert.Contains(t, out, "Updated: 2018-10-01 Files: 3")
	assert.NotContains(t, out, "Files: 5")

	// every line outside the rows survives in its original order
	assert.Equal(t, nonRowLines(sampleListing), nonRowLines(out))
}

func TestRepairListingRowShapes(t *testing.T) {
	listing := "<table>\r\n" +
		"<tr><td><a href=\"a-1.0.tar.bz2\">a</a></td></tr>\r\n" +
		"<tr><th>Name</th></tr>\r\n" +
		"<tr><td><a href=\"gone-1.0.tar.bz2\">gone</a></td></tr>\r\n" +
		"<tr><td><a href=\"with%20space-1.0.tar.bz2\">s</a></td></tr>\r\n" +
		"</table>\r\n" +
		"Files:   4"
	dir := writeChannel(t, listing, "a-1.0.tar.bz2", "with space-1.0.tar.bz2")

	kept, err := RepairListing(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, kept)

	data, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<table>\r\n"+
		"<tr><td><a href=\"a-1.0.tar.bz2\">a</a></td></tr>\r\n"+
		"<tr><th>Name</th></tr>\r\n"+
		"<tr><td><a href=\"with%20space-1.0.tar.bz2\">s</a></td></tr>\r\n"+
		"</table>\r\n"+
		"Files: 2", string(data))
}

func TestRepairListingMissing(t *testing.T) {
	_, err := RepairListing(t.TempDir())
	assert.Error(t, err)
}
