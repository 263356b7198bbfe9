package budget

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/convo"
	"github.com/zenflow/zenflow-mcp/internal/zenflow/models"
)

func testCap() models.Capability {
	return models.Capability{ContextWindowTokens: 100000, MaxOutputTokens: 4000}
}

func TestPrepareFileContentRejectsRelativePath(t *testing.T) {
	_, err := PrepareFileContent([]string{"relative.go"}, nil, nil, testCap(), 0, "files")
	require.Error(t, err)
}

func TestPrepareFileContentDedupsAgainstHistory(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	b := filepath.Join(dir, "b.go")
	require.NoError(t, os.WriteFile(a, []byte("package a"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("package b"), 0o644))

	store := convo.New(convo.DefaultConfig())
	id := store.CreateThread("chat", nil, "")
	store.AddTurn(id, "user", "look at a", []string{a}, nil, "chat", "", "", nil)
	th := store.GetThread(id)

	res, err := PrepareFileContent([]string{a, b}, store, th, testCap(), 0, "files")
	require.NoError(t, err)
	assert.NotContains(t, res.ActuallyIncluded, a)
	assert.Contains(t, res.ActuallyIncluded, b)
}

func TestPrepareFileContentOrdersByRelevanceToLatestUserTurn(t *testing.T) {
	dir := t.TempDir()
	authFile := filepath.Join(dir, "auth", "login.go")
	vendorFile := filepath.Join(dir, "vendor", "thirdparty.go")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "auth"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vendor"), 0o755))
	require.NoError(t, os.WriteFile(authFile, []byte("package auth"), 0o644))
	require.NoError(t, os.WriteFile(vendorFile, []byte("package vendor"), 0o644))

	store := convo.New(convo.DefaultConfig())
	id := store.CreateThread("debug", nil, "")
	store.AddTurn(id, "user", "investigate the login authentication failure", nil, nil, "debug", "", "", nil)
	th := store.GetThread(id)

	res, err := PrepareFileContent([]string{vendorFile, authFile}, store, th, testCap(), 0, "files")
	require.NoError(t, err)
	require.Len(t, res.ActuallyIncluded, 2)
	assert.Equal(t, authFile, res.ActuallyIncluded[0], "auth-relevant file should be prioritized over an unrelated vendor file")
}

func TestOrderByRelevanceLeavesOrderUnchangedWithoutQueryOverlap(t *testing.T) {
	candidates := []string{"/a/one.go", "/b/two.go"}
	out := orderByRelevance(candidates, "")
	assert.Equal(t, candidates, out)
}

func TestCosineSimilarityOfIdenticalVectorsIsOne(t *testing.T) {
	v := []float64{1, 2, 3}
	assert.InDelta(t, 1.0, cosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarityOfOrthogonalVectorsIsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float64{1, 0}, []float64{0, 1}))
}

func TestPrepareFileContentWithoutThreadIncludesEverything(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.go")
	require.NoError(t, os.WriteFile(a, []byte("package a"), 0o644))

	res, err := PrepareFileContent([]string{a}, nil, nil, testCap(), 0, "files")
	require.NoError(t, err)
	assert.Equal(t, []string{a}, res.ActuallyIncluded)
	assert.Contains(t, res.Text, "--- files ---")
}
