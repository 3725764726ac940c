package catalog

import (
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

func writeImage(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	if filepath.Ext(path) == ".jpg" {
		require.NoError(t, jpeg.Encode(f, img, nil))
		return
	}
	require.NoError(t, png.Encode(f, img))
}

func fixtureDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeImage(t, filepath.Join(dir, "b.jpg"), 120, 80)
	writeImage(t, filepath.Join(dir, "a.png"), 300, 200)
	writeImage(t, filepath.Join(dir, "sub", "c.png"), 10, 40)
	writeImage(t, filepath.Join(dir, ".cache", "hidden.png"), 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))
	return dir
}

func TestDirList(t *testing.T) {
	cat := NewDir(fixtureDir(t), 2)

	infos, err := cat.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []ImageInfo{
		{Name: "a.png", Width: 300, Height: 200},
		{Name: "b.jpg", Width: 120, Height: 80},
		{Name: "sub/c.png", Width: 10, Height: 40},
	}, infos)
}

func TestDirListInvalidImage(t *testing.T) {
	dir := fixtureDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.png"), []byte("nope"), 0o644))

	_, err := NewDir(dir, 0).List(context.Background())
	assert.ErrorIs(t, err, apperr.InvalidDimensions)
}

func TestDirListMissingRoot(t *testing.T) {
	_, err := NewDir(filepath.Join(t.TempDir(), "missing"), 0).List(context.Background())
	assert.ErrorIs(t, err, apperr.IOError)
}

func TestDirRead(t *testing.T) {
	dir := fixtureDir(t)
	cat := NewDir(dir, 0)

	data, err := cat.Read(context.Background(), "sub/c.png")
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(dir, "sub", "c.png"))
	require.NoError(t, err)
	assert.Equal(t, want, data)

	_, err = cat.Read(context.Background(), "missing.png")
	assert.ErrorIs(t, err, apperr.NotFound)

	for _, name := range []string{"", "../a.png", "/etc/passwd", ".."} {
		_, err = cat.Read(context.Background(), name)
		assert.ErrorIs(t, err, apperr.NotFound, name)
	}
}

func TestFind(t *testing.T) {
	infos := []ImageInfo{{Name: "a.png", Width: 1, Height: 1}}
	got, err := Find(infos, "a.png")
	require.NoError(t, err)
	assert.Equal(t, infos[0], got)

	_, err = Find(infos, "b.png")
	assert.ErrorIs(t, err, apperr.NotFound)
}

func TestIsImage(t *testing.T) {
	assert.True(t, IsImage("x/Y.JPG"))
	assert.True(t, IsImage("a.webp"))
	assert.False(t, IsImage("a.txt"))
}
