package directory

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMmapDirectory(t *testing.T) *MmapDirectory {
	t.Helper()
	dir, err := OpenMmapDirectory(t.TempDir())
	require.NoError(t, err)
	return dir
}

func writeTestFile(t *testing.T, dir *MmapDirectory, path string, data []byte) {
	t.Helper()
	w, err := dir.OpenWrite(path)
	require.NoError(t, err)
	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestOpenMmapDirectory_Errors(t *testing.T) {
	_, err := OpenMmapDirectory(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrFileDoesNotExist)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = OpenMmapDirectory(file)
	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestMmapDirectory_WriteReadDelete(t *testing.T) {
	dir := newTestMmapDirectory(t)
	content := []byte("some postings")
	writeTestFile(t, dir, "seg.idx", content)

	ok, err := dir.Exists("seg.idx")
	require.NoError(t, err)
	assert.True(t, ok)

	src, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)
	assert.Equal(t, content, src.Bytes())
	assert.Equal(t, len(content), src.Len())
	require.NoError(t, src.Close())

	require.NoError(t, dir.Delete("seg.idx"))
	ok, err = dir.Exists("seg.idx")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMmapDirectory_ErrorTaxonomy(t *testing.T) {
	dir := newTestMmapDirectory(t)

	_, err := dir.OpenRead("absent.idx")
	assert.ErrorIs(t, err, ErrFileDoesNotExist)
	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "open", fe.Op)

	writeTestFile(t, dir, "taken.idx", []byte("x"))
	_, err = dir.OpenWrite("taken.idx")
	assert.ErrorIs(t, err, ErrFileAlreadyExists)

	err = dir.Delete("absent.idx")
	assert.ErrorIs(t, err, ErrFileDoesNotExist)

	_, err = dir.AtomicRead("absent.json")
	assert.ErrorIs(t, err, ErrFileDoesNotExist)
}

func TestMmapDirectory_AtomicWriteOverwrites(t *testing.T) {
	dir := newTestMmapDirectory(t)

	require.NoError(t, dir.AtomicWrite("meta.json", []byte(`{"v":1}`)))
	require.NoError(t, dir.AtomicWrite("meta.json", []byte(`{"v":2}`)))

	data, err := dir.AtomicRead("meta.json")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))
}

func TestMmapDirectory_CacheHit(t *testing.T) {
	dir := newTestMmapDirectory(t)
	writeTestFile(t, dir, "seg.idx", []byte("abc"))

	a, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)
	b, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)

	info := dir.CacheInfo()
	assert.Equal(t, 1, info.Counters.MissEmpty)
	assert.Equal(t, 1, info.Counters.Hit)
	assert.Equal(t, 0, info.Counters.MissWeak)
	assert.Len(t, info.Mmapped, 1)

	require.NoError(t, a.Close())
	require.NoError(t, b.Close())

	info = dir.CacheInfo()
	assert.Empty(t, info.Mmapped, "closing the last source releases the mapping")
}

func TestMmapDirectory_CacheMissWeak(t *testing.T) {
	dir := newTestMmapDirectory(t)
	writeTestFile(t, dir, "seg.idx", []byte("abc"))

	src, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)
	require.NoError(t, src.Close())

	// The entry is still in the map but its mapping is gone.
	src, err = dir.OpenRead("seg.idx")
	require.NoError(t, err)
	defer src.Close()

	info := dir.CacheInfo()
	assert.Equal(t, 1, info.Counters.MissEmpty)
	assert.Equal(t, 1, info.Counters.MissWeak)
	assert.Equal(t, 0, info.Counters.Hit)
}

func TestMmapDirectory_SourceSurvivesDelete(t *testing.T) {
	dir := newTestMmapDirectory(t)
	content := []byte("still here")
	writeTestFile(t, dir, "seg.idx", content)

	src, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)

	require.NoError(t, dir.Delete("seg.idx"))
	assert.Equal(t, content, src.Bytes())
	require.NoError(t, src.Close())

	// The eager eviction means a fresh open is a plain miss, not a weak one.
	writeTestFile(t, dir, "seg.idx", content)
	src2, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)
	defer src2.Close()

	info := dir.CacheInfo()
	assert.Equal(t, 2, info.Counters.MissEmpty)
	assert.Equal(t, 0, info.Counters.MissWeak)
}

func TestMmapDirectory_EmptyFileNotCached(t *testing.T) {
	dir := newTestMmapDirectory(t)
	writeTestFile(t, dir, "empty.idx", nil)

	src, err := dir.OpenRead("empty.idx")
	require.NoError(t, err)
	assert.Zero(t, src.Len())
	require.NoError(t, src.Close())

	info := dir.CacheInfo()
	assert.Equal(t, 1, info.Counters.MissEmpty)
	assert.Empty(t, info.Mmapped)
}

func TestMmapCache_PurgeDoublesLimitWhenNothingReclaimed(t *testing.T) {
	c := newMmapCache()
	c.purgeLimit = 2

	c.cache["a"] = &cacheEntry{refs: 1}
	c.cache["b"] = &cacheEntry{refs: 0}

	c.purge()
	assert.Len(t, c.cache, 1, "dead entry reclaimed")
	assert.Equal(t, 2, c.purgeLimit)

	c.purge()
	assert.Len(t, c.cache, 1)
	assert.Equal(t, 4, c.purgeLimit, "fruitless pass doubles the limit")
}

func TestSourceCloseIsIdempotent(t *testing.T) {
	dir := newTestMmapDirectory(t)
	writeTestFile(t, dir, "seg.idx", []byte("abc"))

	src, err := dir.OpenRead("seg.idx")
	require.NoError(t, err)
	require.NoError(t, src.Close())
	require.NoError(t, src.Close())

	var fe *FileError
	_, err = dir.OpenRead("absent")
	require.True(t, errors.As(err, &fe))
}
