package sdcard

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/mediastore/internal/resource"
)

func newTestCard(t *testing.T) (*Card, string) {
	t.Helper()
	root := t.TempDir()
	card, err := Mount(root)
	require.NoError(t, err)
	return card, root
}

func TestMount_MissingPath(t *testing.T) {
	_, err := Mount(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrNoCard)
}

func TestMount_NotADirectory(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, []byte("x"), 0o600))

	_, err := Mount(f)
	assert.ErrorIs(t, err, ErrMount)
}

func TestCard_OpenReadsContent(t *testing.T) {
	card, root := newTestCard(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sounds"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sounds", "beep.wav"), []byte("RIFF"), 0o600))

	for _, p := range []string{"/sounds/beep.wav", "sounds/beep.wav"} {
		src, err := card.Open(p)
		require.NoError(t, err, p)
		assert.Equal(t, int64(4), src.Size())
		data, err := io.ReadAll(src)
		require.NoError(t, err)
		assert.Equal(t, "RIFF", string(data))
		require.NoError(t, src.Close())
	}
}

func TestCard_OpenMissingIsNotFound(t *testing.T) {
	card, _ := newTestCard(t)

	_, err := card.Open("/missing.mp3")
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestCard_OpenDirectoryIsNotFound(t *testing.T) {
	card, root := newTestCard(t)
	require.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0o755))

	_, err := card.Open("/dir")
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestCard_OpenReopensEachTime(t *testing.T) {
	card, root := newTestCard(t)
	file := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("one"), 0o600))

	first, err := card.ReadFile("/a.txt")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(file, []byte("two!"), 0o600))
	second, err := card.ReadFile("/a.txt")
	require.NoError(t, err)

	assert.Equal(t, "one", string(first))
	assert.Equal(t, "two!", string(second))
}

func TestCard_PathCannotEscapeMount(t *testing.T) {
	card, root := newTestCard(t)
	require.NoError(t, card.WriteFile("/../../escape.txt", []byte("x")))

	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.NoError(t, err, "write should be clamped inside the mount point")
}

func TestCard_WriteAppendDelete(t *testing.T) {
	card, _ := newTestCard(t)

	require.NoError(t, card.WriteFile("/log.txt", []byte("a")))
	require.NoError(t, card.AppendFile("/log.txt", []byte("bc")))

	data, err := card.ReadFile("/log.txt")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	size, err := card.FileSize("/log.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	require.NoError(t, card.WriteFile("/log.txt", []byte("z")))
	data, err = card.ReadFile("/log.txt")
	require.NoError(t, err)
	assert.Equal(t, "z", string(data))

	require.NoError(t, card.DeleteFile("/log.txt"))
	assert.False(t, card.Exists("/log.txt"))
	assert.ErrorIs(t, card.DeleteFile("/log.txt"), resource.ErrNotFound)
}

func TestCard_Directories(t *testing.T) {
	card, _ := newTestCard(t)

	require.NoError(t, card.CreateDirectory("/music"))
	require.NoError(t, card.CreateDirectory("/music"), "existing directory is not an error")
	assert.True(t, card.IsDirectory("/music"))

	require.NoError(t, card.WriteFile("/music/a.mp3", []byte("12345")))
	assert.Error(t, card.RemoveDirectory("/music"), "non-empty directory")
	assert.Error(t, card.RemoveDirectory("/music/a.mp3"), "not a directory")

	require.NoError(t, card.DeleteFile("/music"))
	assert.False(t, card.Exists("/music"))
	assert.Error(t, card.DeleteFile("/"))
}

func TestCard_ListDirectory(t *testing.T) {
	card, _ := newTestCard(t)
	require.NoError(t, card.CreateDirectory("/music"))
	require.NoError(t, card.CreateDirectory("/music/album"))
	require.NoError(t, card.WriteFile("/music/album/t1.mp3", []byte("123")))
	require.NoError(t, card.WriteFile("/readme.txt", []byte("hi")))

	shallow, err := card.ListDirectory("/", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []FileInfo{
		{Path: "/music", IsDir: true},
		{Path: "/readme.txt", Size: 2},
	}, shallow)

	deep, err := card.ListDirectory("/", 5)
	require.NoError(t, err)
	paths := make([]string, 0, len(deep))
	for _, fi := range deep {
		paths = append(paths, fi.Path)
	}
	sort.Strings(paths)
	assert.Equal(t, []string{"/music", "/music/album", "/music/album/t1.mp3", "/readme.txt"}, paths)

	_, err = card.ListDirectory("/nope", 0)
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestCard_Usage(t *testing.T) {
	card, _ := newTestCard(t)
	require.NoError(t, card.CreateDirectory("/d"))
	require.NoError(t, card.WriteFile("/d/a", make([]byte, 100)))
	require.NoError(t, card.WriteFile("/b", make([]byte, 23)))

	used, err := card.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(123), used)
}

func TestCard_Space(t *testing.T) {
	card, root := newTestCard(t)

	s, err := card.Space()
	require.NoError(t, err)
	assert.Positive(t, s.Total)
	assert.LessOrEqual(t, s.Free, s.Total)
	assert.Equal(t, s.Total-s.Free, s.Used())

	total, err := card.Total()
	require.NoError(t, err)
	assert.Equal(t, s.Total, total)
	_, err = card.Free()
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(root))
	_, err = card.Space()
	assert.ErrorIs(t, err, resource.ErrNotFound)
}

func TestSpace_UsedNeverNegative(t *testing.T) {
	assert.Equal(t, uint64(0), Space{Total: 10, Free: 20}.Used())
	assert.Equal(t, uint64(6), Space{Total: 10, Free: 4}.Used())
}

func TestCard_Process(t *testing.T) {
	card, _ := newTestCard(t)
	require.NoError(t, card.WriteFile("/data.bin", []byte("abcdefghij")))

	var chunks []string
	var offsets []int64
	ok, err := card.Process("/data.bin", 4, func(chunk []byte, total, offset int64) bool {
		assert.Equal(t, int64(10), total)
		chunks = append(chunks, string(chunk))
		offsets = append(offsets, offset)
		return true
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, chunks)
	assert.Equal(t, []int64{0, 4, 8}, offsets)
}

func TestCard_ProcessEarlyTermination(t *testing.T) {
	card, _ := newTestCard(t)
	require.NoError(t, card.WriteFile("/data.bin", []byte("abcdefghij")))

	calls := 0
	ok, err := card.Process("/data.bin", 4, func([]byte, int64, int64) bool {
		calls++
		return false
	})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestCard_WriteStream(t *testing.T) {
	card, _ := newTestCard(t)

	payload := []byte("0123456789")
	pos := 0
	n, err := card.WriteStream("/stream.bin", 4, func(buf []byte) int {
		c := copy(buf, payload[pos:])
		pos += c
		return c
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), n)

	data, err := card.ReadFile("/stream.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{512, "512 B"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.in), "FormatSize(%d)", tt.in)
	}
}

func TestCard_MaxOpenFiles(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.wav"), []byte("a"), 0o600))
	card, err := Mount(root, WithMaxOpenFiles(2))
	require.NoError(t, err)

	first, err := card.Open("/a.wav")
	require.NoError(t, err)
	second, err := card.Open("/a.wav")
	require.NoError(t, err)

	_, err = card.Open("/a.wav")
	assert.ErrorIs(t, err, resource.ErrIO)

	_, err = card.Open("/missing.wav")
	assert.ErrorIs(t, err, resource.ErrIO, "the limit is checked before the lookup")

	require.NoError(t, first.Close())
	_ = first.Close()
	third, err := card.Open("/a.wav")
	require.NoError(t, err, "closing a stream frees its slot exactly once")

	_, err = card.Open("/a.wav")
	assert.ErrorIs(t, err, resource.ErrIO)

	require.NoError(t, second.Close())
	require.NoError(t, third.Close())
	_, err = card.Open("/missing.wav")
	assert.ErrorIs(t, err, resource.ErrNotFound, "failed opens release their slot")
	src, err := card.Open("/a.wav")
	require.NoError(t, err)
	src.Close()
}
