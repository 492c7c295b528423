package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArchive(t *testing.T, path string, members map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, text := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(text))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestLocation(t *testing.T) {
	loc, err := ParseLocation("mods/example.jar!assets/example/lang/en_us.json")
	require.NoError(t, err)
	assert.Equal(t, "mods/example.jar", loc.Container)
	assert.Equal(t, "assets/example/lang/en_us.json", loc.Member)
	assert.True(t, loc.InArchive())
	assert.Equal(t, "assets/example/lang/en_us.json", loc.Name())
	assert.Equal(t, "mods/example.jar!assets/example/lang/en_us.json", loc.String())

	loc, err = ParseLocation("config/lang/en_us.snbt")
	require.NoError(t, err)
	assert.False(t, loc.InArchive())

	_, err = ParseLocation("mods/example.jar!")
	assert.Error(t, err)

	assert.Error(t, Location{Path: "a", Container: "b", Member: "c"}.Validate())
	assert.Error(t, Location{}.Validate())
}

func TestPlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en_us.lang")
	require.NoError(t, os.WriteFile(path, []byte("a=b\n"), 0644))

	text, err := PlainFile{Path: path}.ReadText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a=b\n", text)

	_, err = PlainFile{Path: filepath.Join(dir, "missing.lang")}.ReadText(context.Background())
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestZipAndJarMembers(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "pack.zip")
	jarPath := filepath.Join(dir, "mod.jar")
	members := map[string]string{"assets/Mod/lang/en_us.json": `{"k":"v"}`}
	writeArchive(t, zipPath, members)
	writeArchive(t, jarPath, members)

	ctx := context.Background()

	text, err := ZipMember{Archive: zipPath, Member: "assets/Mod/lang/en_us.json"}.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"k":"v"}`, text)

	_, err = ZipMember{Archive: zipPath, Member: "assets/mod/lang/en_us.json"}.ReadText(ctx)
	assert.ErrorIs(t, err, ErrMemberNotFound, "zip lookup is case-sensitive")

	text, err = JarMember{Archive: jarPath, Member: "assets/mod/lang/en_us.json"}.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"k":"v"}`, text, "jar lookup falls back to case-insensitive match")

	_, err = JarMember{Archive: jarPath, Member: "assets/mod/lang/de_de.json"}.ReadText(ctx)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = JarMember{Archive: filepath.Join(dir, "gone.jar"), Member: "x"}.ReadText(ctx)
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestForLocation(t *testing.T) {
	src, err := ForLocation(Location{Path: "a.lang"})
	require.NoError(t, err)
	assert.IsType(t, PlainFile{}, src)

	src, err = ForLocation(Location{Container: "mods/A.JAR", Member: "x.json"})
	require.NoError(t, err)
	assert.IsType(t, JarMember{}, src)

	src, err = ForLocation(Location{Container: "pack.zip", Member: "x.json"})
	require.NoError(t, err)
	assert.IsType(t, ZipMember{}, src)
	assert.Equal(t, "pack.zip!x.json", src.Key())
}

func TestReadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := PlainFile{Path: "whatever"}.ReadText(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingSource struct {
	key   string
	reads int
}

func (c *countingSource) Key() string { return c.key }

func (c *countingSource) ReadText(context.Context) (string, error) {
	c.reads++
	return "text", nil
}

func TestCache(t *testing.T) {
	cache := NewCache()
	src := &countingSource{key: "a"}

	for i := 0; i < 3; i++ {
		text, err := cache.Read(context.Background(), src)
		require.NoError(t, err)
		assert.Equal(t, "text", text)
	}
	assert.Equal(t, 1, src.reads)
	assert.Equal(t, 1, cache.Len())
}

func TestListMembers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.jar")
	writeArchive(t, path, map[string]string{
		"b.json":                     "{}",
		"assets/mod/lang/en_us.json": "{}",
		"META-INF/mods.toml":         "",
	})

	names, err := ListMembers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"META-INF/mods.toml", "assets/mod/lang/en_us.json", "b.json"}, names)
	assert.True(t, IsArchive(path))
	assert.False(t, IsArchive("en_us.json"))
}

func TestConcurrentMemberReads(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "mod.jar")
	writeArchive(t, jar, map[string]string{
		"assets/mod/lang/en_us.json":                    `{"a": "b"}`,
		"assets/mod/patchouli_books/g/en_us/intro.json": `{"name": "Intro"}`,
	})

	members := []string{
		"assets/mod/lang/en_us.json",
		"assets/mod/patchouli_books/g/en_us/intro.json",
	}
	want := []string{`{"a": "b"}`, `{"name": "Intro"}`}

	const rounds = 20
	var wg sync.WaitGroup
	errs := make(chan error, rounds*len(members))
	for r := 0; r < rounds; r++ {
		for i, m := range members {
			wg.Add(1)
			go func(member, expected string) {
				defer wg.Done()
				text, err := JarMember{Archive: jar, Member: member}.ReadText(context.Background())
				if err == nil && text != expected {
					err = fmt.Errorf("%s: got %q, want %q", member, text, expected)
				}
				if err != nil {
					errs <- err
				}
			}(m, want[i])
		}
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestCacheConcurrentReads(t *testing.T) {
	jar := filepath.Join(t.TempDir(), "mod.jar")
	writeArchive(t, jar, map[string]string{"a.json": "A", "b.json": "B"})

	cache := NewCache()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for _, m := range []string{"a.json", "b.json"} {
			wg.Add(1)
			go func(member string) {
				defer wg.Done()
				_, _ = cache.Read(context.Background(), ZipMember{Archive: jar, Member: member})
			}(m)
		}
	}
	wg.Wait()
	assert.Equal(t, 2, cache.Len())

	text, err := cache.Read(context.Background(), ZipMember{Archive: jar, Member: "b.json"})
	require.NoError(t, err)
	assert.Equal(t, "B", text)
}
