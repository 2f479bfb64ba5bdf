package imagecache_test

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rook-computer/mirror/internal/imagecache"
	"github.com/rook-computer/mirror/mirror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0x80, A: 0xFF})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	stamp := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, stamp, stamp))
}

type countingScale struct{ calls atomic.Int64 }

func (c *countingScale) scale(src image.Image, w, h int) image.Image {
	c.calls.Add(1)
	return imagecache.DefaultScale(src, w, h)
}

func TestGetOrCreateScalesOnce(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writePNG(t, src, 64, 32)

	cache := imagecache.New(filepath.Join(root, "cache"), root, nil)
	counter := &countingScale{}
	key := imagecache.Key{Source: src, Width: 16, Height: 8}

	first, err := cache.GetOrCreate(key, counter.scale)
	require.NoError(t, err)
	second, err := cache.GetOrCreate(key, counter.scale)
	require.NoError(t, err)

	assert.Equal(t, int64(1), counter.calls.Load())
	assert.Equal(t, image.Rect(0, 0, 16, 8), first.Bounds())
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), cache.Stats().MemoryHits)
}

func TestGetOrCreateRegeneratesWhenSourceChanges(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writePNG(t, src, 20, 20)

	cache := imagecache.New(filepath.Join(root, "cache"), root, nil)
	counter := &countingScale{}
	key := imagecache.Key{Source: src, Width: 10, Height: 10}

	_, err := cache.GetOrCreate(key, counter.scale)
	require.NoError(t, err)

	later := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, later, later))

	_, err = cache.GetOrCreate(key, counter.scale)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.calls.Load())

	// A fresh process sees the updated metadata and reuses the new entry.
	restarted := imagecache.New(filepath.Join(root, "cache"), root, nil)
	_, err = restarted.GetOrCreate(key, counter.scale)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counter.calls.Load())
	assert.Equal(t, int64(1), restarted.Stats().DiskHits)
}

func TestCacheSurvivesRestarts(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "images", "poster.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0o755))
	writePNG(t, src, 100, 105)
	cacheDir := filepath.Join(root, "cache")

	counter := &countingScale{}
	key := imagecache.Key{Source: src, Width: 500, Height: 526}

	for run := 0; run < 3; run++ {
		cache := imagecache.New(cacheDir, root, nil)
		img, err := cache.GetOrCreate(key, counter.scale)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 500, 526), img.Bounds())

		if run == 0 {
			assert.Equal(t, int64(1), cache.Stats().Regenerations)
		} else {
			assert.Equal(t, int64(0), cache.Stats().Regenerations)
			assert.Equal(t, int64(1), cache.Stats().DiskHits)
		}
	}
	assert.Equal(t, int64(1), counter.calls.Load())

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	stem := imagecache.New(cacheDir, root, nil).Name(key)
	assert.ElementsMatch(t, []string{stem + ".png", stem + ".json"}, names)
}

func TestNameIsStableAcrossMachines(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	key := func(root string) imagecache.Key {
		return imagecache.Key{Source: filepath.Join(root, "img", "sun.png"), Width: 40, Height: 30}
	}

	nameA := imagecache.New("cache", rootA, nil).Name(key(rootA))
	nameB := imagecache.New("cache", rootB, nil).Name(key(rootB))

	assert.Equal(t, nameA, nameB)
	assert.Regexp(t, `^sun-40x30-[0-9a-f]{16}$`, nameA)

	inverted := key(rootA)
	inverted.Variant = "invert"
	assert.NotEqual(t, nameA, imagecache.New("cache", rootA, nil).Name(inverted))
}

func TestUnwritableDirectoryDegradesToMemory(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writePNG(t, src, 8, 8)

	// A regular file where the directory should be cannot be created.
	blocked := filepath.Join(root, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	cache := imagecache.New(blocked, root, nil)
	counter := &countingScale{}
	key := imagecache.Key{Source: src, Width: 4, Height: 4}

	img, err := cache.GetOrCreate(key, counter.scale)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds())
	assert.False(t, cache.Persistent())

	_, err = cache.GetOrCreate(key, counter.scale)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counter.calls.Load())
}

func TestMissingOrCorruptSourceIsAssetError(t *testing.T) {
	root := t.TempDir()
	cache := imagecache.New(filepath.Join(root, "cache"), root, nil)

	_, err := cache.GetOrCreate(imagecache.Key{Source: filepath.Join(root, "nope.png"), Width: 4, Height: 4}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mirror.ErrAsset))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	corrupt := filepath.Join(root, "corrupt.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))
	_, err = cache.GetOrCreate(imagecache.Key{Source: corrupt, Width: 4, Height: 4}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mirror.ErrAsset))
	assert.ErrorIs(t, err, image.ErrFormat)

	_, err = cache.GetOrCreate(imagecache.Key{Source: corrupt, Width: 0, Height: 4}, nil)
	assert.True(t, errors.Is(err, mirror.ErrAsset))
}

func TestConcurrentRequestsRegenerateOnce(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writePNG(t, src, 128, 128)

	cache := imagecache.New(filepath.Join(root, "cache"), root, nil)
	counter := &countingScale{}
	key := imagecache.Key{Source: src, Width: 64, Height: 64}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetOrCreate(key, counter.scale)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), counter.calls.Load())
}

func TestDimensions(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photo.png")
	writePNG(t, src, 30, 12)

	w, h, err := imagecache.Dimensions(src)
	require.NoError(t, err)
	assert.Equal(t, 30, w)
	assert.Equal(t, 12, h)

	_, _, err = imagecache.Dimensions(filepath.Join(root, "missing.png"))
	assert.True(t, errors.Is(err, mirror.ErrAsset))
}
