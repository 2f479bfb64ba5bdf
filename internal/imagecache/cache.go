// Package imagecache persists scaled bitmap variants so expensive resampling
// happens once per source image and target size, across restarts.
package imagecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	"github.com/rook-computer/mirror/mirror"
	"go.trai.ch/zerr"
	_ "golang.org/x/image/bmp" // register decoder
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
	"golang.org/x/sync/singleflight"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Key identifies one scaled variant of a source image.
type Key struct {
	Source  string
	Width   int
	Height  int
	Variant string
}

// ScaleFunc produces a w x h version of src.
type ScaleFunc func(src image.Image, w, h int) image.Image

// DefaultScale resamples with Catmull-Rom.
func DefaultScale(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

type Stats struct {
	MemoryHits    int64 `json:"memory_hits"`
	DiskHits      int64 `json:"disk_hits"`
	Regenerations int64 `json:"regenerations"`
}

type entry struct {
	img   image.Image
	mtime int64
}

type metadata struct {
	Source      string `json:"source"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Variant     string `json:"variant,omitempty"`
	SourceMtime int64  `json:"source_mtime"`
}

// Cache is safe for concurrent use. Regeneration of a given key is
// serialized; different keys proceed independently.
type Cache struct {
	dir    string
	root   string
	logger mirror.Logger

	group singleflight.Group

	mu  sync.RWMutex
	mem map[Key]entry

	memoryOnly    atomic.Bool
	memoryHits    atomic.Int64
	diskHits      atomic.Int64
	regenerations atomic.Int64
}

// New returns a cache persisting into dir. Source paths under root are
// recorded relative to it so the directory can be copied between machines.
// An empty dir keeps everything in memory.
func New(dir, root string, logger mirror.Logger) *Cache {
	if logger == nil {
		logger = mirror.NoopLogger{}
	}
	c := &Cache{dir: dir, root: root, logger: logger, mem: make(map[Key]entry)}
	if dir == "" {
		c.memoryOnly.Store(true)
	}
	return c
}

func (c *Cache) Dir() string { return c.dir }

// Persistent reports whether new entries are still written to disk.
func (c *Cache) Persistent() bool { return !c.memoryOnly.Load() }

func (c *Cache) Stats() Stats {
	return Stats{
		MemoryHits:    c.memoryHits.Load(),
		DiskHits:      c.diskHits.Load(),
		Regenerations: c.regenerations.Load(),
	}
}

// Dimensions reads the size of a source image without decoding it fully.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, assetError(err, path)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, assetError(err, path)
	}
	return cfg.Width, cfg.Height, nil
}

// GetOrCreate returns the scaled bitmap for key. A cached variant is reused
// while the source modification time is unchanged; otherwise scale runs and
// the result is written atomically to the cache directory.
func (c *Cache) GetOrCreate(key Key, scale ScaleFunc) (image.Image, error) {
	if key.Width <= 0 || key.Height <= 0 {
		return nil, zerr.With(zerr.Wrap(mirror.ErrAsset, fmt.Sprintf("invalid target size %dx%d", key.Width, key.Height)), "path", key.Source)
	}
	info, err := os.Stat(key.Source)
	if err != nil {
		return nil, assetError(err, key.Source)
	}
	if info.IsDir() {
		return nil, assetError(errors.New("source is a directory"), key.Source)
	}
	mtime := info.ModTime().UnixNano()

	if img, ok := c.fromMemory(key, mtime); ok {
		c.memoryHits.Add(1)
		return img, nil
	}

	v, err, _ := c.group.Do(c.Name(key), func() (any, error) {
		if img, ok := c.fromMemory(key, mtime); ok {
			c.memoryHits.Add(1)
			return img, nil
		}
		if img, ok := c.fromDisk(key, mtime); ok {
			c.diskHits.Add(1)
			c.remember(key, img, mtime)
			return img, nil
		}

		src, err := decode(key.Source)
		if err != nil {
			return nil, err
		}
		if scale == nil {
			scale = DefaultScale
		}
		img := scale(src, key.Width, key.Height)
		c.regenerations.Add(1)
		c.remember(key, img, mtime)

		if err := c.persist(key, img, mtime); err != nil {
			c.degrade(err)
		}
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}

// Name returns the deterministic file stem for key.
func (c *Cache) Name(key Key) string {
	identity := c.identity(key.Source)
	sum := xxhash.Sum64String(fmt.Sprintf("%s|%d|%d|%s", identity, key.Width, key.Height, key.Variant))

	base := filepath.Base(key.Source)
	base = sanitize(strings.TrimSuffix(base, filepath.Ext(base)))
	if key.Variant != "" {
		return fmt.Sprintf("%s-%dx%d-%s-%016x", base, key.Width, key.Height, sanitize(key.Variant), sum)
	}
	return fmt.Sprintf("%s-%dx%d-%016x", base, key.Width, key.Height, sum)
}

func (c *Cache) identity(source string) string {
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	if c.root != "" {
		if root, err := filepath.Abs(c.root); err == nil {
			if rel, err := filepath.Rel(root, abs); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.ToSlash(abs)
}

func (c *Cache) fromMemory(key Key, mtime int64) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.mem[key]
	if !ok || e.mtime != mtime {
		return nil, false
	}
	return e.img, true
}

func (c *Cache) remember(key Key, img image.Image, mtime int64) {
	c.mu.Lock()
	c.mem[key] = entry{img: img, mtime: mtime}
	c.mu.Unlock()
}

func (c *Cache) fromDisk(key Key, mtime int64) (image.Image, bool) {
	if c.dir == "" {
		return nil, false
	}
	stem := filepath.Join(c.dir, c.Name(key))

	//nolint:gosec // Path is built from the cache directory and a hashed name
	raw, err := os.ReadFile(stem + ".json")
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warnf("cache", "read metadata %s: %v", stem, err)
		}
		return nil, false
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		c.logger.Warnf("cache", "corrupt metadata %s: %v", stem, err)
		return nil, false
	}
	if meta.SourceMtime != mtime || meta.Width != key.Width || meta.Height != key.Height ||
		meta.Variant != key.Variant || meta.Source != c.identity(key.Source) {
		c.logger.Debugf("cache", "stale entry %s", filepath.Base(stem))
		return nil, false
	}

	f, err := os.Open(stem + ".png")
	if err != nil {
		return nil, false
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		c.logger.Warnf("cache", "corrupt bitmap %s: %v", stem, err)
		return nil, false
	}
	return img, true
}

func (c *Cache) persist(key Key, img image.Image, mtime int64) error {
	if c.memoryOnly.Load() {
		return nil
	}
	if err := os.MkdirAll(c.dir, dirPerm); err != nil {
		return c.writeError(err)
	}
	stem := filepath.Join(c.dir, c.Name(key))

	if err := writeAtomic(stem+".png", func(f *os.File) error { return png.Encode(f, img) }); err != nil {
		return c.writeError(err)
	}
	meta := metadata{Source: c.identity(key.Source), Width: key.Width, Height: key.Height, Variant: key.Variant, SourceMtime: mtime}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return c.writeError(err)
	}
	if err := writeAtomic(stem+".json", func(f *os.File) error { _, err := f.Write(data); return err }); err != nil {
		return c.writeError(err)
	}
	c.logger.Debugf("cache", "stored %s", filepath.Base(stem))
	return nil
}

// degrade switches to memory-only mode after the first write failure.
func (c *Cache) degrade(err error) {
	if c.memoryOnly.CompareAndSwap(false, true) {
		c.logger.Errorf("cache", "%v; continuing without persistence", err)
	}
}

func (c *Cache) writeError(err error) error {
	return zerr.With(mirror.Classify(mirror.ErrCacheWrite, err.Error(), err), "dir", c.dir)
}

// writeAtomic writes into a temporary file next to path and renames it into
// place, so readers in other processes never see a partial file.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Chmod(filePerm); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func decode(path string) (image.Image, error) {
	//nolint:gosec // Asset paths come from the mirror configuration
	f, err := os.Open(path)
	if err != nil {
		return nil, assetError(err, path)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, assetError(err, path)
	}
	return img, nil
}

func assetError(err error, path string) error {
	return zerr.With(mirror.Classify(mirror.ErrAsset, err.Error(), err), "path", path)
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
