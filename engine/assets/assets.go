package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/cubechain/engine/assets/loaders"
	"github.com/spaghettifunk/cubechain/engine/core"
	"github.com/spaghettifunk/cubechain/engine/renderer/metadata"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrNoLoader      = errors.New("no loader registered")
	ErrClosed        = errors.New("asset manager already closed")
)

const (
	ShaderDir  = "shaders"
	TextureDir = "textures"
)

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// AssetManager indexes the asset directory, loads textures and shaders from it
// and watches it for edits. Edits are logged and reported on Changes; nothing
// is reloaded while the renderer runs.
type AssetManager struct {
	root    string
	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader

	mutex sync.RWMutex

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	started  bool
	changes  chan AssetInfo
}

func NewAssetManager() (*AssetManager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &AssetManager{
		assets:   make(map[string]AssetInfo),
		loaders:  make(map[metadata.ResourceType]Loader),
		fsnotify: fsWatch,
		changes:  make(chan AssetInfo, 16),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}, nil
}

func (am *AssetManager) Initialize(assetsDir string) error {
	am.root = filepath.Clean(assetsDir)

	// Register loaders
	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeTexture, &loaders.TextureLoader{GenerateMips: true, SRGB: true})

	if err := am.addRecursive(am.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", am.root, err)
	}

	am.started = true
	go am.start()
	core.LogInfo("asset manager watching %s (%d assets)", am.root, am.Len())
	return nil
}

// AddRecursive starts watching the named directory and all sub-directories.
func (am *AssetManager) addRecursive(name string) error {
	if am.isClosed {
		return ErrClosed
	}
	return am.watchRecursive(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadTexture loads textures/<name>.png.
func (am *AssetManager) LoadTexture(name string) (*metadata.Texture, error) {
	res, err := am.LoadAsset(filepath.Join(TextureDir, name+".png"), metadata.ResourceTypeTexture, name)
	if err != nil {
		return nil, err
	}
	return res.Data.(*metadata.Texture), nil
}

// LoadTextures decodes every named texture on a small worker pool. Results
// keep the order of names; the first failure is returned.
func (am *AssetManager) LoadTextures(names []string) ([]*metadata.Texture, error) {
	if len(names) == 0 {
		return nil, nil
	}
	workers := runtime.NumCPU()
	if workers > len(names) {
		workers = len(names)
	}
	js, err := NewJobSystem(workers, len(names))
	if err != nil {
		return nil, err
	}

	textures := make([]*metadata.Texture, len(names))
	errs := make([]error, len(names))
	for i, name := range names {
		js.Submit(Job{
			Name: "texture " + name,
			Run: func() error {
				textures[i], errs[i] = am.LoadTexture(name)
				return errs[i]
			},
		})
	}
	js.Shutdown()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("texture '%s': %w", names[i], err)
		}
	}
	return textures, nil
}

// LoadShader loads shaders/<name>.<stage>.spv.
func (am *AssetManager) LoadShader(name string, stage metadata.ShaderStage) (*metadata.ShaderModule, error) {
	file := fmt.Sprintf("%s.%s.spv", name, stage)
	res, err := am.LoadAsset(filepath.Join(ShaderDir, file), metadata.ResourceTypeShader, stage)
	if err != nil {
		return nil, err
	}
	return res.Data.(*metadata.ShaderModule), nil
}

// Load an asset using the appropriate loader. path is relative to the asset root.
func (am *AssetManager) LoadAsset(path string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	path = filepath.ToSlash(filepath.Clean(path))

	am.mutex.Lock()
	asset, exists := am.assets[path]
	if !exists || asset.Type != resourceType {
		am.mutex.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}
	asset.LastLoaded = time.Now()
	am.assets[path] = asset
	loader, loaderExists := am.loaders[asset.Type]
	am.mutex.Unlock()

	if !loaderExists {
		return nil, fmt.Errorf("%w for asset type: %s", ErrNoLoader, asset.Type)
	}

	res, err := loader.Load(filepath.Join(am.root, filepath.FromSlash(path)), resourceType, params)
	if err != nil {
		core.LogError("failed to load asset %s: %s", path, err)
		return nil, err
	}
	core.LogDebug("asset %s loaded (%d bytes)", path, res.DataSize)
	return res, nil
}

// Lookup returns the index entry for a path relative to the asset root.
func (am *AssetManager) Lookup(path string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	a, ok := am.assets[filepath.ToSlash(filepath.Clean(path))]
	return a, ok
}

func (am *AssetManager) Len() int {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	return len(am.assets)
}

// Paths lists every indexed asset, sorted.
func (am *AssetManager) Paths() []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	paths := make([]string, 0, len(am.assets))
	for p := range am.assets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Changes reports created or modified assets. Slow readers miss events.
func (am *AssetManager) Changes() <-chan AssetInfo {
	return am.changes
}

func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrClosed
	}
	am.isClosed = true
	started := am.started
	am.mutex.Unlock()

	if !started {
		return am.fsnotify.Close()
	}
	close(am.done)
	<-am.stopped
	return nil
}

func (am *AssetManager) start() {
	defer close(am.stopped)
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name); err != nil {
						core.LogWarn("failed to watch new directory %s: %s", e.Name, err)
					}
				}
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				if info, ok := am.handleFileEvent(e.Name); ok {
					core.LogInfo("%s %s changed, restart to pick it up", info.Type, info.Path)
					select {
					case am.changes <- info:
					default:
					}
				}
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes every file it finds.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(path string) (AssetInfo, bool) {
	assetType := determineAssetType(path)
	if assetType == metadata.ResourceTypeNone {
		return AssetInfo{}, false
	}
	rel, ok := am.relative(path)
	if !ok {
		return AssetInfo{}, false
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()

	info := am.assets[rel]
	info.Path = rel
	info.Type = assetType
	am.assets[rel] = info
	return info, true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(path string) {
	rel, ok := am.relative(path)
	if !ok {
		return
	}
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, rel)
}

func (am *AssetManager) relative(path string) (string, bool) {
	rel, err := filepath.Rel(am.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func determineAssetType(path string) metadata.ResourceType {
	switch filepath.Ext(path) {
	case ".png":
		return metadata.ResourceTypeTexture
	case ".spv":
		return metadata.ResourceTypeShader
	default:
		return metadata.ResourceTypeNone
	}
}
