// Package assets indexes the asset directory, decodes files through typed
// loaders and reports changes on disk as events.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/triangle/engine/assets/loaders"
	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

var ErrAssetNotFound = errors.New("asset not found")
var ErrClosed = errors.New("asset manager already closed")

type AssetInfo struct {
	// Name is slash separated and relative to the asset root.
	Name       string
	Type       AssetType
	ModTime    time.Time
	LastLoaded time.Time
}

/**
 * @brief Keeps an index of every known asset under a root directory. Watch
 * turns on hot reload: writes to indexed files fire EVENT_CODE_ASSET_CHANGED
 * with the asset name as data.
 */
type AssetManager struct {
	root    string
	bus     *core.EventBus
	assets  map[string]AssetInfo
	loaders map[AssetType]Loader

	mutex sync.RWMutex

	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
}

func NewAssetManager(root string, bus *core.EventBus) (*AssetManager, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("asset root %s is not a directory: %w", root, core.ErrInvalidArgument)
	}

	am := &AssetManager{
		root:    filepath.Clean(root),
		bus:     bus,
		assets:  make(map[string]AssetInfo),
		loaders: make(map[AssetType]Loader),
		done:    make(chan struct{}),
	}
	am.registerLoader(AssetTypeImage, &loaders.ImageLoader{})
	am.registerLoader(AssetTypeShader, &loaders.ShaderLoader{})

	if err := am.scan(am.root); err != nil {
		return nil, err
	}
	core.LogInfo("asset manager indexed %d assets under %s", len(am.assets), am.root)
	return am, nil
}

func (am *AssetManager) Root() string {
	return am.root
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType AssetType, loader Loader) {
	am.loaders[assetType] = loader
}

// Path turns an asset name into a file system path.
func (am *AssetManager) Path(name string) string {
	return filepath.Join(am.root, filepath.FromSlash(name))
}

// Shaders exposes the shader directory to materials.
func (am *AssetManager) Shaders() fs.FS {
	return os.DirFS(am.Path("shaders"))
}

func (am *AssetManager) Lookup(name string) (AssetInfo, bool) {
	am.mutex.RLock()
	defer am.mutex.RUnlock()
	info, ok := am.assets[name]
	return info, ok
}

// List returns the sorted names of every indexed asset of the given type.
func (am *AssetManager) List(assetType AssetType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var names []string
	for name, info := range am.assets {
		if info.Type == assetType {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// Load decodes an indexed asset with the loader registered for its type.
func (am *AssetManager) Load(name string, params interface{}) (interface{}, error) {
	am.mutex.Lock()
	asset, exists := am.assets[name]
	if exists {
		asset.LastLoaded = time.Now()
		am.assets[name] = asset
	}
	am.mutex.Unlock()
	if !exists {
		return nil, fmt.Errorf("%s: %w", name, ErrAssetNotFound)
	}

	loader, ok := am.loaders[asset.Type]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type %s", asset.Type)
	}
	return loader.Load(am.Path(name), params)
}

func (am *AssetManager) LoadImage(name string, params metadata.ImageParams) (metadata.Image, error) {
	res, err := am.Load(name, params)
	if err != nil {
		return metadata.Image{}, err
	}
	img, ok := res.(metadata.Image)
	if !ok {
		return metadata.Image{}, fmt.Errorf("%s is not an image: %w", name, core.ErrInvalidArgument)
	}
	return img, nil
}

/**
 * @brief Starts watching the root and every sub-directory. Directories created
 * later are picked up as they appear.
 */
func (am *AssetManager) Watch() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return ErrClosed
	}
	if am.watcher != nil {
		am.mutex.Unlock()
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		am.mutex.Unlock()
		return err
	}
	am.watcher = w
	am.mutex.Unlock()

	if err := am.watchRecursive(am.root); err != nil {
		return err
	}

	am.wg.Add(1)
	go am.start()
	return nil
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.watcher.Events:
			if !ok {
				return
			}
			am.handleEvent(e)

		case err, ok := <-am.watcher.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)

		case <-am.done:
			return
		}
	}
}

func (am *AssetManager) handleEvent(e fsnotify.Event) {
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := am.watchRecursive(e.Name); err != nil {
				core.LogWarn("could not watch %s: %s", e.Name, err)
			}
			return
		}
	}

	name, err := filepath.Rel(am.root, e.Name)
	if err != nil {
		return
	}
	name = filepath.ToSlash(name)

	switch {
	case e.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if am.record(e.Name, name) {
			core.LogDebug("asset %s changed", name)
			if am.bus != nil {
				am.bus.Fire(core.EventContext{Type: core.EVENT_CODE_ASSET_CHANGED, Data: name})
			}
		}
	case e.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		am.removeAsset(name)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found along the way.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return am.watcher.Add(walkPath)
		}
		if name, err := filepath.Rel(am.root, walkPath); err == nil {
			am.record(walkPath, filepath.ToSlash(name))
		}
		return nil
	})
}

func (am *AssetManager) scan(root string) error {
	return filepath.WalkDir(root, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name, err := filepath.Rel(am.root, walkPath)
		if err != nil {
			return err
		}
		am.record(walkPath, filepath.ToSlash(name))
		return nil
	})
}

// record indexes a file and reports whether it is a known asset type.
func (am *AssetManager) record(path, name string) bool {
	assetType := determineAssetType(name)
	if assetType == AssetTypeNone {
		return false
	}
	var modTime time.Time
	if s, err := os.Stat(path); err == nil {
		modTime = s.ModTime()
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	info := am.assets[name]
	info.Name = name
	info.Type = assetType
	info.ModTime = modTime
	am.assets[name] = info
	return true
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(name string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, name)
}

// Close stops the watcher. Calling it more than once is safe.
func (am *AssetManager) Close() error {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return nil
	}
	am.isClosed = true
	w := am.watcher
	am.mutex.Unlock()

	close(am.done)
	if w == nil {
		return nil
	}
	err := w.Close()
	am.wg.Wait()
	return err
}
