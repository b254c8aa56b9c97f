package systems

import (
	"context"
	"fmt"
	"sync"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

const (
	DefaultTextureName = "default"
	defaultTextureSize = 8
)

// ImageSource decodes images by asset name. The asset manager is one.
type ImageSource interface {
	LoadImage(name string, params metadata.ImageParams) (metadata.Image, error)
}

type TextureSystemConfig struct {
	/** @brief The maximum number of textures that can be loaded at once. */
	MaxTextureCount uint32
	/** @brief Sampling parameters given to every texture the system creates. */
	Parameters metadata.TextureParameters
	/** @brief Flip images on the y-axis when decoding. */
	FlipY bool
}

type textureReference struct {
	texture    *renderer.Texture
	refCount   uint32
	generation uint32
}

/**
 * @brief Shares textures by asset name with explicit reference counts.
 * Acquire and Release run on the GPU thread. Decoding happens on the job
 * system and the finished pixels come back through the upload queue, so a
 * freshly acquired texture shows the checkerboard until the queue is drained.
 */
type TextureSystem struct {
	Config         *TextureSystemConfig
	DefaultTexture *renderer.Texture

	ctx     renderer.Context
	source  ImageSource
	jobs    *JobSystem
	uploads *renderer.WorkQueue
	bus     *core.EventBus

	mu         sync.Mutex
	registered map[string]*textureReference

	done   context.Context
	cancel context.CancelFunc
}

func NewTextureSystem(config *TextureSystemConfig, ctx renderer.Context, source ImageSource, js *JobSystem, uploads *renderer.WorkQueue, bus *core.EventBus) (*TextureSystem, error) {
	if config == nil || config.MaxTextureCount == 0 {
		err := fmt.Errorf("func NewTextureSystem - config.MaxTextureCount must be > 0: %w", core.ErrInvalidArgument)
		core.LogError(err.Error())
		return nil, err
	}
	if ctx == nil || source == nil || js == nil || uploads == nil {
		return nil, fmt.Errorf("func NewTextureSystem - missing dependency: %w", core.ErrInvalidArgument)
	}

	done, cancel := context.WithCancel(context.Background())
	ts := &TextureSystem{
		Config:     config,
		ctx:        ctx,
		source:     source,
		jobs:       js,
		uploads:    uploads,
		bus:        bus,
		registered: make(map[string]*textureReference),
		done:       done,
		cancel:     cancel,
	}

	ts.DefaultTexture = renderer.NewTexture(ctx)
	ts.DefaultTexture.Name = DefaultTextureName
	ts.DefaultTexture.SetParameters(metadata.TextureParameters{
		Anisotropy: 1,
		MinFilter:  metadata.TextureFilterNearest,
		MagFilter:  metadata.TextureFilterNearest,
		Wrap:       metadata.TextureWrapRepeat,
	})
	if err := ts.DefaultTexture.Write(checkerboard(defaultTextureSize)); err != nil {
		ts.DefaultTexture.Destroy()
		cancel()
		return nil, err
	}

	if bus != nil {
		bus.Register(core.EVENT_CODE_ASSET_CHANGED, ts, ts.onAssetChanged)
	}
	return ts, nil
}

// checkerboard is the magenta and white pattern shown for missing textures.
func checkerboard(size uint32) metadata.Image {
	pixels := make([]byte, size*size*4)
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			i := (y*size + x) * 4
			pixels[i+0] = 255
			pixels[i+2] = 255
			pixels[i+3] = 255
			if (x/2+y/2)%2 == 0 {
				pixels[i+1] = 255
			}
		}
	}
	return metadata.Image{Width: size, Height: size, PixelFormat: metadata.PixelFormatRGBA8, Pixels: pixels}
}

/**
 * @brief Returns the texture registered under name, creating it and starting
 * its load on first use. Every call must be paired with a Release.
 */
func (ts *TextureSystem) Acquire(name string) (*renderer.Texture, error) {
	if name == DefaultTextureName {
		core.LogWarn("func texture system Acquire called for default texture. Use DefaultTexture instead")
		return ts.DefaultTexture, nil
	}

	ts.mu.Lock()
	if ref, ok := ts.registered[name]; ok {
		ref.refCount++
		ts.mu.Unlock()
		return ref.texture, nil
	}
	if uint32(len(ts.registered)) >= ts.Config.MaxTextureCount {
		ts.mu.Unlock()
		return nil, fmt.Errorf("texture system full (%d textures), cannot load %s: %w", ts.Config.MaxTextureCount, name, core.ErrInvalidArgument)
	}
	t := renderer.NewTexture(ts.ctx)
	t.Name = name
	t.SetParameters(ts.Config.Parameters)
	if err := t.Write(checkerboard(defaultTextureSize)); err != nil {
		ts.mu.Unlock()
		t.Destroy()
		return nil, err
	}
	ts.registered[name] = &textureReference{texture: t, refCount: 1}
	ts.mu.Unlock()

	if err := ts.Load(name); err != nil {
		ts.Release(name)
		return nil, err
	}
	return t, nil
}

// Release drops one reference; the texture is destroyed with the last one.
func (ts *TextureSystem) Release(name string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	ref, ok := ts.registered[name]
	if !ok {
		core.LogWarn("func texture system Release called for unknown texture %s", name)
		return
	}
	ref.refCount--
	if ref.refCount == 0 {
		ref.texture.Destroy()
		delete(ts.registered, name)
		core.LogDebug("texture %s released", name)
	}
}

/**
 * @brief Decodes the named image on a worker and queues its upload. Older
 * loads still in flight for the same texture are superseded.
 */
func (ts *TextureSystem) Load(name string) error {
	ts.mu.Lock()
	ref, ok := ts.registered[name]
	if !ok {
		ts.mu.Unlock()
		return fmt.Errorf("%s: %w", name, core.ErrTextureNotFound)
	}
	ref.generation++
	generation := ref.generation
	texture := ref.texture
	ts.mu.Unlock()

	params := metadata.ImageParams{FlipY: ts.Config.FlipY}
	return ts.jobs.Submit(metadata.JobTask{
		InputParams: name,
		OnStart: func(p interface{}) (interface{}, error) {
			return ts.source.LoadImage(p.(string), params)
		},
		OnComplete: func(result interface{}) {
			ts.queueUpload(name, texture, generation, result.(metadata.Image))
		},
		OnFailure: func(err error) {
			core.LogWarn("texture %s failed to load, using the default pattern: %s", name, err)
			ts.queueUpload(name, texture, generation, checkerboard(defaultTextureSize))
		},
	})
}

func (ts *TextureSystem) queueUpload(name string, texture *renderer.Texture, generation uint32, img metadata.Image) {
	err := ts.uploads.Enqueue(ts.done, func(renderer.Context) {
		ts.upload(name, texture, generation, img)
	})
	if err != nil {
		core.LogDebug("dropping upload of %s: %s", name, err)
	}
}

// upload runs on the GPU thread.
func (ts *TextureSystem) upload(name string, texture *renderer.Texture, generation uint32, img metadata.Image) {
	ts.mu.Lock()
	ref, ok := ts.registered[name]
	current := ok && ref.texture == texture && ref.generation == generation && !texture.IsDestroyed()
	ts.mu.Unlock()
	if !current {
		return
	}

	if err := texture.Write(img); err != nil {
		core.LogError("texture %s upload failed: %s", name, err)
		return
	}
	if ts.bus != nil {
		ts.bus.Fire(core.EventContext{Type: core.EVENT_CODE_TEXTURE_LOADED, Data: name})
	}
}

// Reload decodes a cached texture again, keeping its GPU handle users.
func (ts *TextureSystem) Reload(name string) error {
	if err := ts.Load(name); err != nil {
		return err
	}
	core.LogInfo("reloading texture %s", name)
	return nil
}

func (ts *TextureSystem) onAssetChanged(ctx core.EventContext) bool {
	name, ok := ctx.Data.(string)
	if !ok || !ts.IsLoaded(name) {
		return false
	}
	if err := ts.Reload(name); err != nil {
		core.LogWarn("hot reload of %s failed: %s", name, err)
	}
	return false
}

func (ts *TextureSystem) IsLoaded(name string) bool {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	_, ok := ts.registered[name]
	return ok
}

func (ts *TextureSystem) Count() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return len(ts.registered)
}

// Clear destroys every registered texture regardless of its references.
func (ts *TextureSystem) Clear() {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	for name, ref := range ts.registered {
		ref.texture.Destroy()
		delete(ts.registered, name)
	}
}

func (ts *TextureSystem) Shutdown() error {
	ts.cancel()
	if ts.bus != nil {
		ts.bus.Unregister(core.EVENT_CODE_ASSET_CHANGED, ts)
	}
	ts.Clear()
	ts.DefaultTexture.Destroy()
	return nil
}
