package systems

import (
	"errors"

	"github.com/spaghettifunk/triangle/engine/config"
	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer"
)

type SystemManager struct {
	jobSystem      *JobSystem
	textureSystem  *TextureSystem
	geometrySystem *GeometrySystem
}

func NewSystemManager(cfg *config.Config, ctx renderer.Context, images ImageSource, uploads *renderer.WorkQueue, bus *core.EventBus) (*SystemManager, error) {
	js, err := NewJobSystem(cfg.Jobs.Workers, cfg.Jobs.QueueSize)
	if err != nil {
		return nil, err
	}

	params, err := cfg.Texture.Parameters()
	if err != nil {
		js.Shutdown()
		return nil, err
	}
	ts, err := NewTextureSystem(&TextureSystemConfig{
		MaxTextureCount: cfg.Texture.MaxTextures,
		Parameters:      params,
		FlipY:           cfg.Texture.FlipY,
	}, ctx, images, js, uploads, bus)
	if err != nil {
		js.Shutdown()
		return nil, err
	}

	gs, err := NewGeometrySystem(&GeometrySystemConfig{
		MaxGeometryCount: cfg.Render.MaxGeometries,
	}, ctx)
	if err != nil {
		ts.Shutdown()
		js.Shutdown()
		return nil, err
	}

	return &SystemManager{
		jobSystem:      js,
		textureSystem:  ts,
		geometrySystem: gs,
	}, nil
}

func (sm *SystemManager) Jobs() *JobSystem {
	return sm.jobSystem
}

func (sm *SystemManager) Textures() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) Geometry() *GeometrySystem {
	return sm.geometrySystem
}

// Shutdown stops texture uploads first so no worker blocks on a full queue.
func (sm *SystemManager) Shutdown() error {
	return errors.Join(
		sm.textureSystem.Shutdown(),
		sm.geometrySystem.Shutdown(),
		sm.jobSystem.Shutdown(),
	)
}
