package scene

import (
	"fmt"
	"slices"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

// PickInput is the viewport state a pick is resolved against.
type PickInput struct {
	Width   uint32
	Height  uint32
	Samples int32
	// Clicked is a left click inside a focused viewport that did not hit a tool.
	Clicked bool
	X       float32
	Y       float32
	// MultiSelect toggles the clicked model instead of replacing the selection.
	MultiSelect bool
}

/**
 * @brief Resolves clicks to models through a colour id frame and outlines
 * the selection. Every model is drawn in its ColorID into the id frame; the
 * selected ones are drawn white into the mask frame that the edge detection
 * pass outlines.
 */
type PickupController struct {
	controller *SceneController

	ids    *renderer.Frame
	mask   *renderer.Frame
	canvas *renderer.Mesh
	solid  *materials.SolidColorInstanced
	edge   *materials.EdgeDetection

	models   []*Model
	colors   []math.Vec4
	selected []*Model
}

func NewPickupController(res materials.Resources, controller *SceneController, canvas *renderer.Mesh) (*PickupController, error) {
	if controller == nil || canvas == nil {
		return nil, fmt.Errorf("pickup controller needs a scene controller and a canvas: %w", core.ErrInvalidArgument)
	}
	solid, err := materials.NewSolidColorInstanced(res)
	if err != nil {
		return nil, err
	}
	edge, err := materials.NewEdgeDetection(res)
	if err != nil {
		solid.Destroy()
		return nil, err
	}
	p := &PickupController{
		controller: controller,
		ids:        renderer.NewFrame(res.Context),
		mask:       renderer.NewFrame(res.Context),
		canvas:     canvas,
		solid:      solid,
		edge:       edge,
	}
	controller.OnObjectsChanged(p.updateModels)
	controller.OnSelectionChanged(p.updateSelected)
	p.updateModels()
	p.updateSelected()
	return p, nil
}

func (p *PickupController) updateModels() {
	p.models = p.controller.Objects()
	p.colors = make([]math.Vec4, len(p.models))
	for i, m := range p.models {
		p.colors[i] = m.ColorID.Vec4()
	}
}

func (p *PickupController) updateSelected() {
	p.selected = p.controller.Selected()
}

// Update resizes the frames and applies a click to the selection.
func (p *PickupController) Update(in PickInput) error {
	if in.Width == 0 || in.Height == 0 {
		return nil
	}
	if err := p.ids.Update(in.Width, in.Height, 1, metadata.PixelFormatRGBA8); err != nil {
		return err
	}
	if err := p.mask.Update(in.Width, in.Height, in.Samples, metadata.PixelFormatRGBA8); err != nil {
		return err
	}
	if !in.Clicked {
		return nil
	}
	if in.X < 0 || in.Y < 0 || in.X >= float32(in.Width) || in.Y >= float32(in.Height) {
		return nil
	}

	pixel, err := p.ids.Pixel(int32(in.X), int32(in.Y))
	if err != nil {
		return err
	}
	p.controller.SelectObjects(pick(p.models, p.selected, ColorID(pixel), in.MultiSelect)...)
	return nil
}

// pick returns the selection after clicking the model drawn in colour picked.
func pick(models, selected []*Model, picked ColorID, multi bool) []*Model {
	next := slices.Clone(selected)
	for _, m := range models {
		if m.ColorID != picked {
			continue
		}
		wasSelected := slices.Contains(next, m)
		if multi {
			next = slices.DeleteFunc(next, func(s *Model) bool { return s == m })
		} else {
			next = next[:0]
		}
		if !multi || !wasSelected {
			next = append(next, m)
		}
		return next
	}
	return nil
}

func renderables(models []*Model) []materials.Renderable {
	out := make([]materials.Renderable, len(models))
	for i, m := range models {
		out[i] = m
	}
	return out
}

// Render draws the id frame and the selection mask.
func (p *PickupController) Render(params materials.GlobalParameters) error {
	if p.ids.Width == 0 {
		return nil
	}
	p.ids.Bind()
	p.solid.Colors = p.colors
	err := p.solid.DrawModels(renderables(p.models), params)
	p.ids.Unbind()
	if err != nil {
		return err
	}

	p.mask.Bind()
	p.solid.Colors = []math.Vec4{materials.PickupColor}
	err = p.solid.DrawModels(renderables(p.selected), params)
	p.mask.Unbind()
	return err
}

// PostEffects outlines the selection over the currently bound target.
func (p *PickupController) PostEffects(params materials.GlobalParameters) error {
	if p.mask.Width == 0 {
		return nil
	}
	p.edge.Channel0 = p.mask.Texture()
	return p.edge.Draw([]*renderer.Mesh{p.canvas}, params)
}

func (p *PickupController) Destroy() {
	p.ids.Destroy()
	p.mask.Destroy()
	p.solid.Destroy()
	p.edge.Destroy()
}
