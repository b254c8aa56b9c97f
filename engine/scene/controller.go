package scene

import "slices"

/**
 * @brief Keeps the ordered list of scene models and the current selection.
 * Listeners run synchronously after every change.
 */
type SceneController struct {
	objects  []*Model
	selected []*Model

	objectsChanged   []func()
	selectionChanged []func()
}

func NewSceneController() *SceneController {
	return &SceneController{}
}

// Add appends models that are not in the scene yet.
func (c *SceneController) Add(models ...*Model) {
	added := false
	for _, m := range models {
		if m == nil || slices.Contains(c.objects, m) {
			continue
		}
		c.objects = append(c.objects, m)
		added = true
	}
	if added {
		c.notify(c.objectsChanged)
	}
}

// Remove drops the models from the scene and from the selection.
func (c *SceneController) Remove(models ...*Model) {
	before := len(c.objects)
	c.objects = slices.DeleteFunc(c.objects, func(m *Model) bool { return slices.Contains(models, m) })
	if len(c.objects) == before {
		return
	}
	c.notify(c.objectsChanged)

	selected := len(c.selected)
	c.selected = slices.DeleteFunc(c.selected, func(m *Model) bool { return slices.Contains(models, m) })
	if len(c.selected) != selected {
		c.notify(c.selectionChanged)
	}
}

func (c *SceneController) Objects() []*Model {
	return slices.Clone(c.objects)
}

// SelectObjects replaces the selection. Models outside the scene are ignored.
func (c *SceneController) SelectObjects(models ...*Model) {
	next := make([]*Model, 0, len(models))
	for _, m := range models {
		if slices.Contains(c.objects, m) && !slices.Contains(next, m) {
			next = append(next, m)
		}
	}
	if slices.Equal(next, c.selected) {
		return
	}
	c.selected = next
	c.notify(c.selectionChanged)
}

func (c *SceneController) Selected() []*Model {
	return slices.Clone(c.selected)
}

func (c *SceneController) IsSelected(m *Model) bool {
	return slices.Contains(c.selected, m)
}

func (c *SceneController) OnObjectsChanged(fn func()) {
	c.objectsChanged = append(c.objectsChanged, fn)
}

func (c *SceneController) OnSelectionChanged(fn func()) {
	c.selectionChanged = append(c.selectionChanged, fn)
}

func (c *SceneController) notify(listeners []func()) {
	for _, fn := range listeners {
		fn()
	}
}
