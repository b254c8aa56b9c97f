package renderer

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
)

/**
 * @brief An ordered group of pipelines forming one material's GPU
 * configuration. The pass owns its pipelines; order never changes.
 */
type RenderPass struct {
	pipelines []*RenderPipeline
	destroyed bool
}

// NewRenderPass takes ownership of pipelines, also when it fails: the
// non-nil ones are destroyed before the error is returned.
func NewRenderPass(pipelines ...*RenderPipeline) (*RenderPass, error) {
	if len(pipelines) == 0 {
		return nil, fmt.Errorf("render pass needs at least one pipeline: %w", core.ErrInvalidArgument)
	}
	owned := make([]*RenderPipeline, len(pipelines))
	for i, p := range pipelines {
		if p == nil {
			for _, q := range pipelines {
				if q != nil {
					q.Destroy()
				}
			}
			return nil, fmt.Errorf("render pass pipeline %d is nil: %w", i, core.ErrInvalidArgument)
		}
		owned[i] = p
	}
	return &RenderPass{pipelines: owned}, nil
}

// Pipelines returns the pipelines in declaration order.
func (rp *RenderPass) Pipelines() []*RenderPipeline {
	out := make([]*RenderPipeline, len(rp.pipelines))
	copy(out, rp.pipelines)
	return out
}

func (rp *RenderPass) Pipeline(index int) *RenderPipeline {
	return rp.pipelines[index]
}

func (rp *RenderPass) Len() int {
	return len(rp.pipelines)
}

func (rp *RenderPass) Destroy() {
	if rp.destroyed {
		return
	}
	rp.destroyed = true
	for _, p := range rp.pipelines {
		p.Destroy()
	}
}
