package metadata

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
)

/** @brief A named preset that fully determines the fixed-function state. */
type RenderLayer int

const (
	/** @brief Skyboxes: depth tested with LessOrEqual, no stencil, no culling, no blending. */
	RenderLayerBackground RenderLayer = iota
	/** @brief Deferred style geometry. */
	RenderLayerGeometry
	/** @brief Regular opaque surfaces. */
	RenderLayerOpaque
	/** @brief Alpha blended surfaces, depth tested but not written. */
	RenderLayerTransparent
	/** @brief Screen space overlays, no depth at all. */
	RenderLayerOverlay
)

func (l RenderLayer) String() string {
	switch l {
	case RenderLayerBackground:
		return "Background"
	case RenderLayerGeometry:
		return "Geometry"
	case RenderLayerOpaque:
		return "Opaque"
	case RenderLayerTransparent:
		return "Transparent"
	case RenderLayerOverlay:
		return "Overlay"
	}
	return fmt.Sprintf("RenderLayer(%d)", int(l))
}

type DepthFunction int

const (
	DepthFunctionNever DepthFunction = iota
	DepthFunctionLess
	DepthFunctionEqual
	DepthFunctionLessOrEqual
	DepthFunctionGreater
	DepthFunctionNotEqual
	DepthFunctionGreaterOrEqual
	DepthFunctionAlways
)

type StencilFunction int

const (
	StencilFunctionNever StencilFunction = iota
	StencilFunctionLess
	StencilFunctionEqual
	StencilFunctionLessOrEqual
	StencilFunctionGreater
	StencilFunctionNotEqual
	StencilFunctionGreaterOrEqual
	StencilFunctionAlways
)

/** @brief Winding order of front facing triangles. */
type FrontFace int

const (
	FrontFaceCounterClockwise FrontFace = iota
	FrontFaceClockwise
)

type BlendFactor int

const (
	BlendFactorZero BlendFactor = iota
	BlendFactorOne
	BlendFactorSrcColor
	BlendFactorOneMinusSrcColor
	BlendFactorDstColor
	BlendFactorOneMinusDstColor
	BlendFactorSrcAlpha
	BlendFactorOneMinusSrcAlpha
	BlendFactorDstAlpha
	BlendFactorOneMinusDstAlpha
	BlendFactorConstantColor
	BlendFactorOneMinusConstantColor
	BlendFactorConstantAlpha
	BlendFactorOneMinusConstantAlpha
	BlendFactorSrcAlphaSaturate
)

type BlendEquation int

const (
	BlendEquationAdd BlendEquation = iota
	BlendEquationSubtract
	BlendEquationReverseSubtract
	BlendEquationMin
	BlendEquationMax
)

type TriangleFace int

const (
	TriangleFaceFront TriangleFace = iota
	TriangleFaceBack
	TriangleFaceFrontAndBack
)

type PolygonMode int

const (
	PolygonModeFill PolygonMode = iota
	PolygonModeLine
	PolygonModePoint
)

/** @brief Rasterization mode for the given faces. */
type Polygon struct {
	Face TriangleFace
	Mode PolygonMode
}

/**
 * @brief The full fixed-function configuration applied when a pipeline binds.
 */
type RenderState struct {
	DepthTest     bool
	DepthWrite    bool
	DepthFunction DepthFunction

	StencilTest      bool
	StencilWrite     bool
	StencilFunction  StencilFunction
	StencilReference int32
	StencilMask      uint32

	CullFace  bool
	FrontFace FrontFace

	Blend             bool
	SourceFactor      BlendFactor
	DestinationFactor BlendFactor
	BlendEquation     BlendEquation

	ColorWrite bool

	Polygon Polygon
}

// DefaultRenderState is the vector a pipeline starts with before any layer is set.
func DefaultRenderState() RenderState {
	return RenderState{
		DepthTest:         true,
		DepthWrite:        true,
		DepthFunction:     DepthFunctionLess,
		StencilTest:       true,
		StencilWrite:      true,
		StencilFunction:   StencilFunctionAlways,
		StencilReference:  0,
		StencilMask:       0xFF,
		CullFace:          true,
		FrontFace:         FrontFaceCounterClockwise,
		Blend:             true,
		SourceFactor:      BlendFactorSrcAlpha,
		DestinationFactor: BlendFactorOneMinusSrcAlpha,
		BlendEquation:     BlendEquationAdd,
		ColorWrite:        true,
		Polygon:           Polygon{Face: TriangleFaceFrontAndBack, Mode: PolygonModeFill},
	}
}

var fill = Polygon{Face: TriangleFaceFrontAndBack, Mode: PolygonModeFill}

var layerStates = map[RenderLayer]RenderState{
	RenderLayerBackground: {
		DepthTest: true, DepthWrite: true, DepthFunction: DepthFunctionLessOrEqual,
		StencilTest: false, StencilWrite: false, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
		CullFace: false, FrontFace: FrontFaceCounterClockwise,
		Blend: false, SourceFactor: BlendFactorOne, DestinationFactor: BlendFactorZero, BlendEquation: BlendEquationAdd,
		ColorWrite: true,
		Polygon:    fill,
	},
	RenderLayerGeometry: {
		DepthTest: true, DepthWrite: true, DepthFunction: DepthFunctionLess,
		StencilTest: true, StencilWrite: true, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
		CullFace: true, FrontFace: FrontFaceCounterClockwise,
		Blend: false, SourceFactor: BlendFactorOne, DestinationFactor: BlendFactorZero, BlendEquation: BlendEquationAdd,
		ColorWrite: true,
		Polygon:    fill,
	},
	RenderLayerOpaque: {
		DepthTest: true, DepthWrite: true, DepthFunction: DepthFunctionLess,
		StencilTest: true, StencilWrite: true, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
		CullFace: true, FrontFace: FrontFaceCounterClockwise,
		Blend: false, SourceFactor: BlendFactorOne, DestinationFactor: BlendFactorZero, BlendEquation: BlendEquationAdd,
		ColorWrite: true,
		Polygon:    fill,
	},
	RenderLayerTransparent: {
		DepthTest: true, DepthWrite: false, DepthFunction: DepthFunctionLess,
		StencilTest: true, StencilWrite: true, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
		CullFace: true, FrontFace: FrontFaceCounterClockwise,
		Blend: true, SourceFactor: BlendFactorSrcAlpha, DestinationFactor: BlendFactorOneMinusSrcAlpha, BlendEquation: BlendEquationAdd,
		ColorWrite: true,
		Polygon:    fill,
	},
	RenderLayerOverlay: {
		DepthTest: false, DepthWrite: false, DepthFunction: DepthFunctionLess,
		StencilTest: false, StencilWrite: false, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
		CullFace: false, FrontFace: FrontFaceCounterClockwise,
		Blend: true, SourceFactor: BlendFactorSrcAlpha, DestinationFactor: BlendFactorOneMinusSrcAlpha, BlendEquation: BlendEquationAdd,
		ColorWrite: true,
		Polygon:    fill,
	},
}

// LayerState returns the complete state vector of a render layer.
func LayerState(layer RenderLayer) (RenderState, error) {
	state, ok := layerStates[layer]
	if !ok {
		return RenderState{}, fmt.Errorf("render layer %s: %w", layer, core.ErrUnsupportedValue)
	}
	return state, nil
}
