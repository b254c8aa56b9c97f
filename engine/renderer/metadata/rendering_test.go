package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/core"
)

func TestLayerStateTable(t *testing.T) {
	fill := Polygon{Face: TriangleFaceFrontAndBack, Mode: PolygonModeFill}

	tests := []struct {
		layer RenderLayer
		want  RenderState
	}{
		{
			layer: RenderLayerBackground,
			want: RenderState{
				DepthTest: true, DepthWrite: true, DepthFunction: DepthFunctionLessOrEqual,
				StencilTest: false, StencilWrite: false, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
				CullFace: false, FrontFace: FrontFaceCounterClockwise,
				Blend: false, SourceFactor: BlendFactorOne, DestinationFactor: BlendFactorZero, BlendEquation: BlendEquationAdd,
				ColorWrite: true, Polygon: fill,
			},
		},
		{
			layer: RenderLayerGeometry,
			want: RenderState{
				DepthTest: true, DepthWrite: true, DepthFunction: DepthFunctionLess,
				StencilTest: true, StencilWrite: true, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
				CullFace: true, FrontFace: FrontFaceCounterClockwise,
				Blend: false, SourceFactor: BlendFactorOne, DestinationFactor: BlendFactorZero, BlendEquation: BlendEquationAdd,
				ColorWrite: true, Polygon: fill,
			},
		},
		{
			layer: RenderLayerOpaque,
			want: RenderState{
				DepthTest: true, DepthWrite: true, DepthFunction: DepthFunctionLess,
				StencilTest: true, StencilWrite: true, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
				CullFace: true, FrontFace: FrontFaceCounterClockwise,
				Blend: false, SourceFactor: BlendFactorOne, DestinationFactor: BlendFactorZero, BlendEquation: BlendEquationAdd,
				ColorWrite: true, Polygon: fill,
			},
		},
		{
			layer: RenderLayerTransparent,
			want: RenderState{
				DepthTest: true, DepthWrite: false, DepthFunction: DepthFunctionLess,
				StencilTest: true, StencilWrite: true, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
				CullFace: true, FrontFace: FrontFaceCounterClockwise,
				Blend: true, SourceFactor: BlendFactorSrcAlpha, DestinationFactor: BlendFactorOneMinusSrcAlpha, BlendEquation: BlendEquationAdd,
				ColorWrite: true, Polygon: fill,
			},
		},
		{
			layer: RenderLayerOverlay,
			want: RenderState{
				DepthTest: false, DepthWrite: false, DepthFunction: DepthFunctionLess,
				StencilTest: false, StencilWrite: false, StencilFunction: StencilFunctionAlways, StencilReference: 0, StencilMask: 0xFF,
				CullFace: false, FrontFace: FrontFaceCounterClockwise,
				Blend: true, SourceFactor: BlendFactorSrcAlpha, DestinationFactor: BlendFactorOneMinusSrcAlpha, BlendEquation: BlendEquationAdd,
				ColorWrite: true, Polygon: fill,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.layer.String(), func(t *testing.T) {
			got, err := LayerState(tt.layer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLayerStateReturnsCopies(t *testing.T) {
	s, err := LayerState(RenderLayerOpaque)
	require.NoError(t, err)
	s.CullFace = false

	again, err := LayerState(RenderLayerOpaque)
	require.NoError(t, err)
	assert.True(t, again.CullFace)
}

func TestLayerStateUnknown(t *testing.T) {
	_, err := LayerState(RenderLayer(42))
	assert.ErrorIs(t, err, core.ErrUnsupportedValue)
}

func TestPixelFormatSizes(t *testing.T) {
	assert.Equal(t, 4, PixelFormatRGBA8.Size())
	assert.Equal(t, 12, PixelFormatRGB16F.Size())
	assert.Equal(t, 2, PixelFormatRG16F.Channels())

	f, err := PixelFormatFor(3, true)
	require.NoError(t, err)
	assert.Equal(t, PixelFormatRGB16F, f)

	_, err = PixelFormatFor(5, false)
	assert.ErrorIs(t, err, core.ErrUnknownPixelFormat)
}

func TestIsSPIRV(t *testing.T) {
	assert.True(t, IsSPIRV([]byte{0x03, 0x02, 0x23, 0x07, 0, 0, 0, 0}))
	assert.False(t, IsSPIRV([]byte("#version 460 core\n")))
	assert.False(t, IsSPIRV(nil))
}
