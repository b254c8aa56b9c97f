package renderer_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
	"github.com/spaghettifunk/triangle/engine/renderer/rendertest"
)

var shaderFS = fstest.MapFS{
	"shaders/unlit.vert": {Data: []byte("#version 460\nvoid main() {}\n")},
	"shaders/unlit.frag": {Data: []byte("#version 460\nvoid main() {}\n")},
	"shaders/broken.frag": {Data: []byte("#version 460\nvoid main() {\n")},
}

func compileStages(t *testing.T, ctx renderer.Context) []*renderer.Shader {
	t.Helper()
	vert, err := renderer.NewShader(ctx, metadata.ShaderTypeVertex, shaderFS, "shaders/unlit.vert")
	require.NoError(t, err)
	frag, err := renderer.NewShader(ctx, metadata.ShaderTypeFragment, shaderFS, "shaders/unlit.frag")
	require.NoError(t, err)
	return []*renderer.Shader{vert, frag}
}

func TestShaderCompileFailureReleasesHandle(t *testing.T) {
	ctx := rendertest.NewContext()
	ctx.CompileLog = func(blob []byte) string {
		if blob[len(blob)-2] == '{' {
			return "0:2: syntax error: unexpected end of file"
		}
		return ""
	}

	_, err := renderer.NewShader(ctx, metadata.ShaderTypeFragment, shaderFS, "shaders/broken.frag")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrShaderCompile))
	assert.Equal(t, 0, ctx.Live(rendertest.KindShader))

	_, err = renderer.NewShader(ctx, metadata.ShaderTypeFragment, shaderFS, "shaders/missing.frag")
	assert.Error(t, err)
}

func TestPipelineLinkFailureDestroysProgram(t *testing.T) {
	ctx := rendertest.NewContext()
	stages := compileStages(t, ctx)
	ctx.LinkLog = "error: vertex output 'vUV' not consumed"

	p, err := renderer.NewRenderPipeline(ctx, stages...)
	require.Error(t, err)
	assert.Nil(t, p)

	var linkErr *core.ShaderLinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Equal(t, ctx.LinkLog, linkErr.Log)
	assert.True(t, errors.Is(err, core.ErrShaderLink))

	assert.Equal(t, 0, ctx.Live(rendertest.KindProgram))
	assert.Equal(t, 1, ctx.Count(rendertest.OpProgramDelete))
	assert.Equal(t, 2, ctx.Count(rendertest.OpProgramDetach))
}

func TestPipelineWithoutStages(t *testing.T) {
	ctx := rendertest.NewContext()
	_, err := renderer.NewRenderPipeline(ctx)
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())
}

func TestPipelineSetRenderLayer(t *testing.T) {
	ctx := rendertest.NewContext()
	p, err := renderer.NewRenderPipeline(ctx, compileStages(t, ctx)...)
	require.NoError(t, err)
	assert.Equal(t, metadata.DefaultRenderState(), p.State())

	layers := []metadata.RenderLayer{
		metadata.RenderLayerBackground,
		metadata.RenderLayerGeometry,
		metadata.RenderLayerOpaque,
		metadata.RenderLayerTransparent,
		metadata.RenderLayerOverlay,
	}
	for _, layer := range layers {
		require.NoError(t, p.SetRenderLayer(layer))
		want, err := metadata.LayerState(layer)
		require.NoError(t, err)
		assert.Equal(t, want, p.State(), layer.String())
		assert.Equal(t, layer, p.RenderLayer())
	}

	tweaked := p.State()
	tweaked.Polygon.Mode = metadata.PolygonModeLine
	p.SetState(tweaked)
	require.NoError(t, p.SetRenderLayer(metadata.RenderLayerOpaque))
	assert.Equal(t, metadata.PolygonModeFill, p.State().Polygon.Mode)

	before := p.State()
	err = p.SetRenderLayer(metadata.RenderLayer(42))
	assert.ErrorIs(t, err, core.ErrUnsupportedValue)
	assert.Equal(t, before, p.State())
}

func TestPipelineSetUniformUnsupportedType(t *testing.T) {
	ctx := rendertest.NewContext()
	p, err := renderer.NewRenderPipeline(ctx, compileStages(t, ctx)...)
	require.NoError(t, err)
	ctx.Reset()

	err = p.SetUniform("Model", "identity")
	assert.ErrorIs(t, err, core.ErrInvalidArgument)
	assert.Equal(t, 0, ctx.Calls())
}

func TestPipelineInactiveUniformIsIgnored(t *testing.T) {
	ctx := rendertest.NewContext()
	ctx.InactiveUniforms = map[string]bool{"Unused": true}
	p, err := renderer.NewRenderPipeline(ctx, compileStages(t, ctx)...)
	require.NoError(t, err)
	ctx.Reset()

	require.NoError(t, p.SetUniform("Unused", float32(1)))
	assert.Equal(t, 0, ctx.Count(rendertest.OpUniformUpload))
	assert.Equal(t, 1, ctx.Queries())
}

func TestPipelineDrawSequence(t *testing.T) {
	ctx := rendertest.NewContext()
	p, err := renderer.NewRenderPipeline(ctx, compileStages(t, ctx)...)
	require.NoError(t, err)
	require.NoError(t, p.SetRenderLayer(metadata.RenderLayerOpaque))

	mesh, err := renderer.NewMesh(ctx, "triangle", []math.Vertex3D{
		{Position: math.NewVec3(-1, -1, 0)},
		{Position: math.NewVec3(1, -1, 0)},
		{Position: math.NewVec3(0, 1, 0)},
	}, []uint32{0, 1, 2})
	require.NoError(t, err)
	ctx.Reset()

	p.Bind()
	require.NoError(t, p.SetUniform("Model", math.NewMat4Identity()))
	mesh.Draw()
	p.Unbind()

	opaque, err := metadata.LayerState(metadata.RenderLayerOpaque)
	require.NoError(t, err)

	assert.Equal(t, []rendertest.Command{
		{Op: rendertest.OpStateApply, Args: []interface{}{opaque}},
		{Op: rendertest.OpProgramActivate, Args: []interface{}{p.Handle()}},
		{Op: rendertest.OpUniformUpload, Args: []interface{}{"Model", math.NewMat4Identity()}},
		{Op: rendertest.OpDrawCall, Args: []interface{}{mesh.Handle(), int32(3), int32(1)}},
		{Op: rendertest.OpProgramDeactivate, Args: nil},
	}, ctx.Commands())
}
