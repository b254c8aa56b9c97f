// Package pbr bakes the image based lighting maps of a sky: an environment
// cube map, its diffuse irradiance, the roughness prefiltered mip chain and
// the split sum BRDF lookup table.
package pbr

import (
	"fmt"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/materials"
	"github.com/spaghettifunk/triangle/engine/math"
	"github.com/spaghettifunk/triangle/engine/renderer"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

const (
	// MaxMipLevels is the last mip level of the prefiltered map.
	MaxMipLevels = 4

	EnvironmentSize = 1024
	IrradianceSize  = 64
	PrefilterSize   = 256
	BRDFSize        = 512
)

// FaceView is the look direction and up vector used to render one cube face.
type FaceView struct {
	Face   metadata.CubeMapFace
	Target math.Vec3
	Up     math.Vec3
}

// FaceViews lists the six capture directions in face order.
var FaceViews = [6]FaceView{
	{metadata.CubeMapFacePositiveX, math.NewVec3(1, 0, 0), math.NewVec3(0, -1, 0)},
	{metadata.CubeMapFaceNegativeX, math.NewVec3(-1, 0, 0), math.NewVec3(0, -1, 0)},
	{metadata.CubeMapFacePositiveY, math.NewVec3(0, 1, 0), math.NewVec3(0, 0, 1)},
	{metadata.CubeMapFaceNegativeY, math.NewVec3(0, -1, 0), math.NewVec3(0, 0, -1)},
	{metadata.CubeMapFacePositiveZ, math.NewVec3(0, 0, 1), math.NewVec3(0, -1, 0)},
	{metadata.CubeMapFaceNegativeZ, math.NewVec3(0, 0, -1), math.NewVec3(0, -1, 0)},
}

// View returns the capture view matrix of the face, looking out from the origin.
func (f FaceView) View() math.Mat4 {
	return math.NewMat4LookAt(math.NewVec3Zero(), f.Target, f.Up)
}

// CaptureProjection covers exactly one cube face.
func CaptureProjection() math.Mat4 {
	return math.NewMat4Perspective(math.DegToRad(90), 1, 0.1, 10)
}

// PrefilterRoughness is the roughness convolved into the given mip level.
func PrefilterRoughness(level int) float32 {
	return float32(level) / float32(MaxMipLevels)
}

/**
 * @brief Owns the capture frames, the four baking materials and the baked
 * maps. The maps keep their handles across bakes so materials sampling them
 * can hold on to the pointers.
 */
type Baker struct {
	Environment *renderer.CubeMap
	Irradiance  *renderer.CubeMap
	Prefiltered *renderer.CubeMap

	cube   *renderer.Mesh
	canvas *renderer.Mesh
	faces  [6]*renderer.Frame
	lut    *renderer.Frame

	equirect   *materials.EquirectangularToCubemap
	irradiance *materials.IrradianceConvolution
	prefilter  *materials.Prefilter
	brdf       *materials.BRDF
}

// NewBaker builds the baking materials. cube is drawn around the capture
// camera; canvas is the full screen quad used for the lookup table.
func NewBaker(res materials.Resources, cube, canvas *renderer.Mesh) (*Baker, error) {
	if cube == nil || canvas == nil {
		return nil, fmt.Errorf("pbr baker needs a cube and a canvas mesh: %w", core.ErrInvalidArgument)
	}
	b := &Baker{cube: cube, canvas: canvas}

	var err error
	if b.equirect, err = materials.NewEquirectangularToCubemap(res); err != nil {
		return nil, err
	}
	if b.irradiance, err = materials.NewIrradianceConvolution(res); err != nil {
		b.Destroy()
		return nil, err
	}
	if b.prefilter, err = materials.NewPrefilter(res); err != nil {
		b.Destroy()
		return nil, err
	}
	if b.brdf, err = materials.NewBRDF(res); err != nil {
		b.Destroy()
		return nil, err
	}

	for i := range b.faces {
		b.faces[i] = renderer.NewFrame(res.Context)
	}
	b.lut = renderer.NewFrame(res.Context)

	b.Environment = renderer.NewCubeMap(res.Context)
	b.Environment.SetMinFilter(metadata.TextureFilterLinearMipmapLinear)
	b.Irradiance = renderer.NewCubeMap(res.Context)
	b.Prefiltered = renderer.NewCubeMap(res.Context)
	b.Prefiltered.SetMinFilter(metadata.TextureFilterLinearMipmapLinear)
	return b, nil
}

// BRDF is the baked lookup table. It is empty until GenerateBRDFLUT ran.
func (b *Baker) BRDF() *renderer.Texture {
	return b.lut.Texture()
}

/**
 * @brief Runs every bake step against the equirectangular sky. Tone mapping
 * of the sky is taken from the skybox material drawing it.
 */
func (b *Baker) Bake(sky *materials.Skybox) error {
	if sky == nil || sky.Channel0 == nil {
		return fmt.Errorf("pbr bake without sky texture: %w", core.ErrInvalidArgument)
	}
	b.equirect.Exposure = sky.Exposure
	b.equirect.Gamma = sky.Gamma
	b.equirect.GammaCorrection = sky.GammaCorrection

	if err := b.GenerateCubeMap(sky.Channel0, EnvironmentSize); err != nil {
		return err
	}
	if err := b.GenerateIrradianceMap(IrradianceSize); err != nil {
		return err
	}
	if err := b.GeneratePrefilteredMap(PrefilterSize); err != nil {
		return err
	}
	if err := b.GenerateBRDFLUT(BRDFSize); err != nil {
		return err
	}
	core.LogInfo("pbr maps baked from %s", sky.Channel0.Name)
	return nil
}

// capture renders the six faces with draw and copies them into target at level.
func (b *Baker) capture(target *renderer.CubeMap, size uint32, level int32, draw func(view math.Mat4) error) error {
	for i, fv := range FaceViews {
		frame := b.faces[i]
		if err := frame.Update(size, size, 1, metadata.PixelFormatRGB16F); err != nil {
			return err
		}
		frame.Bind()
		err := draw(fv.View())
		frame.Unbind()
		if err != nil {
			return fmt.Errorf("pbr capture face %d: %w", fv.Face, err)
		}
	}
	for i, fv := range FaceViews {
		if err := target.WriteFace(b.faces[i].Texture(), fv.Face, level); err != nil {
			return err
		}
	}
	return nil
}

// GenerateCubeMap projects the equirectangular sky onto the environment map.
func (b *Baker) GenerateCubeMap(sky *renderer.Texture, size uint32) error {
	if sky == nil {
		return fmt.Errorf("pbr environment without sky texture: %w", core.ErrInvalidArgument)
	}
	if err := b.Environment.Initialize(size, metadata.PixelFormatRGB16F, renderer.MipLevels(size, size)); err != nil {
		return err
	}
	b.equirect.Channel0 = sky
	err := b.capture(b.Environment, size, 0, func(view math.Mat4) error {
		return b.equirect.Draw([]*renderer.Mesh{b.cube}, view, CaptureProjection())
	})
	if err != nil {
		return err
	}
	b.Environment.GenerateMipmap()
	return nil
}

// GenerateIrradianceMap convolves the environment map into diffuse irradiance.
func (b *Baker) GenerateIrradianceMap(size uint32) error {
	if b.Environment.Size == 0 {
		return fmt.Errorf("pbr irradiance before environment: %w", core.ErrInvalidArgument)
	}
	if err := b.Irradiance.Initialize(size, metadata.PixelFormatRGB16F, 1); err != nil {
		return err
	}
	b.irradiance.Map0 = b.Environment
	return b.capture(b.Irradiance, size, 0, func(view math.Mat4) error {
		return b.irradiance.Draw([]*renderer.Mesh{b.cube}, view, CaptureProjection())
	})
}

// GeneratePrefilteredMap fills mip levels 0..MaxMipLevels with rising roughness.
func (b *Baker) GeneratePrefilteredMap(size uint32) error {
	if b.Environment.Size == 0 {
		return fmt.Errorf("pbr prefilter before environment: %w", core.ErrInvalidArgument)
	}
	if size>>MaxMipLevels == 0 {
		return fmt.Errorf("pbr prefilter size %d below %d mip levels: %w", size, MaxMipLevels+1, core.ErrInvalidArgument)
	}
	if err := b.Prefiltered.Initialize(size, metadata.PixelFormatRGB16F, MaxMipLevels+1); err != nil {
		return err
	}
	b.prefilter.Map0 = b.Environment
	for level := 0; level <= MaxMipLevels; level++ {
		b.prefilter.Roughness = PrefilterRoughness(level)
		err := b.capture(b.Prefiltered, size>>uint32(level), int32(level), func(view math.Mat4) error {
			return b.prefilter.Draw([]*renderer.Mesh{b.cube}, view, CaptureProjection())
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// GenerateBRDFLUT integrates the split sum lookup table.
func (b *Baker) GenerateBRDFLUT(size uint32) error {
	if err := b.lut.Update(size, size, 1, metadata.PixelFormatRG16F); err != nil {
		return err
	}
	b.lut.Bind()
	err := b.brdf.Draw([]*renderer.Mesh{b.canvas})
	b.lut.Unbind()
	return err
}

func (b *Baker) Destroy() {
	for _, f := range b.faces {
		if f != nil {
			f.Destroy()
		}
	}
	if b.lut != nil {
		b.lut.Destroy()
	}
	for _, c := range []*renderer.CubeMap{b.Environment, b.Irradiance, b.Prefiltered} {
		if c != nil {
			c.Destroy()
		}
	}
	if b.equirect != nil {
		b.equirect.Destroy()
	}
	if b.irradiance != nil {
		b.irradiance.Destroy()
	}
	if b.prefilter != nil {
		b.prefilter.Destroy()
	}
	if b.brdf != nil {
		b.brdf.Destroy()
	}
}
