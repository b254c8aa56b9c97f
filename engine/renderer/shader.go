package renderer

import (
	"fmt"
	"io/fs"

	"github.com/spaghettifunk/triangle/engine/core"
	"github.com/spaghettifunk/triangle/engine/renderer/metadata"
)

/** @brief A compiled shader stage. Only needed until the pipeline links. */
type Shader struct {
	resource
	Type metadata.ShaderType
	Path string
}

// NewShader reads an opaque blob from fsys and compiles it as a stage of the given type.
func NewShader(ctx Context, shaderType metadata.ShaderType, fsys fs.FS, path string) (*Shader, error) {
	blob, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read %s shader %s: %w", shaderType, path, err)
	}
	shader, err := NewShaderFromBytes(ctx, shaderType, path, blob)
	if err != nil {
		return nil, err
	}
	return shader, nil
}

func NewShaderFromBytes(ctx Context, shaderType metadata.ShaderType, path string, blob []byte) (*Shader, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("shader %s is empty: %w", path, core.ErrInvalidArgument)
	}
	handle := ctx.CreateShader(shaderType)
	if ok, log := ctx.CompileShader(handle, blob); !ok {
		ctx.DeleteShader(handle)
		core.LogError("failed to compile %s shader %s: %s", shaderType, path, log)
		return nil, &core.ShaderCompileError{Path: path, Log: log}
	}
	s := &Shader{Type: shaderType, Path: path}
	s.init(ctx, handle, func() { ctx.DeleteShader(handle) })
	return s, nil
}
