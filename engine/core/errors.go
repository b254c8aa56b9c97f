package core

import (
	"errors"
	"strings"
)

var (
	ErrShaderLink         = errors.New("shader program link failed")
	ErrShaderCompile      = errors.New("shader compile failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrUnsupportedValue   = errors.New("unsupported value")
	ErrUnknownPixelFormat = errors.New("unknown pixel format")
	ErrTextureNotFound    = errors.New("texture not found")
)

// ShaderLinkError holds the driver log produced by a failed program link.
type ShaderLinkError struct {
	Log string
}

func (e *ShaderLinkError) Error() string {
	return "shader program link failed: " + strings.TrimSpace(e.Log)
}

func (e *ShaderLinkError) Unwrap() error {
	return ErrShaderLink
}

// ShaderCompileError holds the driver log produced by a failed stage compile.
type ShaderCompileError struct {
	Path string
	Log  string
}

func (e *ShaderCompileError) Error() string {
	return "shader compile failed (" + e.Path + "): " + strings.TrimSpace(e.Log)
}

func (e *ShaderCompileError) Unwrap() error {
	return ErrShaderCompile
}
