//go:build mage

package main

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
)

const shaderRoot = "assets/shaders"

type Build mg.Namespace

// Compiles every GLSL stage under assets/shaders into a SPIR-V blob next to it.
func (Build) Shaders() error {
	return buildShaders()
}

// Builds the engine binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/triangle", "."), withStream())
	return err
}

func buildShaders() error {
	return filepath.WalkDir(shaderRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".vert" && ext != ".frag" {
			return nil
		}
		out := path + ".spv"
		if upToDate(path, out) {
			return nil
		}
		_, err = executeCmd("glslc", withArgs("--target-env=opengl", "-o", out, path))
		return err
	})
}

func cleanShaders() error {
	return filepath.WalkDir(shaderRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".spv") {
			return err
		}
		return removeFile(path)
	})
}
