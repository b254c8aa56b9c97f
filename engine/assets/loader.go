package assets

import (
	"path/filepath"
	"strings"
)

type Loader interface {
	// Load returns the decoded asset; the concrete type depends on the loader.
	Load(path string, params interface{}) (interface{}, error)
}

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeImage
	AssetTypeShader
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeImage:
		return "image"
	case AssetTypeShader:
		return "shader"
	}
	return "none"
}

func determineAssetType(path string) AssetType {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".spv" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	switch ext {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".hdr":
		return AssetTypeImage
	case ".vert", ".frag":
		return AssetTypeShader
	default:
		return AssetTypeNone
	}
}
