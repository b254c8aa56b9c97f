package loaders

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

var ErrBadSPIRV = errors.New("malformed SPIR-V module")

/**
 * @brief Reads shader stages from disk. Files ending in .spv are checked to be
 * SPIR-V modules, anything else is treated as GLSL source.
 */
type ShaderLoader struct{}

func (sl *ShaderLoader) Load(path string, params interface{}) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("shader %s is empty", path)
	}
	if filepath.Ext(path) == ".spv" {
		if err := ValidateSPIRV(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return data, nil
}

// ValidateSPIRV checks the word alignment and the magic number.
func ValidateSPIRV(b []byte) error {
	if len(b) < 20 || len(b)%4 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrBadSPIRV, len(b))
	}
	if words := bytesToBytecode(b[:4]); words[0] != SPIRVMagic {
		return fmt.Errorf("%w: magic %#08x", ErrBadSPIRV, words[0])
	}
	return nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}
	return byteCode
}
