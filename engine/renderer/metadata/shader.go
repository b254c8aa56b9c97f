package metadata

import "fmt"

type ShaderType int

const (
	ShaderTypeVertex ShaderType = iota
	ShaderTypeFragment
	ShaderTypeGeometry
	ShaderTypeCompute
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	case ShaderTypeGeometry:
		return "geometry"
	case ShaderTypeCompute:
		return "compute"
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

/** @brief SPIR-V modules start with this word in little endian. */
const SPIRVMagic uint32 = 0x07230203

// IsSPIRV reports whether blob is a SPIR-V module rather than GLSL source.
func IsSPIRV(blob []byte) bool {
	if len(blob) < 4 || len(blob)%4 != 0 {
		return false
	}
	word := uint32(blob[0]) | uint32(blob[1])<<8 | uint32(blob[2])<<16 | uint32(blob[3])<<24
	return word == SPIRVMagic
}
