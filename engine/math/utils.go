package math

import (
	"sync"
	"time"

	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/rand"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = math32.Pi
	/** @brief An approximate representation of PI multiplied by 2. */
	K_PI_2 float32 = 2.0 * K_PI
	/** @brief An approximate representation of PI divided by 2. */
	K_HALF_PI float32 = 0.5 * K_PI
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

func RadToDeg(radians float32) float32 {
	return radians * K_RAD2DEG_MULTIPLIER
}

// Log2 and Pow are exposed for material parameter math.
func Log2(x float32) float32 {
	return math32.Log2(x)
}

func Pow(x, y float32) float32 {
	return math32.Pow(x, y)
}

func Floor(x float32) float32 {
	return math32.Floor(x)
}

func Sin(x float32) float32 {
	return math32.Sin(x)
}

func Cos(x float32) float32 {
	return math32.Cos(x)
}

func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

var (
	randOnce sync.Once
	randMu   sync.Mutex
	rng      *rand.Rand
)

func random() *rand.Rand {
	randOnce.Do(func() {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	})
	return rng
}

// SeedRandom makes RandomInRange deterministic, mostly for tests.
func SeedRandom(seed uint64) {
	r := random()
	randMu.Lock()
	r.Seed(seed)
	randMu.Unlock()
}

// RandomInRange returns a float in [min, max).
func RandomInRange(min, max float32) float32 {
	r := random()
	randMu.Lock()
	f := r.Float32()
	randMu.Unlock()
	return min + f*(max-min)
}
