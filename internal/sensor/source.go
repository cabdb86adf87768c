package sensor

import "math/rand"

// Source yields integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

func NewRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Constant is a Source that always returns the same value, clamped to n-1.
type Constant int

func (c Constant) Intn(n int) int {
	if int(c) >= n {
		return n - 1
	}
	if c < 0 {
		return 0
	}
	return int(c)
}

// Jitter returns a symmetric offset in [-50/scale, 49/scale].
func Jitter(src Source, scale float64) float64 {
	return float64(src.Intn(100)-50) / scale
}

type Spectrum struct {
	Wavelength float64 `yaml:"wavelength" cbor:"wavelength"`
	Intensity  float64 `yaml:"intensity" cbor:"intensity"`
	Noise      float64 `yaml:"noise" cbor:"noise"`
	Source     string  `yaml:"source" cbor:"source"`
}

// ReadSpectrum samples a spectral reading: wavelength 500-600 nm,
// intensity 0.5-1.49 and noise 0-0.099.
func ReadSpectrum(src Source, origin string) Spectrum {
	return Spectrum{
		Wavelength: 500.0 + float64(src.Intn(1000))/10.0,
		Intensity:  0.5 + float64(src.Intn(100))/100.0,
		Noise:      float64(src.Intn(100)) / 1000.0,
		Source:     origin,
	}
}

type Environment struct {
	Temperature    float64 `yaml:"temperature" cbor:"temperature"`
	Humidity       float64 `yaml:"humidity" cbor:"humidity"`
	Pressure       float64 `yaml:"pressure" cbor:"pressure"`
	MagneticField  float64 `yaml:"magnetic_field" cbor:"magnetic_field"`
	RadiationLevel float64 `yaml:"radiation_level" cbor:"radiation_level"`
}

// Fluctuate perturbs every reading by up to ±5 units.
func (e *Environment) Fluctuate(src Source) {
	e.Temperature += Jitter(src, 10)
	e.Humidity += Jitter(src, 10)
	e.Pressure += Jitter(src, 10)
	e.MagneticField += Jitter(src, 10)
	e.RadiationLevel += Jitter(src, 10)
}
