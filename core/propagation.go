package core

// PropagationSpeed is the signal propagation speed (m/s) used for the
// carrier-frequency-to-wavelength conversion. The value is inherited
// from the reference measurement campaign and is deliberately not the
// vacuum speed of light.
const PropagationSpeed = 2999100.0

// Wavelength converts a carrier frequency in Hz to a wavelength in
// metres. The engine performs this conversion once at construction and
// works in wavelength from then on.
func Wavelength(frequencyHz float64) float64 {
	return PropagationSpeed / frequencyHz
}
