package model

import "math"

// Actor represents a mobile radio device (a phone at a consistent
// position on a person) moving in the simulation plane.
//
// Radio parameters are dB/dBm figures consumed by the Friis
// received-power calculation. Kinematic state keeps a cached
// per-second displacement so position updates avoid trigonometry
// on every tick.
type Actor struct {
	// ID is the unique, immutable identifier of this actor.
	ID string

	// TxPowerDBm is the transmit power in dBm.
	TxPowerDBm float64
	// TxGainDBm is the transmitter antenna gain in dB.
	TxGainDBm float64
	// RxGainDBm is the receiver antenna gain in dB.
	RxGainDBm float64

	// X, Y is the current position in metres.
	X float64
	Y float64

	// Included is true while the actor remains inside the simulation
	// bounds. Once false the actor is permanently dropped.
	Included bool

	// DeviceModel tags the actor with a device-model name for
	// downstream grouping. It carries no simulation semantics.
	DeviceModel string

	angle float64 // heading in radians, north = 0, increasing toward east
	speed float64 // metres per second

	// Per-second displacement, recomputed on SetVelocity. Zero until
	// a velocity is assigned, which makes UpdatePosition a no-op.
	dxPerSec float64
	dyPerSec float64
}

// NewActor constructs an included actor at the origin with the given
// radio parameters and a default device model tag.
func NewActor(id string, txPowerDBm, txGainDBm, rxGainDBm float64) *Actor {
	return &Actor{
		ID:          id,
		TxPowerDBm:  txPowerDBm,
		TxGainDBm:   txGainDBm,
		RxGainDBm:   rxGainDBm,
		Included:    true,
		DeviceModel: "model001",
	}
}

// SetModel replaces the device model tag.
func (a *Actor) SetModel(model string) {
	a.DeviceModel = model
}

// SetPosition overwrites the actor's position. No bounds validation.
func (a *Actor) SetPosition(x, y float64) {
	a.X = x
	a.Y = y
}

// SetVelocity assigns a heading (radians, north = 0, rotating toward
// east) and speed (m/s), and recomputes the cached per-second
// displacement components. Calling it again fully replaces the prior
// velocity.
func (a *Actor) SetVelocity(angleRadians, speed float64) {
	a.angle = angleRadians
	a.speed = speed
	a.dxPerSec = math.Sin(angleRadians) * speed
	a.dyPerSec = math.Cos(angleRadians) * speed
}

// Velocity reports the heading and speed last assigned via SetVelocity.
func (a *Actor) Velocity() (angleRadians, speed float64) {
	return a.angle, a.speed
}

// UpdatePosition advances the position by the cached displacement times
// the elapsed seconds. A no-op until SetVelocity has been called.
func (a *Actor) UpdatePosition(secondsElapsed float64) {
	a.X += a.dxPerSec * secondsElapsed
	a.Y += a.dyPerSec * secondsElapsed
}

// ReceivedPowerDBm computes this actor's received power for a
// transmission from another device using the free-space Friis formula:
//
//	rxGain + txPower + txGain + 20·log10(wavelength / (4π·distance))
//
// The result is only physically meaningful when distance exceeds the
// wavelength; distance zero is a caller error (division by zero).
func (a *Actor) ReceivedPowerDBm(wavelength, distance, otherTxPowerDBm, otherTxGainDBm float64) float64 {
	operand := wavelength / (4 * math.Pi * distance)
	return a.RxGainDBm + otherTxPowerDBm + otherTxGainDBm + 20*math.Log10(operand)
}
