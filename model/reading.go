package model

// Reading is one logged observation of received signal power between an
// ordered receiver/transmitter pair at a given simulation time.
// Readings are append-only; they are never mutated or removed.
type Reading struct {
	// Time is the simulation clock when the reading was captured.
	Time float64

	ReceiverID    string
	TransmitterID string

	// PowerDBm is the computed received power at the receiver.
	PowerDBm float64

	// Device model tags of both ends, for downstream grouping.
	ReceiverModel    string
	TransmitterModel string
}
