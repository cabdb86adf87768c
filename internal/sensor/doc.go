// Package sensor simulates the readings that application classes load
// into their payloads: a seeded random [Source] for environmental and
// spectral values, and a [SimFlight] that integrates a [Glider] with
// [RK4] to produce altitude, airspeed and attitude.
package sensor
