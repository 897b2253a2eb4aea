// Package radio owns the radio test domain model.
//
// Ownership boundary:
// - radio parameter configuration and its bounds
// - test descriptors (one concrete type per test kind)
// - the Engine contract implemented by hardware or simulation
package radio
