// ABOUTME: Package documentation for the audio types package
// ABOUTME: Explains the capability interfaces and buffer conventions
//
// Package audio defines the interleaved buffer type, device descriptors,
// and the small capability interfaces (Interface, Provider, Consumer)
// that every audio endpoint in the module implements. The remote facades
// in internal/remote are drop-in substitutes for any local implementation
// of these interfaces.
package audio
