// Package shader holds the built-in WGSL programs and validates shader
// source before it reaches a device.
//
// Validation runs the WGSL front end of naga (parse, lower, validate) on the
// CPU, so broken shaders are reported with source positions instead of as
// opaque pipeline creation failures. A Library can overlay the embedded
// sources with files from a directory, which is what hot reload uses.
package shader
