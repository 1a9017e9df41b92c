// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for parsing grid files, decoding their blocks
// into schema structs, and translating attribute values (via cty) into the
// format-agnostic config model.
package hcl
