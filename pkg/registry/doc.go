// Package registry provides a generic, type-safe registry system
// used to map dependency names to their descriptors. It supports
// automatic registration through init() functions.
package registry
