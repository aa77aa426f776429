// Package patch provides helpers for parsing and applying unified-diff style patches.
//
// The package is the engine behind patchview's interactive shell, but it is kept free of
// I/O and UI concerns so that it can be reused by other tools. It exposes primitives to
// parse diff text into structured patches, apply them to in-memory documents with strict
// or fuzzy anchoring, and analyze the resulting change blocks for navigation. Adapters
// for the filesystem and for in-memory document maps live alongside the engine.
package patch
