// Package command defines the typed game-state command set, the registry that
// validates raw command documents, and the extractor that lifts command blocks
// out of generated narrative text.
package command
