package analyzer

import (
	"github.com/mathis2001/Triplex/internal/manifest"
	"github.com/mathis2001/Triplex/internal/smali"
)

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

// Fatal conditions detected at stage boundaries.
const (
	ErrPathNotFound           = Error("repository path does not exist")
	ErrManifestNotFound       = manifest.ErrManifestNotFound
	ErrNoQualifyingComponents = Error("no exported components with intents found")
	ErrNoDisassemblyFound     = Error("no smali files found")
)

type (
	MalformedManifestError = manifest.MalformedManifestError
	FileReadError          = smali.FileReadError
)
