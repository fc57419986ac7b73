// Package manifest locates and reads AndroidManifest.xml files and reports
// the components an application exposes to other apps.
package manifest

import (
	"fmt"
	"strings"
)

const (
	// FileName is the name the locator searches for.
	FileName = "AndroidManifest.xml"

	// AndroidNS is the platform attribute namespace.
	AndroidNS = "http://schemas.android.com/apk/res/android"

	intentFilterTag = "intent-filter"
)

// Error is a constant error value.
type Error string

func (e Error) Error() string { return string(e) }

const ErrManifestNotFound = Error("AndroidManifest.xml not found")

// MalformedManifestError is returned when a manifest cannot be parsed as XML.
type MalformedManifestError struct {
	Path string
	Err  error
}

func (e *MalformedManifestError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed manifest: %v", e.Err)
	}
	return fmt.Sprintf("malformed manifest %s: %v", e.Path, e.Err)
}

func (e *MalformedManifestError) Unwrap() error { return e.Err }

// ComponentType is the kind of application component declared in a manifest.
type ComponentType int

const (
	Activity ComponentType = iota
	Receiver
	Service
)

// ComponentTypes lists the recognised component types in report order.
var ComponentTypes = []ComponentType{Activity, Receiver, Service}

// String returns the manifest element name of the component type.
func (t ComponentType) String() string {
	switch t {
	case Activity:
		return "activity"
	case Receiver:
		return "receiver"
	case Service:
		return "service"
	}
	return fmt.Sprintf("ComponentType(%d)", int(t))
}

// Title returns the element name with its first letter upper-cased.
func (t ComponentType) Title() string {
	s := t.String()
	return strings.ToUpper(s[:1]) + s[1:]
}

func (t ComponentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Component is a single activity, receiver or service declaration.
type Component struct {
	Type            ComponentType
	Name            string
	Exported        bool
	HasIntentFilter bool
}

// Reachable reports whether other applications can start the component
// through an implicit intent.
func (c Component) Reachable() bool {
	return c.Exported && c.HasIntentFilter
}
