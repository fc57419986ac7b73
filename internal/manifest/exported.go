package manifest

import (
	"bytes"
)

// Components returns every activity, receiver and service declared below
// root. Types are grouped in ComponentTypes order, document order within a
// type.
func Components(root *Element) []Component {
	var out []Component
	for _, t := range ComponentTypes {
		for _, el := range root.Descendants(t.String()) {
			exported, _ := el.Attribute(AndroidNS, "exported")
			name, _ := el.Attribute(AndroidNS, "name")
			out = append(out, Component{
				Type:            t,
				Name:            name,
				Exported:        exported == "true",
				HasIntentFilter: el.HasChild(intentFilterTag),
			})
		}
	}
	return out
}

// ExportedIntentComponents filters Components down to the ones that are
// exported and declare an intent filter. A component without a name is kept
// with an empty Name.
func ExportedIntentComponents(root *Element) []Component {
	var out []Component
	for _, c := range Components(root) {
		if c.Reachable() {
			out = append(out, c)
		}
	}
	return out
}

// FindExportedIntentComponents loads the manifest at path and returns its
// exported, intent-filtered components. An unparsable manifest yields a
// *MalformedManifestError.
func FindExportedIntentComponents(path string) ([]Component, error) {
	data, err := Load(path)
	if err != nil {
		return nil, err
	}
	root, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedManifestError{Path: path, Err: err}
	}
	return ExportedIntentComponents(root), nil
}
