package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifest = `<?xml version="1.0" encoding="utf-8"?>
<manifest xmlns:android="http://schemas.android.com/apk/res/android" package="com.example">
    <application android:label="Example">
        <activity android:name="com.example.Main" android:exported="true">
            <intent-filter>
                <action android:name="android.intent.action.MAIN"/>
            </intent-filter>
        </activity>
        <activity android:name="com.example.Hidden" android:exported="false">
            <intent-filter/>
        </activity>
        <activity android:name="com.example.NoFilter" android:exported="true"/>
        <service android:name="com.example.Sync" android:exported="true">
            <intent-filter/>
        </service>
        <receiver android:name="com.example.Boot" android:exported="true">
            <intent-filter/>
        </receiver>
        <activity android:name="com.example.Second" android:exported="true">
            <intent-filter/>
        </activity>
    </application>
</manifest>
`

func parseString(t *testing.T, s string) *Element {
	t.Helper()
	root, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return root
}

func names(components []Component) []string {
	var out []string
	for _, c := range components {
		out = append(out, c.Type.Title()+":"+c.Name)
	}
	return out
}

func TestExportedIntentComponentsOrder(t *testing.T) {
	got := names(ExportedIntentComponents(parseString(t, sampleManifest)))
	want := []string{
		"Activity:com.example.Main",
		"Activity:com.example.Second",
		"Receiver:com.example.Boot",
		"Service:com.example.Sync",
	}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("components mismatch.\nExpected: %v\nGot:      %v", want, got)
	}
}

func TestExportedAttributeIsLiteral(t *testing.T) {
	tests := []struct {
		name     string
		attrs    string
		children string
		want     bool
	}{
		{"exported true with filter", `android:exported="true"`, `<intent-filter/>`, true},
		{"exported absent", ``, `<intent-filter/>`, false},
		{"exported false", `android:exported="false"`, `<intent-filter/>`, false},
		{"exported capitalised", `android:exported="True"`, `<intent-filter/>`, false},
		{"exported one", `android:exported="1"`, `<intent-filter/>`, false},
		{"exported without namespace", `exported="true"`, `<intent-filter/>`, false},
		{"no intent filter", `android:exported="true"`, `<meta-data android:name="x"/>`, false},
		{"several filters", `android:exported="true"`, `<intent-filter/><intent-filter/>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `<manifest xmlns:android="http://schemas.android.com/apk/res/android"><application>` +
				`<activity android:name="a.B" ` + tt.attrs + `>` + tt.children + `</activity>` +
				`</application></manifest>`
			got := len(ExportedIntentComponents(parseString(t, doc))) == 1
			if got != tt.want {
				t.Errorf("expected included=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestIntentFilterMustBeDirectChild(t *testing.T) {
	doc := `<manifest xmlns:android="http://schemas.android.com/apk/res/android"><application>
		<activity android:name="a.Deep" android:exported="true">
			<wrapper><inner><intent-filter/></inner></wrapper>
		</activity>
	</application></manifest>`
	if got := ExportedIntentComponents(parseString(t, doc)); len(got) != 0 {
		t.Errorf("expected no components, got %v", names(got))
	}
}

func TestComponentsFoundAtAnyDepth(t *testing.T) {
	doc := `<manifest xmlns:android="http://schemas.android.com/apk/res/android">
		<extra><application><nested>
			<service android:name="a.Svc" android:exported="true"><intent-filter/></service>
		</nested></application></extra>
	</manifest>`
	got := ExportedIntentComponents(parseString(t, doc))
	if len(got) != 1 || got[0].Name != "a.Svc" || got[0].Type != Service {
		t.Errorf("unexpected components: %v", names(got))
	}
}

func TestMissingNameIsKept(t *testing.T) {
	doc := `<manifest xmlns:android="http://schemas.android.com/apk/res/android"><application>
		<receiver android:exported="true"><intent-filter/></receiver>
	</application></manifest>`
	got := ExportedIntentComponents(parseString(t, doc))
	if len(got) != 1 {
		t.Fatalf("expected 1 component, got %d", len(got))
	}
	if got[0].Name != "" {
		t.Errorf("expected empty name, got %q", got[0].Name)
	}
}

func TestAttributeUsesNamespaceURI(t *testing.T) {
	doc := `<manifest xmlns:a="http://schemas.android.com/apk/res/android"><application>
		<activity a:name="x.Y" a:exported="true"><intent-filter/></activity>
	</application></manifest>`
	got := ExportedIntentComponents(parseString(t, doc))
	if len(got) != 1 || got[0].Name != "x.Y" {
		t.Errorf("expected x.Y through a custom prefix, got %v", names(got))
	}
}

func TestFindExportedIntentComponentsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`<manifest><application>`), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	_, err := FindExportedIntentComponents(path)
	var malformed *MalformedManifestError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedManifestError, got %v", err)
	}
	if malformed.Path != path {
		t.Errorf("expected path %s, got %s", path, malformed.Path)
	}
}

func TestFindExportedIntentComponentsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	var malformed *MalformedManifestError
	if _, err := FindExportedIntentComponents(path); !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedManifestError, got %v", err)
	}
}

func TestFindExportedIntentComponentsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	got, err := FindExportedIntentComponents(path)
	if err != nil {
		t.Fatalf("FindExportedIntentComponents failed: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("expected 4 components, got %v", names(got))
	}
}

func TestLocate(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, FileName), []byte("<manifest/>"), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}

	got, err := Locate(context.Background(), root)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != filepath.Join(nested, FileName) {
		t.Errorf("expected %s, got %s", filepath.Join(nested, FileName), got)
	}

	// A manifest in the root wins over deeper copies.
	if err := os.WriteFile(filepath.Join(root, FileName), []byte("<manifest/>"), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	got, err = Locate(context.Background(), root)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != filepath.Join(root, FileName) {
		t.Errorf("expected root manifest, got %s", got)
	}
}

func TestLocateChecksFilesBeforeSubdirectories(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	inner := filepath.Join(app, "AAA")
	if err := os.MkdirAll(inner, 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	for _, dir := range []string{app, inner} {
		if err := os.WriteFile(filepath.Join(dir, FileName), []byte("<manifest/>"), 0644); err != nil {
			t.Fatalf("Failed to write manifest: %v", err)
		}
	}
	got, err := Locate(context.Background(), root)
	if err != nil {
		t.Fatalf("Locate failed: %v", err)
	}
	if got != filepath.Join(app, FileName) {
		t.Errorf("expected %s, got %s", filepath.Join(app, FileName), got)
	}
}

func TestLocateIgnoresDirectoryNamedLikeManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, FileName), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if _, err := Locate(context.Background(), root); !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestLocateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Locate(ctx, t.TempDir()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestIsBinary(t *testing.T) {
	if !IsBinary([]byte{0x03, 0x00, 0x08, 0x00, 0x10, 0x00, 0x00, 0x00}) {
		t.Error("expected AXML header to be detected")
	}
	if IsBinary([]byte(sampleManifest)) {
		t.Error("text manifest detected as binary")
	}
	if IsBinary([]byte{0x03, 0x00}) {
		t.Error("short input detected as binary")
	}
}

func TestLoadTextPassThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(sampleManifest), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(data) != sampleManifest {
		t.Error("text manifest was modified by Load")
	}
}

func TestLoadBinary(t *testing.T) {
	path := filepath.Join("testdata", "compiled", FileName)
	data, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if IsBinary(data) {
		t.Fatal("Load returned undecoded AXML")
	}

	root, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("Parse of decoded manifest failed: %v\n%s", err, data)
	}
	if pkg, _ := root.Attribute("", "package"); pkg != "com.example" {
		t.Errorf("expected package com.example, got %q", pkg)
	}

	got := Components(root)
	want := []Component{
		{Type: Activity, Name: "com.example.Main", Exported: true, HasIntentFilter: true},
		{Type: Activity, Name: "com.example.Hidden", Exported: false, HasIntentFilter: true},
		{Type: Receiver, Name: "com.example.Boot", Exported: true, HasIntentFilter: true},
		{Type: Service, Name: "com.example.Sync", Exported: true, HasIntentFilter: false},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d components, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("component %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestFindExportedIntentComponentsBinary(t *testing.T) {
	got, err := FindExportedIntentComponents(filepath.Join("testdata", "compiled", FileName))
	if err != nil {
		t.Fatalf("FindExportedIntentComponents failed: %v", err)
	}
	want := "Activity:com.example.Main,Receiver:com.example.Boot"
	if strings.Join(names(got), ",") != want {
		t.Errorf("expected %s, got %v", want, names(got))
	}
}

func TestLocateMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "gone")
	if _, err := Locate(context.Background(), root); !errors.Is(err, ErrManifestNotFound) {
		t.Errorf("expected ErrManifestNotFound, got %v", err)
	}
}
