package domain

import (
	"reflect"
	"testing"
)

func TestKindValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		wantErr bool
	}{
		{"valid", Kind{Schema: "animal", Requires: []Parent{{Schema: "species", Default: "bovine"}}}, false},
		{"no schema", Kind{}, true},
		{"parent without schema", Kind{Schema: "animal", Requires: []Parent{{}}}, true},
		{"requires itself", Kind{Schema: "animal", Requires: []Parent{{Schema: "animal"}}}, true},
		{"duplicate parent", Kind{Schema: "animal", Requires: []Parent{{Schema: "species"}, {Schema: "species"}}}, true},
		{
			name: "field shadows parent",
			kind: Kind{
				Schema:   "animal",
				Defaults: map[string]any{"species": "x"},
				Requires: []Parent{{Schema: "species"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.kind.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKindOptions(t *testing.T) {
	kind := Kind{
		Schema:   "animal",
		Defaults: map[string]any{"legs": 4},
		Requires: []Parent{{Schema: "species", Default: "bovine"}},
	}

	got := kind.Options(nil)
	want := map[string]any{"legs": 4, "species": "bovine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Options(nil) = %v, want %v", got, want)
	}

	got = kind.Options(func(schema string) string {
		if schema == "species" {
			return "equine"
		}
		return ""
	})
	want = map[string]any{"legs": 4, "species": "equine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Options(override) = %v, want %v", got, want)
	}

	if _, ok := kind.Defaults["species"]; ok {
		t.Error("Options modified Defaults")
	}
}

func TestKindParentSchemas(t *testing.T) {
	kind := Kind{
		Schema:   "procedure",
		Defaults: map[string]any{"chip_id": "X123"},
		Requires: []Parent{{Schema: "animal"}, {Schema: "vet"}},
	}

	if got := kind.ParentSchemas(); !reflect.DeepEqual(got, []string{"animal", "vet"}) {
		t.Errorf("ParentSchemas() = %v, want [animal vet]", got)
	}
	if got := (Kind{Schema: "species"}).ParentSchemas(); len(got) != 0 {
		t.Errorf("ParentSchemas() = %v, want none", got)
	}
}
