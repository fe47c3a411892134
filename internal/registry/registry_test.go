package registry

import (
	"errors"
	"testing"

	"github.com/ComparePower/go-payload-migrate/pkg/interfaces"
)

func blockDef(name string) interfaces.ComponentDefinition {
	return interfaces.ComponentDefinition{
		Name:        name,
		Status:      interfaces.ComponentStatusImplemented,
		Type:        interfaces.ComponentTypeBlock,
		RenderBlock: true,
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := New()
	def := blockDef("RatesTable")
	def.Fields = []string{"provider", "limit"}
	if err := reg.Register(def); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := reg.Lookup("RatesTable")
	if !ok {
		t.Fatal("Lookup missed a registered component")
	}
	if got.Name != "RatesTable" || !got.RenderBlock || len(got.Fields) != 2 {
		t.Fatalf("Lookup = %#v", got)
	}

	if _, ok := reg.Lookup("PhoneCta"); ok {
		t.Fatal("Lookup found an unregistered component")
	}
}

func TestRegistryLookupFoldsCase(t *testing.T) {
	reg := New()
	if err := reg.Register(blockDef("RatesTable")); err != nil {
		t.Fatalf("Register: %v", err)
	}

	got, ok := reg.Lookup("ratestable")
	if !ok || got.Name != "RatesTable" {
		t.Fatalf("folded lookup = %#v, %v", got, ok)
	}
}

func TestRegistryRejectsInvalidDefinitions(t *testing.T) {
	cases := []struct {
		name string
		def  interfaces.ComponentDefinition
	}{
		{"empty name", interfaces.ComponentDefinition{Status: interfaces.ComponentStatusImplemented, Type: interfaces.ComponentTypeBlock}},
		{"lowercase name", interfaces.ComponentDefinition{Name: "ratesTable", Status: interfaces.ComponentStatusImplemented, Type: interfaces.ComponentTypeBlock}},
		{"name with dash", interfaces.ComponentDefinition{Name: "Rates-Table", Status: interfaces.ComponentStatusImplemented, Type: interfaces.ComponentTypeBlock}},
		{"unknown status", interfaces.ComponentDefinition{Name: "RatesTable", Status: "done", Type: interfaces.ComponentTypeBlock}},
		{"unknown type", interfaces.ComponentDefinition{Name: "RatesTable", Status: interfaces.ComponentStatusImplemented, Type: "widget"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := New().Register(tc.def); !errors.Is(err, ErrInvalidDefinition) {
				t.Fatalf("Register = %v, want ErrInvalidDefinition", err)
			}
		})
	}
}

func TestRegistryRejectsCaseFoldedDuplicates(t *testing.T) {
	reg := New()
	if err := reg.Register(blockDef("RatesTable")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	err := reg.Register(blockDef("Ratestable"))
	if !errors.Is(err, ErrDuplicateComponent) {
		t.Fatalf("Register = %v, want ErrDuplicateComponent", err)
	}
}

func TestRegistryListSortedByName(t *testing.T) {
	reg := New()
	for _, name := range []string{"VrpSection", "Phone", "RatesTable"} {
		if err := reg.Register(blockDef(name)); err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
	}

	list := reg.List()
	want := []string{"Phone", "RatesTable", "VrpSection"}
	if len(list) != len(want) {
		t.Fatalf("List = %#v", list)
	}
	for i, name := range want {
		if list[i].Name != name {
			t.Fatalf("List[%d].Name = %q, want %q", i, list[i].Name, name)
		}
	}
	if reg.Len() != 3 {
		t.Fatalf("Len = %d", reg.Len())
	}
}
