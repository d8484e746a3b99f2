package factory

import (
	"errors"
	"testing"
	"time"
)

type sample struct {
	Name string
	A    int
}

type sampleConf struct {
	A       int           `json:"a"`
	Horizon time.Duration `json:"horizon"`
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", func(name string, conf map[string]any) (*sample, error) {
		var c sampleConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &sample{Name: name, A: c.A}, nil
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Name: "first", Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 || inst.Name != "first" {
		t.Fatalf("unexpected instance %+v", inst)
	}
	unnamed, err := reg.Create(ModuleConfig{Type: "s"})
	if err != nil {
		t.Fatalf("create unnamed: %v", err)
	}
	if unnamed.Name != "s" {
		t.Fatalf("expected name to default to type, got %q", unnamed.Name)
	}
}

// Test duplicate registration and unknown type errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(string, map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(string, map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("y", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestRegistry_Types(t *testing.T) {
	reg := NewRegistry[int]()
	for _, tag := range []string{"chiller", "boiler"} {
		if err := reg.Register(tag, func(string, map[string]any) (int, error) { return 0, nil }); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	types := reg.Types()
	if len(types) != 2 || types[0] != "boiler" || types[1] != "chiller" {
		t.Fatalf("unexpected types %v", types)
	}
}

func TestDecodeDuration(t *testing.T) {
	var c sampleConf
	if err := Decode(map[string]any{"horizon": "15m", "a": 2}, &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Horizon != 15*time.Minute || c.A != 2 {
		t.Fatalf("bad decode %+v", c)
	}
}
