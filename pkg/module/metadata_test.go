package module

import (
	"strings"
	"testing"
)

func TestMappingGet(t *testing.T) {
	m := Mapping{"title": "Home", "count": 3}

	if got := m.Get("title", "fallback"); got != "Home" {
		t.Errorf("Get(title) = %v", got)
	}
	if got := m.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("Get(missing) = %v", got)
	}
	if got := m.GetString("title", ""); got != "Home" {
		t.Errorf("GetString(title) = %q", got)
	}
	if got := m.GetString("count", "nope"); got != "nope" {
		t.Errorf("GetString(count) = %q, want the default for a non-string", got)
	}

	var nilMapping Mapping
	if got := nilMapping.Get("title", "x"); got != "x" {
		t.Errorf("nil mapping Get = %v", got)
	}
}

func TestMetadataResolver(t *testing.T) {
	t.Run("nil produces nil", func(t *testing.T) {
		resolver, err := MetadataResolver(nil)
		if err != nil {
			t.Fatalf("MetadataResolver error = %v", err)
		}
		if got := resolver.(func() Mapping)(); got != nil {
			t.Errorf("resolver() = %v, want nil", got)
		}
	})

	t.Run("mapping is constant", func(t *testing.T) {
		resolver, err := MetadataResolver(Mapping{"title": "X"})
		if err != nil {
			t.Fatalf("MetadataResolver error = %v", err)
		}
		if got := resolver.(func() Mapping)(); got["title"] != "X" {
			t.Errorf("resolver() = %v", got)
		}
	})

	t.Run("plain map is constant", func(t *testing.T) {
		resolver, err := MetadataResolver(map[string]any{"title": "Y"})
		if err != nil {
			t.Fatalf("MetadataResolver error = %v", err)
		}
		if got := resolver.(func() Mapping)(); got["title"] != "Y" {
			t.Errorf("resolver() = %v", got)
		}
	})

	t.Run("function passes through", func(t *testing.T) {
		fn := func() Mapping { return Mapping{"title": "Z"} }
		resolver, err := MetadataResolver(fn)
		if err != nil {
			t.Fatalf("MetadataResolver error = %v", err)
		}
		if got := resolver.(func() Mapping)(); got["title"] != "Z" {
			t.Errorf("resolver() = %v", got)
		}
	})

	t.Run("other shapes fail", func(t *testing.T) {
		_, err := MetadataResolver(42)
		if err == nil {
			t.Fatal("MetadataResolver succeeded, want error")
		}
		if !strings.Contains(err.Error(), "invalid metadata") {
			t.Errorf("error = %v", err)
		}
	})
}
