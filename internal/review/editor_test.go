package review

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/notecraft/notecraft/internal/models"
)

func recognized() models.ProductMetadata {
	return models.ProductMetadata{
		ProductCategory: "耳机",
		Brand:           "X",
		Model:           "Pods 3",
		KeyFeatures:     []string{"降噪", "续航", "轻巧"},
		TargetAudience:  "学生",
		ToneKeywords:    []string{"科技", "清新"},
		Confidence:      0.8,
	}
}

func TestNewStartsEditable(t *testing.T) {
	e := New(recognized())
	if e.State() != StateEditable {
		t.Errorf("Expected %s, got %s", StateEditable, e.State())
	}
}

func TestNewCopiesInput(t *testing.T) {
	meta := recognized()
	e := New(meta)
	meta.KeyFeatures[0] = "changed"

	if e.Draft().KeyFeatures[0] != "降噪" {
		t.Error("Expected editor to be unaffected by changes to its input")
	}
}

func TestSetField(t *testing.T) {
	e := New(recognized())

	tests := []struct {
		field Field
		value string
		read  func(models.ProductMetadata) string
	}{
		{FieldBrand, "Y", func(m models.ProductMetadata) string { return m.Brand }},
		{FieldModel, "Pods 4", func(m models.ProductMetadata) string { return m.Model }},
		{FieldCategory, "音箱", func(m models.ProductMetadata) string { return m.ProductCategory }},
		{FieldPriceRange, "100-200", func(m models.ProductMetadata) string { return m.EstimatedPriceRange }},
		{FieldTargetAudience, "上班族", func(m models.ProductMetadata) string { return m.TargetAudience }},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			if err := e.SetField(tt.field, tt.value); err != nil {
				t.Fatalf("SetField() error = %v", err)
			}
			if got := tt.read(e.Draft()); got != tt.value {
				t.Errorf("Expected %s, got %s", tt.value, got)
			}
		})
	}

	if err := e.SetField("color", "red"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
}

func TestSetConfidence(t *testing.T) {
	e := New(recognized())
	if err := e.SetConfidence(0.3); err != nil {
		t.Fatalf("SetConfidence() error = %v", err)
	}
	if e.Draft().Confidence != 0.3 {
		t.Errorf("Expected 0.3, got %v", e.Draft().Confidence)
	}
	if err := e.SetConfidence(1.5); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Expected ErrInvalidValue, got %v", err)
	}
}

func TestAddItem(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantAdded bool
		wantLast  string
		wantLen   int
	}{
		{name: "adds trimmed value", value: "  防水 ", wantAdded: true, wantLast: "防水", wantLen: 4},
		{name: "empty is a no-op", value: "", wantAdded: false, wantLast: "轻巧", wantLen: 3},
		{name: "whitespace is a no-op", value: " \t\n ", wantAdded: false, wantLast: "轻巧", wantLen: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(recognized())
			added, err := e.AddItem(ListKeyFeatures, tt.value)
			if err != nil {
				t.Fatalf("AddItem() error = %v", err)
			}
			if added != tt.wantAdded {
				t.Errorf("Expected added=%v, got %v", tt.wantAdded, added)
			}
			features := e.Draft().KeyFeatures
			if len(features) != tt.wantLen {
				t.Fatalf("Expected %d features, got %d", tt.wantLen, len(features))
			}
			if features[len(features)-1] != tt.wantLast {
				t.Errorf("Expected last feature %s, got %s", tt.wantLast, features[len(features)-1])
			}
		})
	}
}

func TestAddItemToneKeywords(t *testing.T) {
	e := New(recognized())
	if _, err := e.AddItem(ListToneKeywords, "高级"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	want := []string{"科技", "清新", "高级"}
	if got := e.Draft().ToneKeywords; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if _, err := e.AddItem("colors", "red"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("Expected ErrUnknownField, got %v", err)
	}
}

func TestRemoveItemKeepsOrder(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{name: "first", index: 0, want: []string{"续航", "轻巧"}},
		{name: "middle", index: 1, want: []string{"降噪", "轻巧"}},
		{name: "last", index: 2, want: []string{"降噪", "续航"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(recognized())
			if err := e.RemoveItem(ListKeyFeatures, tt.index); err != nil {
				t.Fatalf("RemoveItem() error = %v", err)
			}
			if got := e.Draft().KeyFeatures; !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRemoveAllLeavesEmptyList(t *testing.T) {
	e := New(recognized())
	for i := 0; i < 3; i++ {
		if err := e.RemoveItem(ListKeyFeatures, 0); err != nil {
			t.Fatalf("RemoveItem() error = %v", err)
		}
	}

	features := e.Draft().KeyFeatures
	if features == nil || len(features) != 0 {
		t.Errorf("Expected an empty non-nil list, got %#v", features)
	}

	snapshot := e.Confirm()
	data, _ := json.Marshal(snapshot)
	if !bytes.Contains(data, []byte(`"key_features":[]`)) {
		t.Errorf("Expected key_features to encode as [], got %s", data)
	}
}

func TestRemoveItemOutOfRange(t *testing.T) {
	e := New(recognized())
	for _, index := range []int{-1, 3, 10} {
		if err := e.RemoveItem(ListToneKeywords, index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("RemoveItem(%d): expected ErrIndexOutOfRange, got %v", index, err)
		}
	}
	if len(e.Draft().ToneKeywords) != 2 {
		t.Error("Expected failed removals to leave the list untouched")
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	e := New(recognized())
	_ = e.SetField(FieldBrand, "Y")

	first, _ := json.Marshal(e.Confirm())
	second, _ := json.Marshal(e.Confirm())

	if !bytes.Equal(first, second) {
		t.Errorf("Expected identical snapshots:\n%s\n%s", first, second)
	}
	if e.State() != StateConfirmed {
		t.Errorf("Expected %s, got %s", StateConfirmed, e.State())
	}
}

func TestConfirmedSnapshotIsIndependent(t *testing.T) {
	e := New(recognized())
	snapshot := e.Confirm()
	e.Reedit()
	_ = e.SetField(FieldBrand, "Z")
	_, _ = e.AddItem(ListKeyFeatures, "新卖点")

	if snapshot.Brand != "X" || len(snapshot.KeyFeatures) != 3 {
		t.Errorf("Expected snapshot to be unaffected by later edits, got %+v", snapshot)
	}
}

func TestConfirmedEditorIsLocked(t *testing.T) {
	e := New(recognized())
	e.Confirm()

	if err := e.SetField(FieldBrand, "Y"); !errors.Is(err, ErrLocked) {
		t.Errorf("SetField: expected ErrLocked, got %v", err)
	}
	if _, err := e.AddItem(ListKeyFeatures, "x"); !errors.Is(err, ErrLocked) {
		t.Errorf("AddItem: expected ErrLocked, got %v", err)
	}
	if err := e.RemoveItem(ListKeyFeatures, 0); !errors.Is(err, ErrLocked) {
		t.Errorf("RemoveItem: expected ErrLocked, got %v", err)
	}
	if err := e.SetConfidence(0.1); !errors.Is(err, ErrLocked) {
		t.Errorf("SetConfidence: expected ErrLocked, got %v", err)
	}

	e.Reedit()
	if e.State() != StateEditable {
		t.Errorf("Expected %s after Reedit, got %s", StateEditable, e.State())
	}
	if e.Draft().Brand != "X" {
		t.Error("Expected Reedit to keep the values")
	}
	if err := e.SetField(FieldBrand, "Y"); err != nil {
		t.Errorf("Expected edits to work after Reedit, got %v", err)
	}
}
