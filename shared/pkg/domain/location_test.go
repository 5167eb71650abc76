package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseBinLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    BinLocation
		wantErr bool
	}{
		{name: "valid", input: "A1-01-1", want: MustBinLocation("A1", "01", "1")},
		{name: "surrounding space", input: " B-10-3 ", want: MustBinLocation("B", "10", "3")},
		{name: "two parts", input: "A1-01", wantErr: true},
		{name: "four parts", input: "A1-01-1-X", wantErr: true},
		{name: "empty part", input: "A1--1", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBinLocation(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidLocation) {
					t.Fatalf("ParseBinLocation(%q) error = %v, want ErrInvalidLocation", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBinLocation(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBinLocation(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBinLocation_RoundTrip(t *testing.T) {
	loc := MustBinLocation("C3", "07", "2")
	if loc.String() != "C3-07-2" {
		t.Fatalf("String() = %q", loc.String())
	}

	data, err := json.Marshal(map[string]BinLocation{"location": loc})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]BinLocation
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded["location"].Equals(loc) {
		t.Errorf("decoded %v, want %v", decoded["location"], loc)
	}
}

func TestBinLocation_Numbers(t *testing.T) {
	loc := MustBinLocation("A", "05", "x")
	if rack, ok := loc.RackNumber(); !ok || rack != 5 {
		t.Errorf("RackNumber() = %d, %v", rack, ok)
	}
	if _, ok := loc.LevelNumber(); ok {
		t.Errorf("LevelNumber() should not parse %q", loc.Level())
	}
}

func TestNewBinLocation_RejectsSeparator(t *testing.T) {
	if _, err := NewBinLocation("A-1", "01", "1"); err == nil {
		t.Error("expected error for aisle containing separator")
	}
}

func TestQuantity(t *testing.T) {
	if _, err := NewQuantity(0); err == nil {
		t.Error("expected error for zero quantity")
	}
	q := MustQuantity(3)
	if got := q.Add(MustQuantity(2)).Value(); got != 5 {
		t.Errorf("Add = %d, want 5", got)
	}
	if _, err := q.Subtract(MustQuantity(3)); err == nil {
		t.Error("expected error when subtraction reaches zero")
	}
	if got, _ := q.Multiply(4); got.Value() != 12 {
		t.Errorf("Multiply = %d, want 12", got.Value())
	}
}

func TestSkuCodeAndOperationType(t *testing.T) {
	sku, err := NewSkuCode("  SKU-001 ")
	if err != nil || sku.String() != "SKU-001" {
		t.Errorf("NewSkuCode = %q, %v", sku.String(), err)
	}
	if _, err := NewSkuCode("   "); err == nil {
		t.Error("expected error for blank sku")
	}

	op, err := ParseOperationType("PICK")
	if err != nil || op != OperationPick {
		t.Errorf("ParseOperationType = %q, %v", op, err)
	}
	if _, err := ParseOperationType("ship"); !errors.Is(err, ErrInvalidOperationType) {
		t.Errorf("expected ErrInvalidOperationType, got %v", err)
	}
	if OperationReplenish.Description() == "" {
		t.Error("expected description for replenish")
	}
}
