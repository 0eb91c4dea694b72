package chart

import (
	"encoding/json"
	"math"
	"testing"
)

func TestValueUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`5`, 5},
		{`-2.5`, -2.5},
		{`null`, 0},
		{`true`, 1},
		{`false`, 0},
		{`"42"`, 42},
		{`"  7.5 "`, 7.5},
		{`""`, 0},
		{`"abc"`, math.NaN()},
		{`[1]`, math.NaN()},
		{`{"a":1}`, math.NaN()},
	}

	for _, tt := range tests {
		var v Value
		if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
		}
		if !sameFloat(float64(v), tt.want) {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, float64(v), tt.want)
		}
	}
}

func TestValueMissingFieldIsNaN(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"name":"X","id":1}`), &e); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(float64(e.Value)) {
		t.Errorf("missing entry value = %v, want NaN", e.Value)
	}

	var r Record
	if err := json.Unmarshal([]byte(`{"name":"A","series":[]}`), &r); err != nil {
		t.Fatal(err)
	}
	if !math.IsNaN(float64(r.Value)) {
		t.Errorf("missing record value = %v, want NaN", r.Value)
	}
	if r.Series == nil {
		t.Error("empty series decoded as nil")
	}
}

func TestValueMarshal(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{3, `3`},
		{1.25, `1.25`},
		{NaN(), `null`},
		{Value(math.Inf(1)), `null`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.v)
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", float64(tt.v), got, tt.want)
		}
	}
}

func TestValueString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{3, "3"},
		{0.1, "0.1"},
		{NaN(), "NaN"},
		{Value(math.Inf(-1)), "-Infinity"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestIDRoundTrip(t *testing.T) {
	tests := []string{`17`, `"a-17"`, `null`, `1.5e3`}
	for _, in := range tests {
		var id ID
		if err := json.Unmarshal([]byte(in), &id); err != nil {
			t.Fatalf("Unmarshal(%s) error: %v", in, err)
		}
		out, err := json.Marshal(id)
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != in {
			t.Errorf("round trip %s = %s", in, out)
		}
	}
}

func TestIDRejectsBool(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Error("expected error for boolean id")
	}
}

func TestIDConstructors(t *testing.T) {
	if got := NumericID(9).String(); got != "9" {
		t.Errorf("NumericID(9).String() = %q", got)
	}
	if !(ID{}).IsZero() {
		t.Error("zero ID should report IsZero")
	}
	if StringID("x").IsZero() {
		t.Error("StringID(x) should not be zero")
	}
}

func sameFloat(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) < 1e-9
}
