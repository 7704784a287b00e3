package model

import (
	"encoding/json"
	"testing"
)

func TestCellKeyText(t *testing.T) {
	tests := []struct {
		in      string
		want    CellKey
		wantErr bool
	}{
		{"3-2", CellKey{Row: 3, Col: 2}, false},
		{"0-0", CellKey{}, false},
		{"03-2", CellKey{Row: 3, Col: 2}, false},
		{"10-11", CellKey{Row: 10, Col: 11}, false},
		{"3", CellKey{}, true},
		{"3-", CellKey{}, true},
		{"-2", CellKey{}, true},
		{"3-2-1", CellKey{}, true},
		{"a-b", CellKey{}, true},
		{"3_2", CellKey{}, true},
	}

	for _, tt := range tests {
		var k CellKey
		err := k.UnmarshalText([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("UnmarshalText(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && k != tt.want {
			t.Errorf("UnmarshalText(%q) = %+v, want %+v", tt.in, k, tt.want)
		}
	}
}

func TestDepthMapJSON(t *testing.T) {
	cfg := UnitConfig{CustomDepthMap: DepthMap{{Row: 3, Col: 2}: 1}}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"custom_depth_map":{"3-2":1}}` {
		t.Errorf("unexpected encoding: %s", data)
	}

	var back UnitConfig
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.CustomDepthMap[CellKey{Row: 3, Col: 2}] != 1 {
		t.Errorf("expected depth 1 at 3-2, got %v", back.CustomDepthMap)
	}

	if err := json.Unmarshal([]byte(`{"custom_depth_map":{"3/2":1}}`), &back); err == nil {
		t.Error("expected error for malformed key")
	}
}

func TestUnitTypeValid(t *testing.T) {
	for _, ut := range []UnitType{UnitTypeGrid, UnitTypeList, UnitTypeCrate, UnitTypeVerticalDrawer} {
		if !ut.Valid() {
			t.Errorf("expected %q to be valid", ut)
		}
	}
	if UnitType("shelf").Valid() {
		t.Error("expected unknown unit type to be invalid")
	}
}
