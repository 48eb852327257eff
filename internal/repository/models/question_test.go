package models

import (
	"database/sql/driver"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSlice_Value(t *testing.T) {
	tests := []struct {
		name    string
		s       StringSlice
		wantVal driver.Value
	}{
		{name: "nil slice", s: nil, wantVal: "[]"},
		{name: "empty slice", s: StringSlice{}, wantVal: "[]"},
		{name: "multiple elements", s: StringSlice{"TOEIC", "part5"}, wantVal: `["TOEIC","part5"]`},
		{name: "html characters are kept", s: StringSlice{"R&D", "<b>"}, wantVal: `["R&D","<b>"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotVal, err := tt.s.Value()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantVal, gotVal)
		})
	}
}

func TestStringSlice_Scan(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		wantS   StringSlice
		wantErr bool
	}{
		{name: "nil input", value: nil, wantS: StringSlice{}},
		{name: "empty string input", value: "", wantS: StringSlice{}},
		{name: "null literal", value: "null", wantS: StringSlice{}},
		{name: "json string", value: `["a","b"]`, wantS: StringSlice{"a", "b"}},
		{name: "json bytes", value: []byte(`["a"]`), wantS: StringSlice{"a"}},
		{name: "malformed json", value: "a|||b", wantErr: true},
		{name: "unsupported type", value: 42, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s StringSlice
			err := s.Scan(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantS, s)
		})
	}
}
