package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValue(t *testing.T) {
	tests := []struct {
		valueType ValueType
		wantVal   any
		wantErr   error
	}{
		{ValueTypeString, "", nil},
		{ValueTypeEnum, "", nil},
		{ValueTypeDate, "", nil},
		{ValueTypeNumber, float64(0), nil},
		{ValueTypeBoolean, false, nil},
		{ValueTypeArray, []any{}, nil},
		{"unknown", nil, ErrInvalidValueType},
	}
	for _, tt := range tests {
		t.Run(string(tt.valueType), func(t *testing.T) {
			val, err := DefaultValue(tt.valueType)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantVal, val)
		})
	}
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		wantErr error
	}{
		{"valid", Schema{{Key: "date", Type: ValueTypeDate}, {Key: "type", Type: ValueTypeEnum, OptionsKey: "mediaTypes"}}, nil},
		{"empty key", Schema{{Key: "", Type: ValueTypeString}}, ErrInvalidColumn},
		{"bad type", Schema{{Key: "x", Type: "money"}}, ErrInvalidValueType},
		{"duplicate", Schema{{Key: "x", Type: ValueTypeString}, {Key: "x", Type: ValueTypeNumber}}, ErrDuplicateColumn},
		{"enum without options", Schema{{Key: "x", Type: ValueTypeEnum}}, ErrMissingOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.schema.Validate(), tt.wantErr)
		})
	}
}

func TestSchemaLookupAndVisible(t *testing.T) {
	s := Schema{{Key: "a"}, {Key: "b", Hidden: true}, {Key: "c"}}
	c, ok := s.Column("b")
	require.True(t, ok)
	assert.True(t, c.Hidden)
	_, ok = s.Column("zz")
	assert.False(t, ok)

	vis := s.Visible()
	require.Len(t, vis, 2)
	assert.Equal(t, "a", vis[0].Key)
	assert.Equal(t, "c", vis[1].Key)
}

func TestColumnMissingNumber(t *testing.T) {
	assert.Equal(t, 0.0, Column{Missing: MissingZero}.MissingNumber())
	assert.True(t, math.IsInf(Column{}.MissingNumber(), -1))
	assert.True(t, math.IsInf(Column{Missing: MissingNegInf}.MissingNumber(), -1))
}

func TestOptionsFirst(t *testing.T) {
	o := Options{"types": {"Online", "Print"}}
	assert.Equal(t, "Online", o.First("types"))
	assert.Equal(t, "", o.First("none"))
}
