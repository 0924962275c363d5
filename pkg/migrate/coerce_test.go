package migrate

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name     string
		destType DestType
		raw      sql.RawBytes
		expected interface{}
	}{
		{"int", Int64, sql.RawBytes("42"), int64(42)},
		{"negative int", Int64, sql.RawBytes("-7"), int64(-7)},
		{"int from float literal", Int64, sql.RawBytes("2.0"), int64(2)},
		{"null int", Int64, nil, int64(0)},
		{"empty int", Int64, sql.RawBytes(""), int64(0)},
		{"garbage int", Int64, sql.RawBytes("x"), int64(0)},
		{"float", Float64, sql.RawBytes("1.5"), float64(1.5)},
		{"null float", Float64, nil, float64(0)},
		{"bool true", UInt8, sql.RawBytes("1"), uint8(1)},
		{"bool false", UInt8, sql.RawBytes("0"), uint8(0)},
		{"bool true text", UInt8, sql.RawBytes("true"), uint8(1)},
		{"bool false text", UInt8, sql.RawBytes("false"), uint8(0)},
		{"bool true text upper", UInt8, sql.RawBytes("TRUE"), uint8(1)},
		{"null bool", UInt8, nil, uint8(0)},
		{"datetime", DateTime, sql.RawBytes("2021-06-01 12:30:45"),
			time.Date(2021, 6, 1, 12, 30, 45, 0, time.UTC)},
		{"datetime fractional seconds", DateTime, sql.RawBytes("2021-06-01 12:30:45.123456"),
			time.Date(2021, 6, 1, 12, 30, 45, 0, time.UTC)},
		{"datetime t separator", DateTime, sql.RawBytes("2021-06-01T12:30:45"),
			time.Date(2021, 6, 1, 12, 30, 45, 0, time.UTC)},
		{"null datetime", DateTime, nil, epoch},
		{"garbage datetime", DateTime, sql.RawBytes("not a time"), epoch},
		{"date", Date, sql.RawBytes("2021-06-01"),
			time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"null date", Date, nil, epoch},
		{"string", String, sql.RawBytes("hello"), "hello"},
		{"null string", String, nil, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			column := Column{Name: "c", DestType: test.destType}
			assert.Equal(t, test.expected, coerceValue(column, test.raw))
		})
	}
}

func TestCoerceRowCopiesScanBuffers(t *testing.T) {
	table := newTable("t", "", "", []Column{
		{Name: "a", SourceType: "TEXT", DestType: String},
	})
	raw := []sql.RawBytes{sql.RawBytes("first")}
	row := coerceRow(table, raw)
	copy(raw[0], "XXXXX")
	assert.Equal(t, "first", row[0])
}
