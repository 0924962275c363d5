package migrate

import (
	"strings"
)

var destTypeBySourceKeyword = map[string]DestType{
	"INT":              Int64,
	"INTEGER":          Int64,
	"TINYINT":          Int64,
	"SMALLINT":         Int64,
	"MEDIUMINT":        Int64,
	"BIGINT":           Int64,
	"INT2":             Int64,
	"INT8":             Int64,
	"UNSIGNED BIG INT": Int64,
	"REAL":             Float64,
	"FLOAT":            Float64,
	"DOUBLE":           Float64,
	"DOUBLE PRECISION": Float64,
	"NUMERIC":          Float64,
	"DECIMAL":          Float64,
	"DATETIME":         DateTime,
	"TIMESTAMP":        DateTime,
	"DATE":             Date,
	"BOOLEAN":          UInt8,
	"BOOL":             UInt8,
	"BIT":              UInt8,
}

// MapType maps a declared source column type to a destination type. It is
// total: anything unrecognized (including TEXT, BLOB and the empty type of
// an untyped SQLite column) maps to String so a migration never aborts on a
// column it does not understand.
func MapType(sourceType string) DestType {
	keyword := strings.ToUpper(strings.TrimSpace(strings.SplitN(sourceType, "(", 2)[0]))
	if destType, ok := destTypeBySourceKeyword[keyword]; ok {
		return destType
	}
	return String
}
