package migrate

import (
	"database/sql"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// epoch is the zero value for temporal columns, time.Time{} is outside the
// range ClickHouse accepts for DateTime.
var epoch = time.Unix(0, 0).UTC()

// coerceRow converts one scanned source row into the value shapes the
// destination driver expects for the inferred column types. The scan buffers
// are reused between rows so every value is copied out.
func coerceRow(table *Table, raw []sql.RawBytes) []interface{} {
	row := make([]interface{}, len(raw))
	for i, value := range raw {
		row[i] = coerceValue(table.Columns[i], value)
	}
	return row
}

func coerceValue(column Column, raw sql.RawBytes) interface{} {
	value := string(raw)
	switch column.DestType {
	case Int64:
		return coerceInt64(column, value)
	case Float64:
		if raw == nil || value == "" {
			return float64(0)
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			log.Warnf("failed to parse %v value %q of column %v, using 0", Float64, value, column.Name)
			return float64(0)
		}
		return parsed
	case UInt8:
		// SQLite has no boolean type so drivers store "true"/"false" text
		// as often as 1/0
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true":
			return uint8(1)
		case "false":
			return uint8(0)
		}
		if coerceInt64(column, value) != 0 {
			return uint8(1)
		}
		return uint8(0)
	case DateTime:
		return parseDateTime(column, value)
	case Date:
		return parseDate(column, value)
	default:
		return value
	}
}

func coerceInt64(column Column, value string) int64 {
	if strings.TrimSpace(value) == "" {
		return 0
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// SQLite columns are dynamically typed so an INTEGER column can
		// still hold "2.0"
		parsedFloat, floatErr := strconv.ParseFloat(value, 64)
		if floatErr != nil {
			log.Warnf("failed to parse %v value %q of column %v, using 0", Int64, value, column.Name)
			return 0
		}
		return int64(parsedFloat)
	}
	return parsed
}

// parseDateTime parses a textual timestamp, dropping fractional seconds.
// Unparseable values become the epoch rather than aborting the batch.
func parseDateTime(column Column, value string) time.Time {
	value = strings.TrimSpace(strings.SplitN(value, ".", 2)[0])
	if value == "" {
		return epoch
	}
	// SQLite stores timestamps both with a space and with a T separator
	value = strings.Replace(value, "T", " ", 1)
	parsed, err := time.Parse(dateTimeLayout, value)
	if err != nil {
		log.Warnf("failed to parse %v value %q of column %v, using epoch", DateTime, value, column.Name)
		return epoch
	}
	return parsed
}

func parseDate(column Column, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return epoch
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		log.Warnf("failed to parse %v value %q of column %v, using epoch", Date, value, column.Name)
		return epoch
	}
	return parsed
}
