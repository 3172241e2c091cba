package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// MovieID is the canonical form of an external catalog identifier.
// Older documents stored watchlist entries as strings, so every ingress path
// (JSON, BSON, URL params) normalizes to this numeric form before comparison.
type MovieID int64

func (id MovieID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseMovieID accepts a decimal string, optionally surrounded by spaces or
// written as a whole float ("42.0").
func ParseMovieID(s string) (MovieID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("movie id is empty")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return MovieID(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("movie id %q is not numeric", s)
	}
	id, ok := movieIDFromFloat(f)
	if !ok {
		return 0, fmt.Errorf("movie id %q is not numeric", s)
	}
	return id, nil
}

// movieIDFromFloat accepts only whole values that fit in an int64.
// float64(math.MaxInt64) rounds up to 2^63, hence the strict upper bound.
func movieIDFromFloat(f float64) (MovieID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return MovieID(int64(f)), true
}

func (id MovieID) MarshalJSON() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *MovieID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return fmt.Errorf("movie id is null")
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := ParseMovieID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id MovieID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.TypeInt64, bsoncore.AppendInt64(nil, int64(id)), nil
}

func (id *MovieID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	v := bsoncore.Value{Type: t, Data: data}
	switch t {
	case bson.TypeInt32:
		*id = MovieID(v.Int32())
	case bson.TypeInt64:
		*id = MovieID(v.Int64())
	case bson.TypeDouble:
		parsed, ok := movieIDFromFloat(v.Double())
		if !ok {
			return fmt.Errorf("movie id %v is not numeric", v.Double())
		}
		*id = parsed
	case bson.TypeString:
		parsed, err := ParseMovieID(v.StringValue())
		if err != nil {
			return err
		}
		*id = parsed
	default:
		return fmt.Errorf("cannot decode movie id from bson %s", t)
	}
	return nil
}

// ContainsMovie reports membership using canonical comparison.
func ContainsMovie(ids []MovieID, id MovieID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}
