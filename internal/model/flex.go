package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexFloat decodes JSON numbers, numeric strings and null.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	v, err := decodeFlexNumber(b)
	if err != nil {
		return err
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) Float64() float64 { return float64(f) }

// FlexInt is FlexFloat rounded to the nearest integer.
type FlexInt int

func (i *FlexInt) UnmarshalJSON(b []byte) error {
	v, err := decodeFlexNumber(b)
	if err != nil {
		return err
	}
	*i = FlexInt(math.Round(v))
	return nil
}

func (i FlexInt) Int() int { return int(i) }

func decodeFlexNumber(b []byte) (float64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return 0, nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric string %q", s)
		}
		// "NaN" and "Inf" parse, but are treated like null.
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, nil
		}
		return v, nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return 0, err
	}
	return v, nil
}
