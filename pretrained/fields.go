// fields.go - Bindung von JSON-Schluesseln an typisierte Felder
//
// Eine Konfiguration beschreibt ihre bekannten Schluessel als []Field.
// Apply ueberlagert ein JSON-Objekt: bekannte Schluessel landen im Feld,
// alle anderen in der Extras-Tabelle. Flatten ist die Umkehrung.
package pretrained

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Extras haelt unbekannte Schluessel in Einfuege-Reihenfolge
type Extras = orderedmap.OrderedMap[string, any]

// NewExtras erstellt eine leere Extras-Tabelle
func NewExtras() *Extras {
	return orderedmap.New[string, any]()
}

// Field bindet einen JSON-Schluessel an ein typisiertes Feld
type Field struct {
	Key string

	// Decode setzt das Feld aus einem rohen JSON-Wert
	Decode func(raw json.RawMessage) error

	// Encode liefert den Wert fuer die Serialisierung, ok=false laesst den Schluessel weg
	Encode func() (v any, ok bool)
}

// IntField bindet einen Integer. Ganzzahlige Floats (z.B. 768.0) werden akzeptiert.
func IntField(key string, p *int) Field {
	return Field{
		Key: key,
		Decode: func(raw json.RawMessage) error {
			if isNull(raw) {
				return nil
			}
			n, err := decodeInt(raw)
			if err != nil {
				return err
			}
			*p = n
			return nil
		},
		Encode: func() (any, bool) { return *p, true },
	}
}

// IntPtrField bindet einen optionalen Integer. null setzt ihn zurueck,
// ein nicht gesetzter Wert wird als null ausgegeben.
func IntPtrField(key string, p **int) Field {
	return Field{
		Key: key,
		Decode: func(raw json.RawMessage) error {
			if isNull(raw) {
				*p = nil
				return nil
			}
			n, err := decodeInt(raw)
			if err != nil {
				return err
			}
			*p = &n
			return nil
		},
		Encode: func() (any, bool) {
			if *p == nil {
				return nil, true
			}
			return **p, true
		},
	}
}

// FloatField bindet einen float64
func FloatField(key string, p *float64) Field {
	return Field{
		Key: key,
		Decode: func(raw json.RawMessage) error {
			if isNull(raw) {
				return nil
			}
			return json.Unmarshal(raw, p)
		},
		Encode: func() (any, bool) { return *p, true },
	}
}

// StringField bindet einen String, omitEmpty laesst leere Werte bei der Ausgabe weg
func StringField(key string, p *string, omitEmpty bool) Field {
	return Field{
		Key: key,
		Decode: func(raw json.RawMessage) error {
			if isNull(raw) {
				*p = ""
				return nil
			}
			return json.Unmarshal(raw, p)
		},
		Encode: func() (any, bool) { return *p, !omitEmpty || *p != "" },
	}
}

// BoolField bindet einen bool
func BoolField(key string, p *bool) Field {
	return Field{
		Key: key,
		Decode: func(raw json.RawMessage) error {
			if isNull(raw) {
				return nil
			}
			return json.Unmarshal(raw, p)
		},
		Encode: func() (any, bool) { return *p, true },
	}
}

// StringsField bindet eine String-Liste, leere Listen werden weggelassen
func StringsField(key string, p *[]string) Field {
	return Field{
		Key: key,
		Decode: func(raw json.RawMessage) error {
			if isNull(raw) {
				*p = nil
				return nil
			}
			return json.Unmarshal(raw, p)
		},
		Encode: func() (any, bool) { return *p, len(*p) > 0 },
	}
}

// Apply ueberlagert fields und extras mit den Schluesseln eines JSON-Objekts.
// Das oberste JSON-Element muss ein Objekt sein.
func Apply(fields []Field, extras *Extras, data []byte) error {
	// Der erste Durchlauf liefert die Standard-Fehler (Syntax, kein Objekt)
	var check map[string]json.RawMessage
	if err := json.Unmarshal(data, &check); err != nil {
		return err
	}

	ordered := orderedmap.New[string, json.RawMessage](len(check))
	if err := ordered.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	byKey := index(fields)
	for pair := ordered.Oldest(); pair != nil; pair = pair.Next() {
		if f, ok := byKey[pair.Key]; ok {
			if err := f.Decode(pair.Value); err != nil {
				return fmt.Errorf("%w: feld %q: %v", ErrInvalidConfig, pair.Key, err)
			}
			continue
		}

		var v any
		if err := json.Unmarshal(pair.Value, &v); err != nil {
			return fmt.Errorf("%w: feld %q: %v", ErrInvalidConfig, pair.Key, err)
		}
		extras.Set(pair.Key, v)
	}

	return nil
}

// Flatten erzeugt eine flache, geordnete Sicht: erst die Felder, dann die Extras.
// Extras ueberschreiben nie ein typisiertes Feld.
func Flatten(fields []Field, extras *Extras) *orderedmap.OrderedMap[string, any] {
	out := orderedmap.New[string, any]()
	for _, f := range fields {
		if v, ok := f.Encode(); ok {
			out.Set(f.Key, v)
		}
	}

	if extras != nil {
		for pair := extras.Oldest(); pair != nil; pair = pair.Next() {
			if _, present := out.Get(pair.Key); !present {
				out.Set(pair.Key, pair.Value)
			}
		}
	}

	return out
}

// SetField setzt einen Schluessel: bekannte Felder werden typisiert dekodiert,
// alle anderen landen in extras.
func SetField(fields []Field, extras *Extras, key string, value any) error {
	if f, ok := index(fields)[key]; ok {
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		if err := f.Decode(raw); err != nil {
			return fmt.Errorf("%w: feld %q: %v", ErrInvalidConfig, key, err)
		}
		return nil
	}

	extras.Set(key, value)
	return nil
}

// GetField liest einen Schluessel aus den Feldern oder den Extras
func GetField(fields []Field, extras *Extras, key string) (any, bool) {
	if f, ok := index(fields)[key]; ok {
		return f.Encode()
	}
	if extras == nil {
		return nil, false
	}
	return extras.Get(key)
}

func index(fields []Field) map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Key] = f
	}
	return m
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeInt(raw json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, err
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}

	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("kein ganzzahliger wert: %s", n)
	}
	if f >= math.MaxInt || f < math.MinInt {
		return 0, fmt.Errorf("wert ausserhalb des int-bereichs: %s", n)
	}
	return int(f), nil
}
