package gridify

import (
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobeam/stringy"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Convertor turns the raw text of a value into the value compared against
// the field. It replaces the built-in conversion for one mapping.
type Convertor func(value string) any

// Mapping binds a filter field name to an accessor on T. Column names the
// field in SQL backends; Document is its dotted key path in document stores.
type Mapping[T any] struct {
	From      string
	Column    string
	Document  string
	Type      reflect.Type
	Convertor Convertor

	get func(T) any
}

// Value reads the mapped field from rec
func (m Mapping[T]) Value(rec T) any {
	return m.get(rec)
}

// MapOption customizes a single mapping
type MapOption func(*mapOptions)

type mapOptions struct {
	column    string
	document  string
	convertor Convertor
}

// WithColumn sets the backend column used for the mapping. By default it is
// the snake_case form of the field name.
func WithColumn(column string) MapOption {
	return func(o *mapOptions) { o.column = column }
}

// WithDocumentPath sets the dotted key path used by document stores. By
// default it is the column.
func WithDocumentPath(path string) MapOption {
	return func(o *mapOptions) { o.document = path }
}

// WithConvertor registers a custom value convertor
func WithConvertor(c Convertor) MapOption {
	return func(o *mapOptions) { o.convertor = c }
}

// Mapper resolves filter field names to typed accessors. Mappings are set up
// once and then read concurrently by compilations.
type Mapper[T any] struct {
	mu            sync.RWMutex
	caseSensitive bool
	maps          map[string]Mapping[T]
}

// MapperOption configures a Mapper
type MapperOption func(*mapperOptions)

type mapperOptions struct {
	caseSensitive bool
}

// CaseSensitive makes field lookups case sensitive
func CaseSensitive() MapperOption {
	return func(o *mapperOptions) { o.caseSensitive = true }
}

// NewMapper creates an empty mapper
func NewMapper[T any](opts ...MapperOption) *Mapper[T] {
	var o mapperOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Mapper[T]{caseSensitive: o.caseSensitive, maps: make(map[string]Mapping[T])}
}

// Map registers accessor under from. The value type of the accessor drives
// the conversion of filter literals.
func Map[T, V any](m *Mapper[T], from string, accessor func(T) V, opts ...MapOption) *Mapper[T] {
	get := func(rec T) any { return accessor(rec) }
	return m.AddMap(from, reflect.TypeOf((*V)(nil)).Elem(), get, opts...)
}

// AddMap registers an untyped accessor returning values of typ. A previous
// mapping with the same key is replaced.
func (m *Mapper[T]) AddMap(from string, typ reflect.Type, get func(T) any, opts ...MapOption) *Mapper[T] {
	o := mapOptions{column: snakeCase(from)}
	for _, opt := range opts {
		opt(&o)
	}
	if o.document == "" {
		o.document = o.column
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[m.key(from)] = Mapping[T]{From: from, Column: o.column, Document: o.document, Type: typ, Convertor: o.convertor, get: get}
	return m
}

// RemoveMap deletes the mapping for from, if any
func (m *Mapper[T]) RemoveMap(from string) *Mapper[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.maps, m.key(from))
	return m
}

// HasMap reports whether from is mapped
func (m *Mapper[T]) HasMap(from string) bool {
	_, ok := m.GetMap(from)
	return ok
}

// GetMap returns the mapping for from
func (m *Mapper[T]) GetMap(from string) (Mapping[T], bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mp, ok := m.maps[m.key(strings.TrimSpace(from))]
	return mp, ok
}

// Mappings returns all mappings ordered by name
func (m *Mapper[T]) Mappings() []Mapping[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Mapping[T], 0, len(m.maps))
	for _, mp := range m.maps {
		out = append(out, mp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

func (m *Mapper[T]) key(from string) string {
	if m.caseSensitive {
		return from
	}
	return strings.ToLower(from)
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// GenerateMappings maps every exported field of T. Nested structs are mapped
// with dotted names (Address.City). A `gridify:"name"` tag renames a field and
// `gridify:"-"` skips it.
//
// Document paths follow the default bson codec: the `bson` tag name, else the
// lowercased field name, with nested structs as sub-documents unless inlined.
func (m *Mapper[T]) GenerateMappings() *Mapper[T] {
	t := reflect.TypeOf((*T)(nil)).Elem()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return m
	}
	m.generate(t, nil, "", "", "")
	return m
}

func (m *Mapper[T]) generate(t reflect.Type, index []int, prefix, columnPrefix, docPrefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("gridify"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		path := append(append([]int{}, index...), i)
		key, inline := bsonKey(f)

		ft := f.Type
		base := ft
		if base.Kind() == reflect.Pointer {
			base = base.Elem()
		}
		if base.Kind() == reflect.Struct && base != timeType && base != decimalType {
			sub := docPrefix
			if !inline {
				sub = docPrefix + key + "."
			}
			m.generate(base, path, prefix+name+".", columnPrefix+snakeCase(name)+"_", sub)
			continue
		}
		if base.Kind() == reflect.Slice || base.Kind() == reflect.Map || base.Kind() == reflect.Func || base.Kind() == reflect.Chan {
			continue
		}

		m.AddMap(prefix+name, ft, fieldGetter[T](path),
			WithColumn(columnPrefix+snakeCase(name)),
			WithDocumentPath(docPrefix+key))
	}
}

// bsonKey returns the key the bson codec stores f under and whether f is
// inlined into its parent.
func bsonKey(f reflect.StructField) (string, bool) {
	key := strings.ToLower(f.Name)
	tag, ok := f.Tag.Lookup("bson")
	if !ok {
		return key, false
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" && parts[0] != "-" {
		key = parts[0]
	}
	for _, opt := range parts[1:] {
		if opt == "inline" {
			return key, true
		}
	}
	return key, false
}

// fieldGetter walks a field index path. A nil pointer on the way yields nil.
func fieldGetter[T any](path []int) func(T) any {
	return func(rec T) any {
		v := reflect.ValueOf(&rec).Elem()
		for _, i := range path {
			for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
				if v.IsNil() {
					return nil
				}
				v = v.Elem()
			}
			v = v.Field(i)
		}
		return v.Interface()
	}
}

func snakeCase(name string) string {
	return stringy.New(strings.ReplaceAll(name, ".", "_")).SnakeCase("?", "").ToLower()
}
