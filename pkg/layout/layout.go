// Package layout describes the storage layout of upgradeable contracts as
// composable descriptors. A layout lists its named fields and reserved gaps
// in declaration order; a derived contract extends its base layout so its
// first field lands right after the base's last gap.
package layout

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/streaming-dev/IMA/pkg/storage"
)

// DefaultGap is the reserved span OpenZeppelin upgradeable contracts leave
// after their own fields.
const DefaultGap = 50

// Errors reported by Builder.Build.
var (
	// ErrDuplicateField is returned when a field name is declared twice.
	ErrDuplicateField = errors.New("duplicate layout field")
	// ErrEmptyFieldName is returned for a field without a name.
	ErrEmptyFieldName = errors.New("empty layout field name")
	// ErrEmptyGap is returned for a gap of zero slots.
	ErrEmptyGap = errors.New("gap must reserve at least one slot")
)

// Field is a named state variable occupying one slot.
type Field struct {
	Name string
	Slot uint64
}

// Layout is an immutable, fully allocated storage layout.
type Layout struct {
	name   string
	fields []Field
	index  map[string]int
	span   uint64
}

// Name returns the layout name.
func (l *Layout) Name() string {
	return l.name
}

// Span returns the number of slots the layout occupies, gaps included.
func (l *Layout) Span() uint64 {
	return l.span
}

// Fields returns the named fields in declaration order.
func (l *Layout) Fields() []Field {
	fields := make([]Field, len(l.fields))
	copy(fields, l.fields)
	return fields
}

// Position returns the slot number of a named field.
func (l *Layout) Position(name string) (uint64, bool) {
	i, ok := l.index[name]
	if !ok {
		return 0, false
	}
	return l.fields[i].Slot, true
}

// Slot returns the storage slot of a named field.
func (l *Layout) Slot(name string) (common.Hash, bool) {
	pos, ok := l.Position(name)
	if !ok {
		return common.Hash{}, false
	}
	return storage.SlotFromUint64(pos), true
}

// MustSlot is Slot for fields known at compile time.
func (l *Layout) MustSlot(name string) common.Hash {
	slot, ok := l.Slot(name)
	if !ok {
		panic(fmt.Sprintf("layout %s has no field %q", l.name, name))
	}
	return slot
}

// Builder allocates slots for a layout in declaration order.
type Builder struct {
	name   string
	next   uint64
	fields []Field
	index  map[string]int
	err    error
}

// NewBuilder starts a layout at slot 0.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		index: make(map[string]int),
	}
}

// Extend starts a layout that inherits base: base fields stay visible and
// allocation continues after base's span.
func Extend(name string, base *Layout) *Builder {
	b := NewBuilder(name)
	b.next = base.span
	for _, f := range base.fields {
		b.index[f.Name] = len(b.fields)
		b.fields = append(b.fields, f)
	}
	return b
}

// Field allocates the next slot to a named field.
func (b *Builder) Field(name string) *Builder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = ErrEmptyFieldName
		return b
	}
	if _, exists := b.index[name]; exists {
		b.err = fmt.Errorf("%w: %s in layout %s", ErrDuplicateField, name, b.name)
		return b
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, Field{Name: name, Slot: b.next})
	b.next++
	return b
}

// Gap reserves n slots that are never written.
func (b *Builder) Gap(n uint64) *Builder {
	if b.err != nil {
		return b
	}
	if n == 0 {
		b.err = ErrEmptyGap
		return b
	}
	b.next += n
	return b
}

// Build finalizes the layout.
func (b *Builder) Build() (*Layout, error) {
	if b.err != nil {
		return nil, b.err
	}
	l := &Layout{
		name:   b.name,
		fields: make([]Field, len(b.fields)),
		index:  make(map[string]int, len(b.index)),
		span:   b.next,
	}
	copy(l.fields, b.fields)
	for k, v := range b.index {
		l.index[k] = v
	}
	return l, nil
}

// MustBuild is Build for layouts declared at package level.
func (b *Builder) MustBuild() *Layout {
	l, err := b.Build()
	if err != nil {
		panic(err)
	}
	return l
}
