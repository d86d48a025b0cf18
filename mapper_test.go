package gridify

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMappings(t *testing.T) {
	m := newTestMapper()

	var names []string
	for _, mp := range m.Mappings() {
		names = append(names, mp.From)
	}
	assert.Equal(t, []string{
		"Active", "Address.City", "Age", "Balance", "CreatedAt",
		"ID", "Level", "MyGuid", "Name", "Score",
	}, names)

	mp, ok := m.GetMap("createdAt")
	require.True(t, ok)
	assert.Equal(t, "created_at", mp.Column)
	assert.Equal(t, "createdat", mp.Document)
	assert.Equal(t, timeType, mp.Type)

	mp, ok = m.GetMap("address.city")
	require.True(t, ok)
	assert.Equal(t, "address_city", mp.Column)
	assert.Equal(t, "address.city", mp.Document)
	assert.Equal(t, "NY", mp.Value(sampleData()[0]))

	mp, ok = m.GetMap("Age")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeOf((*int)(nil)), mp.Type)

	assert.False(t, m.HasMap("Secret"))
}

func TestGenerateMappingsTagsAndPointers(t *testing.T) {
	type owner struct {
		Email string `gridify:"mail"`
	}
	type account struct {
		Owner *owner
		Tags  []string
		Notes map[string]string
	}

	m := NewMapper[account]().GenerateMappings()
	assert.True(t, m.HasMap("owner.mail"))
	assert.False(t, m.HasMap("owner.email"))
	assert.False(t, m.HasMap("tags"))
	assert.False(t, m.HasMap("notes"))

	g := New(m, DefaultConfig())
	items := []account{{Owner: &owner{Email: "a@x.io"}}, {Owner: nil}}

	out, err := g.ApplyFiltering(items, "owner.mail==a@x.io")
	require.NoError(t, err)
	assert.Len(t, out, 1)

	out, err = g.ApplyFiltering(items, "owner.mail!=a@x.io")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Nil(t, out[0].Owner)
}

func TestGenerateMappingsNonStruct(t *testing.T) {
	m := NewMapper[int]().GenerateMappings()
	assert.Empty(t, m.Mappings())
}

func TestMapper(t *testing.T) {
	m := NewMapper[testModel]()
	Map(m, "name", func(r testModel) string { return r.Name })

	mp, ok := m.GetMap(" Name ")
	require.True(t, ok)
	assert.Equal(t, "name", mp.Column)
	assert.Equal(t, reflect.TypeOf(""), mp.Type)

	Map(m, "name", func(r testModel) string { return r.Name }, WithColumn("full_name"))
	mp, _ = m.GetMap("name")
	assert.Equal(t, "full_name", mp.Column)
	assert.Len(t, m.Mappings(), 1)

	m.RemoveMap("NAME")
	assert.False(t, m.HasMap("name"))
	assert.Empty(t, m.Mappings())
}

func TestMapperDefaultColumn(t *testing.T) {
	m := NewMapper[testModel]()
	Map(m, "vendorId", func(r testModel) int { return r.ID })
	mp, ok := m.GetMap("vendorid")
	require.True(t, ok)
	assert.Equal(t, "vendor_id", mp.Column)
}

func TestCompileNilMapper(t *testing.T) {
	_, err := Compile[testModel](Parse("a==1"), nil, DefaultConfig())
	assert.Error(t, err)
}

func TestCompileNilTree(t *testing.T) {
	_, err := Compile[testModel](nil, newTestMapper(), DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.EqualError(t, err, "invalid expression: empty")
}

func TestCompileInvalidOperator(t *testing.T) {
	tree := &SyntaxTree{
		Root: &BinaryExpr{
			Left:     &FieldExpr{Field: Token{Kind: FieldName, Text: "name"}},
			Operator: Token{Kind: And, Text: ","},
			Right:    &ValueExpr{Value: Token{Kind: ValueLiteral, Text: "John"}},
		},
	}
	_, err := Compile(tree, newTestMapper(), DefaultConfig())
	assert.ErrorIs(t, err, ErrInvalidFilter)
	assert.EqualError(t, err, "invalid operator 'And'")
}

func TestCompileShapes(t *testing.T) {
	m := newTestMapper()
	cfg := DefaultConfig()

	e, err := Compile(Parse("name==John,id>>1"), m, cfg)
	require.NoError(t, err)
	and, ok := e.(AndExpr)
	require.True(t, ok)
	require.Len(t, and.Operands, 2)
	assert.Equal(t, "Name = John", and.Operands[0].(CompareExpr).String())

	e, err = Compile(Parse("id>>abc|name==John"), m, cfg)
	require.NoError(t, err)
	or, ok := e.(OrExpr)
	require.True(t, ok)
	assert.Equal(t, FalseExpr{}, or.Operands[0])

	e, err = Compile(Parse("name=*123"), m, cfg)
	require.NoError(t, err)
	assert.Equal(t, "123", e.(CompareExpr).Value)
}

func TestSyntaxCache(t *testing.T) {
	c := NewSyntaxCache(2)
	cfg := DefaultConfig()

	first := c.Parse("a==1", cfg)
	assert.Same(t, first, c.Parse("a==1", cfg))
	assert.Equal(t, 1, c.Len())

	c.Parse("b==2", cfg)
	assert.Equal(t, 2, c.Len())

	// full: the cache is dropped before the new entry goes in
	c.Parse("c==3", cfg)
	assert.Equal(t, 1, c.Len())
	assert.NotSame(t, first, c.Parse("a==1", cfg))

	assert.Equal(t, defaultCacheSize, NewSyntaxCache(0).max)
}
