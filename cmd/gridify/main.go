// Command gridify explains a filter: it prints the tokens, the syntax tree and
// the queries the filter turns into for each backend, and can run the query
// against a JSON file of records.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bi0dread/gridify"
)

type record = map[string]any

func main() {
	opts, err := loadOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(opts.Logger)
	if err := run(context.Background(), opts); err != nil {
		opts.Logger.Error("gridify failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	var mapperOpts []gridify.MapperOption
	if opts.CaseSensitive {
		mapperOpts = append(mapperOpts, gridify.CaseSensitive())
	}
	mapper := gridify.NewMapper[record](mapperOpts...)
	for _, decl := range opts.Fields {
		if err := declareField(mapper, decl); err != nil {
			return err
		}
	}

	g := gridify.New(mapper, opts.Config)
	q := gridify.Query{
		Filter:    opts.Filter,
		SortBy:    opts.SortBy,
		IsSortAsc: opts.Ascending,
		Page:      opts.Page,
		PageSize:  opts.PageSize,
	}

	explainSyntax(opts)

	plan, err := g.Plan(q)
	if err != nil {
		return err
	}
	if err := explainPlan(opts, plan); err != nil {
		return err
	}

	if opts.Data == "" {
		return nil
	}
	items, err := loadRecords(opts.Data)
	if err != nil {
		return err
	}
	result, err := g.Find(ctx, gridify.SliceSource[record]{Items: items}, q)
	if err != nil {
		return err
	}
	return printResult(opts.Output, result)
}

func explainSyntax(opts options) {
	tokens, _ := gridify.Tokenize(opts.Filter)
	if opts.AllowEscapes {
		tokens, _ = gridify.TokenizeEscaped(opts.Filter)
	}
	fmt.Println("tokens:")
	for _, t := range tokens {
		fmt.Printf("  %3d %-15s %q\n", t.Pos, t.Kind, t.Text)
	}
	tree := gridify.Parse(opts.Filter)
	if opts.AllowEscapes {
		tree = gridify.ParseEscaped(opts.Filter)
	}
	fmt.Printf("tree: %s\n", tree.Root)
	for _, d := range tree.Diagnostics {
		fmt.Printf("diagnostic: %s\n", d)
	}
}

func explainPlan(opts options, plan gridify.Plan) error {
	fmt.Printf("raw sql: %s\n", gridify.RawSQL(opts.Table, plan))

	db, err := openDryRun(opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s sql: %s\n", opts.Dialect, gridify.GormSQL(db, opts.Table, plan))

	filter, err := bson.MarshalExtJSON(gridify.BuildMongoFilter(plan.Filter), false, false)
	if err != nil {
		return fmt.Errorf("failed to render mongo filter: %w", err)
	}
	fmt.Printf("mongo filter: %s\n", filter)

	es, err := gridify.GetElasticsearchQueryString(plan)
	if err != nil {
		return err
	}
	fmt.Printf("elasticsearch: %s\n", es)
	return nil
}

// openDryRun opens a gorm handle that only renders statements
func openDryRun(opts options) (*gorm.DB, error) {
	cfg := &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	}
	switch strings.ToLower(opts.Dialect) {
	case "postgres", "postgresql":
		return gorm.Open(postgres.New(postgres.Config{DSN: opts.DSN}), cfg)
	case "sqlite", "":
		return gorm.Open(sqlite.Open(":memory:"), cfg)
	default:
		return nil, fmt.Errorf("unknown dialect %q", opts.Dialect)
	}
}

var fieldTypes = map[string]struct {
	typ reflect.Type
	get func(v any) (any, error)
}{
	"string":   {reflect.TypeOf(""), func(v any) (any, error) { return cast.ToStringE(v) }},
	"int":      {reflect.TypeOf(int64(0)), func(v any) (any, error) { return cast.ToInt64E(v) }},
	"uint":     {reflect.TypeOf(uint64(0)), func(v any) (any, error) { return cast.ToUint64E(v) }},
	"float":    {reflect.TypeOf(float64(0)), func(v any) (any, error) { return cast.ToFloat64E(v) }},
	"bool":     {reflect.TypeOf(false), func(v any) (any, error) { return cast.ToBoolE(v) }},
	"time":     {reflect.TypeOf(time.Time{}), func(v any) (any, error) { return cast.ToTimeE(v) }},
	"duration": {reflect.TypeOf(time.Duration(0)), func(v any) (any, error) { return cast.ToDurationE(v) }},
	"uuid": {reflect.TypeOf(uuid.UUID{}), func(v any) (any, error) {
		return uuid.Parse(cast.ToString(v))
	}},
	"decimal": {reflect.TypeOf(decimal.Decimal{}), func(v any) (any, error) {
		return decimal.NewFromString(cast.ToString(v))
	}},
}

// declareField maps name:type onto a key of the JSON records
func declareField(mapper *gridify.Mapper[record], decl string) error {
	name, kind, found := strings.Cut(decl, ":")
	name = strings.TrimSpace(name)
	if !found {
		kind = "string"
	}
	ft, ok := fieldTypes[strings.ToLower(strings.TrimSpace(kind))]
	if name == "" || !ok {
		return fmt.Errorf("invalid field declaration %q", decl)
	}
	get := func(r record) any {
		v, ok := r[name]
		if !ok || v == nil {
			return nil
		}
		out, err := ft.get(v)
		if err != nil {
			slog.Debug("record value does not match field type", "field", name, "value", v)
			return nil
		}
		return out
	}
	mapper.AddMap(name, ft.typ, get, gridify.WithColumn(name))
	return nil
}

func loadRecords(path string) ([]record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var items []record
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return items, nil
}

func printResult(format string, v any) error {
	var (
		b   []byte
		err error
	)
	if strings.EqualFold(format, "yaml") {
		b, err = yaml.Marshal(v)
	} else {
		b, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}
	fmt.Printf("result:\n%s\n", b)
	return nil
}
