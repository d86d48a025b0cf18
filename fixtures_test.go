package gridify

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type level int

const (
	levelLow level = iota
	levelMid
	levelHigh
)

func (l *level) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "low":
		*l = levelLow
	case "mid":
		*l = levelMid
	case "high":
		*l = levelHigh
	default:
		return fmt.Errorf("unknown level %q", b)
	}
	return nil
}

type address struct {
	City string
}

type testModel struct {
	ID        int
	Name      string
	Age       *int
	Score     float64
	Active    bool
	CreatedAt time.Time
	MyGuid    uuid.UUID
	Balance   decimal.Decimal
	Level     level
	Address   address
	Secret    string `gridify:"-"`
}

func intPtr(i int) *int { return &i }

func sampleData() []testModel {
	return []testModel{
		{ID: 1, Name: "John", Age: intPtr(34), Score: 7.5, Active: true, CreatedAt: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), MyGuid: uuid.MustParse("e2cec5dd-208d-4bb5-a852-50008f8ba366"), Balance: decimal.RequireFromString("10.50"), Level: levelLow, Address: address{City: "NY"}},
		{ID: 2, Name: "Jessica", Age: intPtr(28), Score: 9.1, Active: false, CreatedAt: time.Date(2022, 7, 9, 0, 0, 0, 0, time.UTC), MyGuid: uuid.MustParse("6c1e5c1b-8f0f-4cbe-9d6e-0d5f3e1c9a01"), Balance: decimal.RequireFromString("99.99"), Level: levelHigh, Address: address{City: "LA"}},
		{ID: 3, Name: "Sara", Age: nil, Score: 5, Active: true, CreatedAt: time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC), MyGuid: uuid.MustParse("0b7a2f3e-4c5d-4e6f-8a9b-0c1d2e3f4a5b"), Balance: decimal.RequireFromString("0"), Level: levelMid, Address: address{City: "NY"}},
		{ID: 4, Name: "Bob", Age: intPtr(19), Score: 6.25, Active: false, CreatedAt: time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC), MyGuid: uuid.MustParse("9f8e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"), Balance: decimal.RequireFromString("-5"), Level: levelHigh, Address: address{City: "SF"}},
		{ID: 5, Name: "jessi==ca", Age: intPtr(51), Score: 8, Active: true, CreatedAt: time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC), MyGuid: uuid.MustParse("1a2b3c4d-5e6f-4a8b-9c0d-1e2f3a4b5c6d"), Balance: decimal.RequireFromString("1000"), Level: levelLow, Address: address{City: "Austin"}},
		{ID: 6, Name: "a,b", Age: intPtr(40), Score: 3.5, Active: false, CreatedAt: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), MyGuid: uuid.MustParse("2b3c4d5e-6f7a-4b9c-8d1e-2f3a4b5c6d7e"), Balance: decimal.RequireFromString("12.5"), Level: levelMid, Address: address{City: "NY"}},
	}
}

func newTestMapper() *Mapper[testModel] {
	return NewMapper[testModel]().GenerateMappings()
}

func newTestGridifier() *Gridifier[testModel] {
	return New(newTestMapper(), DefaultConfig())
}

func ids(items []testModel) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}
