package rates

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"staybook/internal/domain/shared/money"
)

func TestNormalizeNightlyRate(t *testing.T) {
	tests := []struct {
		name     string
		fields   Fields
		wantKind Kind
		want     money.Amount
	}{
		{name: "explicit nightly wins", fields: Fields{Nightly: 12_000, Daily: 9_000, Weekly: 70_000}, wantKind: KindNightly, want: 12_000},
		{name: "legacy daily", fields: Fields{Daily: 9_000, Weekly: 70_000}, wantKind: KindDaily, want: 9_000},
		{name: "legacy weekly", fields: Fields{Weekly: 70_000}, wantKind: KindWeekly, want: 10_000},
		{name: "legacy weekly rounds", fields: Fields{Weekly: 10_000}, wantKind: KindWeekly, want: 1_429},
		{name: "legacy monthly", fields: Fields{Monthly: 300_000}, wantKind: KindMonthly, want: 10_000},
		{name: "lump monthly", fields: Fields{Price: 90_000, DurationUnit: UnitMonthly}, wantKind: KindLump, want: 3_000},
		{name: "lump weekly", fields: Fields{Price: 70_000, DurationUnit: UnitWeekly}, wantKind: KindLump, want: 10_000},
		{name: "lump daily", fields: Fields{Price: 8_000, DurationUnit: UnitDaily}, wantKind: KindLump, want: 8_000},
		{name: "lump unit is case insensitive", fields: Fields{Price: 90_000, DurationUnit: " monthly "}, wantKind: KindLump, want: 3_000},
		{name: "unknown unit falls through to raw price", fields: Fields{Price: 90_000, DurationUnit: "Yearly"}, wantKind: KindRawPrice, want: 90_000},
		{name: "raw price without unit", fields: Fields{Price: 15_000}, wantKind: KindRawPrice, want: 15_000},
		{name: "zero nightly is ignored", fields: Fields{Nightly: 0, Weekly: 14_000}, wantKind: KindWeekly, want: 2_000},
		{name: "negative values are ignored", fields: Fields{Nightly: -5, Daily: -1, Price: -10}, wantKind: KindNone, want: 0},
		{name: "nothing present", fields: Fields{}, wantKind: KindNone, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Classify(tt.fields)
			assert.Equal(t, tt.wantKind, src.Kind)
			assert.Equal(t, tt.want, NormalizeNightlyRate(tt.fields))
		})
	}
}

func TestDurationUnitDays(t *testing.T) {
	days, ok := UnitWeekly.Days()
	assert.True(t, ok)
	assert.Equal(t, int64(7), days)

	_, ok = DurationUnit("Fortnightly").Days()
	assert.False(t, ok)
}
