package billing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tobiaswld/werkstatt/internal/billing"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "RE-0001", billing.FormatNumber("RE-", 1))
	assert.Equal(t, "RE-0042", billing.FormatNumber("RE-", 42))
	assert.Equal(t, "AN-9999", billing.FormatNumber("AN-", 9999))

	// Beyond four digits the sequence is printed as-is.
	assert.Equal(t, "RE-10234", billing.FormatNumber("RE-", 10234))

	// An empty prefix is allowed.
	assert.Equal(t, "0007", billing.FormatNumber("", 7))
}

func TestSuggestNext(t *testing.T) {
	type args struct {
		numbers []string
		prefix  string
		counter int
	}

	type testCase struct {
		name string
		args args
		want int
	}

	tests := []testCase{
		{
			name: "HighestInUseWins",
			args: args{
				numbers: []string{"RE-0001", "RE-0003", "RE-0009"},
				prefix:  "RE-",
				counter: 2,
			},
			want: 10,
		},
		{
			name: "ForeignPrefixIgnored",
			args: args{
				numbers: []string{"RE-0009", "AN-0050"},
				prefix:  "RE-",
				counter: 1,
			},
			want: 10,
		},
		{
			name: "NoMatchesFallsBackToCounter",
			args: args{
				numbers: []string{"AN-0050"},
				prefix:  "RE-",
				counter: 7,
			},
			want: 7,
		},
		{
			name: "EmptyHistoryUsesCounter",
			args: args{
				numbers: nil,
				prefix:  "RE-",
				counter: 12,
			},
			want: 12,
		},
		{
			name: "ZeroCounterStartsAtOne",
			args: args{
				numbers: nil,
				prefix:  "RE-",
				counter: 0,
			},
			want: 1,
		},
		{
			name: "NumberWithoutDigitsIgnored",
			args: args{
				numbers: []string{"RE-DRAFT", "RE-0004"},
				prefix:  "RE-",
				counter: 1,
			},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := billing.SuggestNext(tt.args.numbers, tt.args.prefix, tt.args.counter)
			assert.Equal(t, tt.want, got)

			// Suggesting is read-only; a second call must agree.
			assert.Equal(t, got, billing.SuggestNext(tt.args.numbers, tt.args.prefix, tt.args.counter))
		})
	}
}
