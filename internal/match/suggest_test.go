package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdent(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"OrderID", "orderid"},
		{"order_id", "orderid"},
		{"order-id", "orderid"},
		{"Price Cents", "pricecents"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeIdent(tt.input))
		})
	}
}

func TestRankIsDeterministic(t *testing.T) {
	names := []string{"Owner", "Items", "ID", "Items", "Status"}

	first := Rank("itmes", names)
	for range 10 {
		assert.Equal(t, first, Rank("itmes", names))
	}

	require.Len(t, first, 4, "duplicates are dropped")
	assert.Equal(t, "Items", first[0].Name)
}

func TestSuggest(t *testing.T) {
	names := []string{"Items", "OrderedAt", "Status", "CustomerID"}

	assert.Equal(t, []string{"Items"}, Suggest("itmes", names, DefaultMaxSuggestions))
	assert.Equal(t, []string{"Status"}, Suggest("statu", names, DefaultMaxSuggestions))
	assert.Nil(t, Suggest("zzzzzzzz", names, DefaultMaxSuggestions))
	assert.Empty(t, Suggest("itmes", nil, DefaultMaxSuggestions))
}

func TestSuggestionListTop(t *testing.T) {
	list := SuggestionList{{"a", 1}, {"b", 0.9}, {"c", 0.8}}

	assert.Len(t, list.Top(2), 2)
	assert.Len(t, list.Top(5), 3)
	assert.Len(t, list.AboveThreshold(0.85), 2)
}
