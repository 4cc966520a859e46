package whitelist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("bob@Example.COM"))
	assert.Equal(t, "example.com", Domain("Alice <alice@example.com>"))
	assert.Equal(t, "", Domain("not-an-address"))
	assert.Equal(t, "", Domain("trailing@"))
}

func TestIsWhitelisted(t *testing.T) {
	checker := NewChecker([]string{" Example.com ", "partner.org.", ""}, zap.NewNop())

	tests := []struct {
		from string
		want bool
	}{
		{from: "ceo@example.com", want: true},
		{from: "Support <help@mail.example.com>", want: true},
		{from: "x@partner.org", want: true},
		{from: "x@notexample.com", want: false},
		{from: "x@example.com.evil.net", want: false},
		{from: "garbage", want: false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, checker.IsWhitelisted(tt.from), tt.from)
	}
}

func TestEmptyWhitelist(t *testing.T) {
	assert.False(t, NewChecker(nil, nil).IsWhitelisted("a@example.com"))
}
