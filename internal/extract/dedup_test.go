package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadscout/internal/model"
)

func TestNormalizeCompanyName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Acme Widgets LLC", "ACME WIDGETS"},
		{"acme widgets, inc.", "ACME WIDGETS"},
		{"Smith & Sons Ltd", "SMITH AND SONS"},
		{"Multi-Word   Name", "MULTI WORD NAME"},
		{"  ", ""},
		{"O'Brien Consulting", "OBRIEN CONSULTING"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeCompanyName(tt.in), "input %q", tt.in)
	}
}

func TestDedup(t *testing.T) {
	page1 := "https://dir.example.com?page=1"
	page2 := "https://dir.example.com?page=2"
	in := []model.Listing{
		{CompanyName: "Acme Widgets LLC", SourcePageURL: page1},
		{CompanyName: "ACME WIDGETS, INC.", SourcePageURL: page1},
		{CompanyName: "Acme Widgets", SourcePageURL: page2},
		{CompanyName: "Globex", SourcePageURL: page1},
	}

	out := Dedup(in)
	assert.Len(t, out, 3)
	assert.Equal(t, "Acme Widgets LLC", out[0].CompanyName)
	assert.Equal(t, "Acme Widgets", out[1].CompanyName)
	assert.Equal(t, "Globex", out[2].CompanyName)
}
