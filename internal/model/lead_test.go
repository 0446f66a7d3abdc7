package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListingValid(t *testing.T) {
	assert.True(t, Listing{CompanyName: "Acme"}.Valid())
	assert.False(t, Listing{CompanyName: "   "}.Valid())
	assert.False(t, Listing{}.Valid())
}

func TestNewLead(t *testing.T) {
	lead := NewLead(Listing{CompanyName: "Acme", Email: "a@acme.example"})
	assert.Equal(t, StatusPending, lead.Status)
	assert.False(t, lead.Enriched)
	assert.Equal(t, "Acme", lead.CompanyName)
}

func TestLeadFinalize(t *testing.T) {
	lead := NewLead(Listing{CompanyName: "Acme", Email: "a@acme.example"})
	lead.Finalize(StatusCompleted)
	assert.Equal(t, StatusCompleted, lead.Status)
	assert.True(t, lead.Enriched, "email counts as enriched")

	lead = NewLead(Listing{CompanyName: "Acme", Phone: "5125550100"})
	lead.Finalize(StatusCompleted)
	assert.True(t, lead.Enriched, "phone counts as enriched")

	lead = NewLead(Listing{CompanyName: "Acme", ContactPerson: "Jordan Avery"})
	lead.Finalize(StatusCompleted)
	assert.False(t, lead.Enriched, "a person alone does not")

	lead = NewLead(Listing{CompanyName: "Acme"})
	lead.Finalize(StatusFailed)
	assert.Equal(t, StatusFailed, lead.Status)
	assert.False(t, lead.Enriched)
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, Rate(0, 0))
	assert.Equal(t, 0.5, Rate(5, 10))
	assert.Equal(t, 1.0, Rate(3, 3))
}
