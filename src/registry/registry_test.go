package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestRegistryIdentity(t *testing.T) {
	r := NewRegistry(false)

	_, ok := r.Resolve("carrier-a")
	assert.False(t, ok)

	r.Register("carrier-a", "Carrier A")
	name, ok := r.Resolve("carrier-a")
	assert.True(t, ok)
	assert.Equal(t, "Carrier A", name)

	// Renaming overwrites
	r.Register("carrier-a", "Carrier A Logistics")
	name, _ = r.Resolve("carrier-a")
	assert.Equal(t, "Carrier A Logistics", name)
}

// -----------------------------------------------------------------------------

func TestRegistryEntryFees(t *testing.T) {
	r := NewRegistry(false)
	r.Register("carrier-a", "Carrier A")

	assert.False(t, r.HasPaidEntryFee("carrier-a", "lane-1"))

	r.RecordEntryFee("carrier-a", "lane-1")
	assert.True(t, r.HasPaidEntryFee("carrier-a", "lane-1"))
	assert.False(t, r.HasPaidEntryFee("carrier-a", "lane-2"), "fees are per auction")
	assert.False(t, r.HasPaidEntryFee("carrier-b", "lane-1"))
}

// -----------------------------------------------------------------------------

func TestRegistryOpenEntry(t *testing.T) {
	r := NewRegistry(true)
	assert.True(t, r.HasPaidEntryFee("anyone", "anything"))
}
