package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	assert.Equal(t, "1.2.3.0/24", AnonymizeIP("1.2.3.4"))
	assert.Equal(t, "2001:db8:abcd::/48", AnonymizeIP("2001:db8:abcd:12::1"))
	assert.Equal(t, "unknown", AnonymizeIP("not-an-ip"))
	assert.Equal(t, "unknown", AnonymizeIP(""))
}

func TestAddressHasher(t *testing.T) {
	h := NewAddressHasher("pepper")

	t.Run("stable for the same address", func(t *testing.T) {
		assert.Equal(t, h.Key("1.2.3.4"), h.Key("1.2.3.4"))
		assert.Len(t, h.Key("1.2.3.4"), 64)
	})

	t.Run("differs across addresses and keys", func(t *testing.T) {
		assert.NotEqual(t, h.Key("1.2.3.4"), h.Key("1.2.3.5"))
		assert.NotEqual(t, h.Key("1.2.3.4"), NewAddressHasher("other").Key("1.2.3.4"))
	})

	t.Run("empty address has no key", func(t *testing.T) {
		assert.Empty(t, h.Key("  "))
	})

	t.Run("long secrets are accepted", func(t *testing.T) {
		long := NewAddressHasher(string(make([]byte, 200)))
		assert.Len(t, long.Key("1.2.3.4"), 64)
	})
}
