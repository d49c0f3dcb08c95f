package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		generated, err := New(KindEvent)
		require.NoError(t, err)
		assert.False(t, ids[generated], "ID should be unique: %s", generated)
		ids[generated] = true
	}

	assert.Len(t, ids, count)
}

func TestNew_Format(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"event", KindEvent},
		{"song", KindSong},
		{"subscriber", KindSubscriber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generated, err := New(tt.kind)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(generated, string(tt.kind)+"-"))
			// NanoID body is 21 characters.
			assert.Len(t, generated, len(tt.kind)+1+21)
		})
	}
}

func TestMustNew(t *testing.T) {
	assert.NotPanics(t, func() {
		generated := MustNew(KindSong)
		assert.NotEmpty(t, generated)
	})
}
