package eventloop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourcePressureDefaultsToNoClamp(t *testing.T) {
	a := assert.New(t)
	r := NewResourcePressure(90, 90)
	a.Equal(1.0, r.ClampFactor())
}

func TestResourcePressureClampsAfterHighReading(t *testing.T) {
	a := assert.New(t)
	r := NewResourcePressure(90, 90)

	r.mu.Lock()
	r.factor = 0.25
	r.mu.Unlock()

	a.Equal(0.25, r.ClampFactor())
}
