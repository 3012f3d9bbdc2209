// Copyright © 2026 printsched contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package common

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmapSetClearTest(t *testing.T) {
	a := assert.New(t)

	numOfBits := 1 + rand.Intn(500)
	bm := NewBitMap(numOfBits)

	m := make(map[int]bool)
	for i := 0; i < 10 && i < numOfBits; i++ {
		m[rand.Intn(numOfBits)] = true
	}
	testBits := make([]int, 0, len(m))
	for k := range m {
		testBits = append(testBits, k)
	}

	for _, index := range testBits {
		a.False(bm.Test(index))
	}

	for _, index := range testBits {
		bm.Set(index)
		a.True(bm.Test(index))
	}

	for i := 0; i < len(testBits); i += 2 {
		bm.Clear(testBits[i])
		a.False(bm.Test(testBits[i]))
	}

	for i := 1; i < len(testBits); i += 2 {
		a.True(bm.Test(testBits[i]))
	}
}

func TestCapabilitySet(t *testing.T) {
	a := assert.New(t)

	caps := NewCapabilitySet()
	a.False(caps.Test(CapColor))
	a.False(caps.Test(CapDuplex))

	caps.Set(CapColor)
	caps.Set(CapDuplex)
	caps.Set(CapStaple)

	a.True(caps.Test(CapColor))
	a.True(caps.Test(CapDuplex))
	a.True(caps.Test(CapStaple))
	a.False(caps.Test(CapBind))

	caps.Clear(CapDuplex)
	a.False(caps.Test(CapDuplex))
	a.True(caps.Test(CapColor))
}
