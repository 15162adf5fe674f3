package grid

import "testing"

func TestDense2GetSet(t *testing.T) {
	g := NewDense2(3, 2, 0)
	cases := []struct {
		x, y, value int
	}{
		{0, 0, 1},
		{2, 0, 2},
		{0, 1, 3},
		{2, 1, 4},
	}
	for i, tc := range cases {
		g.Set(tc.x, tc.y, tc.value)
		if got := g.Get(tc.x, tc.y); got != tc.value {
			t.Errorf("%d: Get(%d,%d) = %d, want %d", i, tc.x, tc.y, got, tc.value)
		}
	}
}

func TestDense2Index(t *testing.T) {
	g := NewDense2(4, 3, 0)
	g.Set(3, 2, 42)
	if got, want := g.Raw()[2*4+3], 42; got != want {
		t.Errorf("row-major index mismatch: got %d, want %d", got, want)
	}
}

func TestDense2OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on out-of-range access")
		}
	}()
	g := NewDense2(2, 2, false)
	g.Get(2, 0)
}

func TestDense3GetSet(t *testing.T) {
	g := NewDense3[bool](2, 2, 3, true)
	g.Set(1, 1, 2, false)
	if g.Get(1, 1, 2) {
		t.Errorf("Get(1,1,2) = true, want false")
	}
	if !g.Get(0, 0, 0) {
		t.Errorf("Get(0,0,0) = false, want true (fill value)")
	}
}

func TestDense3DepthContiguous(t *testing.T) {
	// For a fixed (x, y), the depth axis must be contiguous in storage -
	// this is the access pattern the propagator relies on.
	g := NewDense3[int](2, 2, 4, 0)
	for z := 0; z < 4; z++ {
		g.Set(1, 0, z, z+1)
	}
	base := (1*g.Height() + 0) * g.Depth()
	for z := 0; z < 4; z++ {
		if got, want := g.Get(1, 0, z), z+1; got != want {
			t.Errorf("Get(1,0,%d) = %d, want %d", z, got, want)
		}
		if got, want := g.data[base+z], z+1; got != want {
			t.Errorf("data[%d] = %d, want %d (depth axis not contiguous)", base+z, got, want)
		}
	}
}

func TestDense3OutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on out-of-range access")
		}
	}()
	g := NewDense3[int](2, 2, 2, 0)
	g.Set(0, 0, 2, 1)
}
