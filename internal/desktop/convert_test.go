package desktop

import (
	"testing"
)

// makeSolidBGRA fills a width*height BGRA buffer with a single color.
func makeSolidBGRA(width, height int, b, g, r byte) ([]byte, int) {
	stride := width * 4
	buf := make([]byte, stride*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			off := y*stride + x*4
			buf[off+0] = b
			buf[off+1] = g
			buf[off+2] = r
			buf[off+3] = 0
		}
	}
	return buf, stride
}

func TestConvertBlocksUntilWorkersFinish(t *testing.T) {
	const width, height = 16, 8
	c, err := NewPixelConverter(4, width, height)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	src, srcStride := makeSolidBGRA(width, height, 10, 20, 30)
	dstY := make([]byte, width*height)
	dstU := make([]byte, (width/2)*(height/2))
	dstV := make([]byte, (width/2)*(height/2))

	c.Convert(src, srcStride, dstY, dstU, dstV, width, width/2, width/2)

	// If Convert returned before every worker finished, some rows would
	// still be zero from initialization; a solid-color frame should have
	// no zero-valued luma byte (expected Y for r=30,g=20,b=10 is nonzero).
	for i, v := range dstY {
		if v == 0 {
			t.Fatalf("row byte %d is zero; Convert returned before workers finished", i)
		}
	}
}

func TestConvertRepeatedCallsAreByteIdentical(t *testing.T) {
	const width, height = 16, 8
	c, err := NewPixelConverter(3, width, height)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	src, srcStride := makeSolidBGRA(width, height, 64, 128, 200)

	run := func() ([]byte, []byte, []byte) {
		dstY := make([]byte, width*height)
		dstU := make([]byte, (width/2)*(height/2))
		dstV := make([]byte, (width/2)*(height/2))
		c.Convert(src, srcStride, dstY, dstU, dstV, width, width/2, width/2)
		return dstY, dstU, dstV
	}

	y1, u1, v1 := run()
	y2, u2, v2 := run()

	for i := range y1 {
		if y1[i] != y2[i] {
			t.Fatalf("Y differs at %d: %d vs %d", i, y1[i], y2[i])
		}
	}
	for i := range u1 {
		if u1[i] != u2[i] {
			t.Fatalf("U differs at %d: %d vs %d", i, u1[i], u2[i])
		}
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatalf("V differs at %d: %d vs %d", i, v1[i], v2[i])
		}
	}
}

func TestConvertBandExactLumaFormula(t *testing.T) {
	const width, height = 2, 2
	b, g, r := byte(10), byte(20), byte(30)
	src, srcStride := makeSolidBGRA(width, height, b, g, r)

	dstY := make([]byte, width*height)
	dstU := make([]byte, 1)
	dstV := make([]byte, 1)

	convertBand(src, srcStride, dstY, dstU, dstV, width, 1, 1, width, height, 0, height)

	want := byte(((66*int(r) + 129*int(g) + 25*int(b) + 128) >> 8) + 16)
	for i, v := range dstY {
		if v != want {
			t.Fatalf("Y[%d] = %d, want %d", i, v, want)
		}
	}
}

func TestConvertBandBottomEdgeDegenerateChroma(t *testing.T) {
	// Height of 1 forces every row to be a "last row": the 2x2 chroma
	// average must degenerate to the top 1x2 pair instead of reading
	// past the buffer.
	const width, height = 2, 1
	src, srcStride := makeSolidBGRA(width, height, 5, 15, 25)

	dstY := make([]byte, width*height)
	dstU := make([]byte, 1)
	dstV := make([]byte, 1)

	convertBand(src, srcStride, dstY, dstU, dstV, width, 1, 1, width, height, 0, height)

	r, g, b := 25, 15, 5
	wantU := byte(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
	wantV := byte(((112*r - 94*g - 18*b + 128) >> 8) + 128)

	if dstU[0] != wantU {
		t.Fatalf("U = %d, want %d", dstU[0], wantU)
	}
	if dstV[0] != wantV {
		t.Fatalf("V = %d, want %d", dstV[0], wantV)
	}
}
