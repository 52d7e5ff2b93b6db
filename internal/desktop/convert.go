package desktop

import (
	"errors"
	"sync"
)

// PixelConverter transforms a packed-RGB image into planar 4:2:0 Y/U/V using
// a fixed pool of worker goroutines, one per contiguous row band. The BT.601
// studio-range math and the barrier synchronisation protocol are ported from
// the original rgb2yuv worker pool, with the wait predicate corrected: the
// original C++ prototype waits on std::all_of over an empty range and so
// never actually blocks on worker completion (see DESIGN.md). Convert here
// blocks until every worker has genuinely cleared its ready flag.
type PixelConverter struct {
	width, height int

	mu   sync.Mutex
	cond *sync.Cond

	src       []byte
	srcStride int
	dstY      []byte
	dstU      []byte
	dstV      []byte
	strideY   int
	strideU   int
	strideV   int

	workers []*converterWorker
	stop    bool
	wg      sync.WaitGroup
}

type converterWorker struct {
	startRow, endRow int
	ready            bool
}

// NewPixelConverter spawns nWorkers goroutines, each assigned a contiguous
// band [i*h/n, (i+1)*h/n). Height need not be divisible by n: the integer
// division spreads the leftover rows across the bands, and the last band
// always ends at exactly height, so every row is covered once.
func NewPixelConverter(nWorkers, width, height int) (*PixelConverter, error) {
	if nWorkers <= 0 {
		return nil, errors.New("desktop: PixelConverter requires at least one worker")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New("desktop: PixelConverter requires positive dimensions")
	}

	c := &PixelConverter{
		width:   width,
		height:  height,
		workers: make([]*converterWorker, nWorkers),
	}
	c.cond = sync.NewCond(&c.mu)

	for i := 0; i < nWorkers; i++ {
		w := &converterWorker{
			startRow: i * height / nWorkers,
			endRow:   (i + 1) * height / nWorkers,
		}
		c.workers[i] = w
		c.wg.Add(1)
		go c.runWorker(w)
	}
	return c, nil
}

// Convert blocks the caller until every worker has finished processing the
// band assigned to it. Must not be called concurrently from multiple
// goroutines; may be called repeatedly on the same Converter.
func (c *PixelConverter) Convert(src []byte, srcStride int, dstY, dstU, dstV []byte, strideY, strideU, strideV int) {
	c.mu.Lock()
	c.src = src
	c.srcStride = srcStride
	c.dstY = dstY
	c.dstU = dstU
	c.dstV = dstV
	c.strideY = strideY
	c.strideU = strideU
	c.strideV = strideV
	for _, w := range c.workers {
		w.ready = true
	}
	c.cond.Broadcast()

	// Wait until every worker's ready flag has been cleared. This is the
	// corrected barrier predicate: the original prototype's all_of ranged
	// over begin..begin (empty), so it never actually waited.
	for !c.allDone() {
		c.cond.Wait()
	}
	c.mu.Unlock()
}

func (c *PixelConverter) allDone() bool {
	for _, w := range c.workers {
		if w.ready {
			return false
		}
	}
	return true
}

func (c *PixelConverter) runWorker(w *converterWorker) {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		for !w.ready && !c.stop {
			c.cond.Wait()
		}
		if c.stop {
			c.mu.Unlock()
			return
		}
		src, srcStride := c.src, c.srcStride
		dstY, dstU, dstV := c.dstY, c.dstU, c.dstV
		strideY, strideU, strideV := c.strideY, c.strideU, c.strideV
		c.mu.Unlock()

		convertBand(src, srcStride, dstY, dstU, dstV, strideY, strideU, strideV, c.width, c.height, w.startRow, w.endRow)

		c.mu.Lock()
		w.ready = false
		c.cond.Broadcast()
		c.mu.Unlock()
	}
}

// Close stops all worker goroutines and waits for them to exit. No worker
// blocks on I/O, so this always returns promptly.
func (c *PixelConverter) Close() {
	c.mu.Lock()
	c.stop = true
	c.cond.Broadcast()
	c.mu.Unlock()
	c.wg.Wait()
}

// convertBand performs the exact BT.601 studio-range math for rows
// [startRow, endRow) of a packed B,G,R,X src image, writing planar Y for
// every row and subsampled U/V for every even row. At the bottom edge
// (y+1 >= height) the 2x2 chroma average degenerates to the 1x2 top pair,
// matching the reference formula bit-for-bit.
func convertBand(src []byte, srcStride int, dstY, dstU, dstV []byte, strideY, strideU, strideV, width, height, startRow, endRow int) {
	for y := startRow; y < endRow; y++ {
		srcLine := src[y*srcStride:]
		yLine := dstY[y*strideY:]

		for x := 0; x < width; x++ {
			b := int(srcLine[x*4+0])
			g := int(srcLine[x*4+1])
			r := int(srcLine[x*4+2])
			yLine[x] = byte(((66*r + 129*g + 25*b + 128) >> 8) + 16)
		}

		if y%2 != 0 {
			continue
		}

		uLine := dstU[(y/2)*strideU:]
		vLine := dstV[(y/2)*strideV:]
		hasNextRow := y+1 < height
		var nextLine []byte
		if hasNextRow {
			nextLine = src[(y+1)*srcStride:]
		}

		for x := 0; x < width; x += 2 {
			x1 := x + 1
			if x1 >= width {
				x1 = x
			}

			r := int(srcLine[x*4+2]) + int(srcLine[x1*4+2])
			g := int(srcLine[x*4+1]) + int(srcLine[x1*4+1])
			b := int(srcLine[x*4+0]) + int(srcLine[x1*4+0])
			if hasNextRow {
				r += int(nextLine[x*4+2]) + int(nextLine[x1*4+2])
				g += int(nextLine[x*4+1]) + int(nextLine[x1*4+1])
				b += int(nextLine[x*4+0]) + int(nextLine[x1*4+0])
			} else {
				// Bottom-edge degenerate case: the 2x2 average uses only
				// the top 1x2 pair, each counted twice, per spec.
				r += int(srcLine[x*4+2]) + int(srcLine[x1*4+2])
				g += int(srcLine[x*4+1]) + int(srcLine[x1*4+1])
				b += int(srcLine[x*4+0]) + int(srcLine[x1*4+0])
			}
			r /= 4
			g /= 4
			b /= 4

			uLine[x/2] = byte(((-38*r - 74*g + 112*b + 128) >> 8) + 128)
			vLine[x/2] = byte(((112*r - 94*g - 18*b + 128) >> 8) + 128)
		}
	}
}
