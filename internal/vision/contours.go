package vision

import (
	"fmt"
	"image"
)

// Neighbor directions, counterclockwise on screen starting east:
// E, NE, N, NW, W, SW, S, SE.
const (
	dirEast = 0
	dirWest = 4
)

// FindContours implements Backend with the border following algorithm of
// Suzuki and Abe (1985).
//
// Every outer border and every hole border of the foreground (non-zero
// pixels) is reported, in raster order of its starting pixel. No hierarchy
// is kept. Each border is compressed so that horizontal, vertical and
// diagonal runs keep only their end points.
func (n *Native) FindContours(edges *image.Gray) ([]Contour, error) {
	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("cannot find contours in empty image")
	}

	// Label grid with a one-pixel zero frame so neighbors never go out of
	// range. 0 = background, 1 = unvisited foreground, +/-NBD = border id.
	pw := w + 2
	labels := make([]int32, pw*(h+2))
	for y := 0; y < h; y++ {
		row := edges.Pix[edges.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			if row[x] != 0 {
				labels[(y+1)*pw+x+1] = 1
			}
		}
	}

	offsets := [8]int{1, -pw + 1, -pw, -pw - 1, -1, pw - 1, pw, pw + 1}

	var contours []Contour
	nbd := int32(1)
	for y := 1; y <= h; y++ {
		for x := 1; x <= w; x++ {
			p := y*pw + x
			v := labels[p]
			if v == 0 {
				continue
			}

			var from int
			switch {
			case v == 1 && labels[p-1] == 0:
				from = dirWest // outer border
			case v >= 1 && labels[p+1] == 0:
				from = dirEast // hole border
			default:
				continue
			}

			nbd++
			chain := followBorder(labels, offsets, p, from, nbd)

			pts := make([]image.Point, len(chain))
			for i, idx := range chain {
				pts[i] = image.Point{X: idx%pw - 1, Y: idx/pw - 1}
			}
			contours = append(contours, compressChain(pts))
		}
	}
	return contours, nil
}

// followBorder traces one border starting at pixel start, entered from the
// zero neighbor in direction from, labelling visited pixels with nbd.
// It returns the label-grid indices of the border pixels in order.
func followBorder(labels []int32, offsets [8]int, start, from int, nbd int32) []int {
	// Look clockwise around start for the first non-zero neighbor.
	first := -1
	for k := 0; k < 8; k++ {
		d := (from - k + 8) & 7
		if labels[start+offsets[d]] != 0 {
			first = d
			break
		}
	}
	if first < 0 {
		labels[start] = -nbd
		return []int{start}
	}

	p1 := start + offsets[first]
	p3 := start
	back := first // direction from p3 to the previous border pixel

	var chain []int
	for {
		chain = append(chain, p3)

		// Counterclockwise from the pixel after the previous one.
		eastZero := false
		d := back
		var p4 int
		for {
			d = (d + 1) & 7
			q := p3 + offsets[d]
			if labels[q] != 0 {
				p4 = q
				break
			}
			if d == dirEast {
				eastZero = true
			}
		}

		if eastZero {
			labels[p3] = -nbd
		} else if labels[p3] == 1 {
			labels[p3] = nbd
		}

		if p4 == start && p3 == p1 {
			return chain
		}
		back = (d + 4) & 7
		p3 = p4
	}
}

// compressChain drops every point whose incoming and outgoing steps point
// the same way, leaving only the corners of a closed chain.
func compressChain(pts []image.Point) Contour {
	n := len(pts)
	if n <= 2 {
		return Contour(pts)
	}

	out := make(Contour, 0, n)
	for i := 0; i < n; i++ {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		in := pts[i].Sub(prev)
		outStep := next.Sub(pts[i])
		if in != outStep {
			out = append(out, pts[i])
		}
	}
	if len(out) == 0 {
		out = append(out, pts[0])
	}
	return out
}
