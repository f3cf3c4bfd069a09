package vision

import (
	"image"
	"math"
)

// ContourArea implements Backend using the shoelace formula.
func (n *Native) ContourArea(c Contour) float64 {
	return contourArea(c)
}

// ArcLength implements Backend.
func (n *Native) ArcLength(c Contour, closed bool) float64 {
	return arcLength(c, closed)
}

// ApproxPolyDP implements Backend.
func (n *Native) ApproxPolyDP(c Contour, epsilon float64, closed bool) Contour {
	return approxPolyDP(c, epsilon, closed)
}

func contourArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var sum float64
	prev := c[len(c)-1]
	for _, p := range c {
		sum += float64(prev.X)*float64(p.Y) - float64(p.X)*float64(prev.Y)
		prev = p
	}
	return math.Abs(sum) / 2
}

func arcLength(c Contour, closed bool) float64 {
	if len(c) < 2 {
		return 0
	}
	var total float64
	for i := 1; i < len(c); i++ {
		total += dist(c[i-1], c[i])
	}
	if closed {
		total += dist(c[len(c)-1], c[0])
	}
	return total
}

func dist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// lineDist is the distance from p to the infinite line through a and b,
// or to a itself when a and b coincide.
func lineDist(p, a, b image.Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return dist(p, a)
	}
	return math.Abs(dy*float64(p.X-a.X)-dx*float64(p.Y-a.Y)) / length
}

// approxPolyDP runs Douglas-Peucker simplification.
//
// A closed curve is first split at two approximately farthest-apart points
// (three rounds of "jump to the farthest point" from the first point) and
// each half is simplified as an open chain. A final pass removes vertices
// that ended up within epsilon of the line through their neighbors.
func approxPolyDP(c Contour, epsilon float64, closed bool) Contour {
	n := len(c)
	if n <= 2 || epsilon < 0 {
		return append(Contour(nil), c...)
	}
	if !closed {
		return douglasPeucker(c, epsilon)
	}

	start, far := 0, 0
	for iter := 0; iter < 3; iter++ {
		best := -1.0
		for j := 0; j < n; j++ {
			if d := dist(c[start], c[j]); d > best {
				best = d
				far = j
			}
		}
		if best <= epsilon {
			return Contour{c[start]}
		}
		if iter < 2 {
			start, far = far, start
		}
	}

	a, b := start, far
	if a > b {
		a, b = b, a
	}
	first := douglasPeucker(c[a:b+1], epsilon)
	wrap := make(Contour, 0, n-b+a+1)
	wrap = append(wrap, c[b:]...)
	wrap = append(wrap, c[:a+1]...)
	second := douglasPeucker(wrap, epsilon)

	out := make(Contour, 0, len(first)+len(second))
	out = append(out, first[:len(first)-1]...)
	out = append(out, second[:len(second)-1]...)

	return dropCollinear(out, epsilon)
}

// douglasPeucker simplifies an open chain, always keeping both end points.
func douglasPeucker(c Contour, epsilon float64) Contour {
	if len(c) <= 2 {
		return append(Contour(nil), c...)
	}

	keep := make([]bool, len(c))
	keep[0] = true
	keep[len(c)-1] = true

	type span struct{ lo, hi int }
	stack := []span{{0, len(c) - 1}}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		idx := -1
		maxD := epsilon
		for i := s.lo + 1; i < s.hi; i++ {
			if d := lineDist(c[i], c[s.lo], c[s.hi]); d > maxD {
				maxD = d
				idx = i
			}
		}
		if idx >= 0 {
			keep[idx] = true
			stack = append(stack, span{s.lo, idx}, span{idx, s.hi})
		}
	}

	out := make(Contour, 0, len(c))
	for i, k := range keep {
		if k {
			out = append(out, c[i])
		}
	}
	return out
}

// dropCollinear removes vertices of a closed polygon lying within epsilon
// of the line through their neighbors, repeating until none remain.
func dropCollinear(c Contour, epsilon float64) Contour {
	for len(c) > 3 {
		removed := false
		for i := 0; i < len(c) && len(c) > 3; i++ {
			prev := c[(i-1+len(c))%len(c)]
			next := c[(i+1)%len(c)]
			if lineDist(c[i], prev, next) <= epsilon {
				c = append(c[:i:i], c[i+1:]...)
				removed = true
				i--
			}
		}
		if !removed {
			break
		}
	}
	return c
}
