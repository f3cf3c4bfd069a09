package vision

import (
	"fmt"
	"image"
)

// tan22 is tan(22.5 degrees), the boundary between gradient sectors.
const tan22 = 0.41421356237309503

// Canny implements Backend.
//
// The input is expected to be smoothed already; Canny does not blur.
//
// Parameters:
//   - img: Smoothed grayscale image.
//   - low: Weak-edge threshold. Magnitudes at or below it are discarded.
//   - high: Strong-edge threshold. Magnitudes above it seed edges.
//
// Returns:
//   - *image.Gray: origin-anchored binary edge map (0 or 255).
//   - error: Non-nil when low > high.
//
// # Algorithm
//
//  1. Gradient computation: 3x3 Sobel operators for X and Y with replicated
//     borders. magnitude = |Gx| + |Gy| (L1 norm, on the 0-255 scale).
//
//  2. Non-maximum suppression: the gradient is binned into horizontal,
//     vertical or one of two diagonals by comparing |Gy| with |Gx|*tan(22.5)
//     and |Gx|*tan(67.5). Along the horizontal and vertical directions a
//     pixel must be greater than its predecessor and not smaller than its
//     successor, so a symmetric ridge keeps exactly one pixel. Along the
//     diagonals it must be greater than both. Pixels outside the image count
//     as zero magnitude.
//
//  3. Hysteresis:
//     - magnitude > high: strong edge, always kept
//     - low < magnitude <= high: weak edge, kept only when 8-connected
//     (directly or through other weak edges) to a strong edge
//     - magnitude <= low: discarded
func (n *Native) Canny(img *image.Gray, low, high float64) (*image.Gray, error) {
	if low > high {
		return nil, fmt.Errorf("canny low threshold %.1f above high threshold %.1f", low, high)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	at := func(x, y int) int {
		x = clamp(x, 0, width-1)
		y = clamp(y, 0, height-1)
		return int(img.Pix[img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)])
	}

	gradX := make([]int, width*height)
	gradY := make([]int, width*height)
	magnitude := make([]int, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*width + x
			gradX[i] = gx
			gradY[i] = gy
			magnitude[i] = absInt(gx) + absInt(gy)
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || x >= width || y < 0 || y >= height {
			return 0
		}
		return magnitude[y*width+x]
	}

	// Non-maximum suppression
	const (
		weak   = 1
		strong = 2
	)
	state := make([]uint8, width*height)
	stack := make([]int, 0, 1024)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			m := magnitude[i]
			if float64(m) <= low {
				continue
			}

			ax := float64(absInt(gradX[i]))
			ay := float64(absInt(gradY[i]))
			var keep bool
			switch {
			case ay < ax*tan22:
				keep = m > magAt(x-1, y) && m >= magAt(x+1, y)
			case ay > ax*(tan22+2):
				keep = m > magAt(x, y-1) && m >= magAt(x, y+1)
			default:
				// Gradient signs agree: down-right diagonal (y grows downward).
				s := 1
				if (gradX[i] < 0) != (gradY[i] < 0) {
					s = -1
				}
				keep = m > magAt(x-s, y-1) && m > magAt(x+s, y+1)
			}
			if !keep {
				continue
			}

			if float64(m) > high {
				state[i] = strong
				stack = append(stack, i)
			} else {
				state[i] = weak
			}
		}
	}

	// Hysteresis: grow strong edges through connected weak ones.
	result := image.NewGray(image.Rect(0, 0, width, height))
	for _, i := range stack {
		result.Pix[i] = 255
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		px, py := p%width, p/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := px+dx, py+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				q := ny*width + nx
				if result.Pix[q] == 0 && state[q] == weak {
					result.Pix[q] = 255
					stack = append(stack, q)
				}
			}
		}
	}

	return result, nil
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// clamp constrains an integer value to the range [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
