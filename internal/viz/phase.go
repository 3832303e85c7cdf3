package viz

import "math"

// RenderPhase draws a phase-plane trajectory on a Braille canvas:
// the travelled path as a polyline, the predicted plan as dots and
// the target as a crosshair. Bounds autoscale to cover everything
// with a small margin.
func RenderPhase(traj, plan [][2]float64, target [2]float64, w, h int) string {
	return PhaseCanvas(traj, plan, target, w, h).String()
}

// PhaseCanvas is RenderPhase before rasterizing to text, for callers
// that post-process the canvas (SVG export).
func PhaseCanvas(traj, plan [][2]float64, target [2]float64, w, h int) *Canvas {
	canvas := NewCanvas(w, h)
	if len(traj) == 0 {
		return canvas
	}

	minX, maxX := target[0], target[0]
	minY, maxY := target[1], target[1]
	grow := func(pts [][2]float64) {
		for _, p := range pts {
			minX = math.Min(minX, p[0])
			maxX = math.Max(maxX, p[0])
			minY = math.Min(minY, p[1])
			maxY = math.Max(maxY, p[1])
		}
	}
	grow(traj)
	grow(plan)

	spanX := maxX - minX
	spanY := maxY - minY
	if spanX < 1e-9 {
		spanX = 1
	}
	if spanY < 1e-9 {
		spanY = 1
	}
	minX -= spanX * 0.1
	minY -= spanY * 0.1
	spanX *= 1.2
	spanY *= 1.2

	cw := w*2 - 1
	ch := h*4 - 1
	toPixel := func(p [2]float64) (int, int) {
		px := int(math.Round((p[0] - minX) / spanX * float64(cw)))
		py := ch - int(math.Round((p[1]-minY)/spanY*float64(ch)))
		return px, py
	}

	for i := 1; i < len(traj); i++ {
		x0, y0 := toPixel(traj[i-1])
		x1, y1 := toPixel(traj[i])
		canvas.DrawLine(x0, y0, x1, y1)
	}

	for _, p := range plan {
		px, py := toPixel(p)
		canvas.Set(px, py)
	}

	tx, ty := toPixel(target)
	for d := -2; d <= 2; d++ {
		canvas.Set(tx+d, ty)
		canvas.Set(tx, ty+d)
	}

	return canvas
}
