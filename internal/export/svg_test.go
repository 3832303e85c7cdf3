package export

import (
	"strings"
	"testing"

	"github.com/kmdra/horizon/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 5)

	out := CanvasToSVG(c, 4)

	if !strings.HasPrefix(out, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if got := strings.Count(out, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}

	if got := strings.Count(CanvasToSVG(viz.NewCanvas(4, 2), 4), "<circle"); got != 0 {
		t.Errorf("empty canvas rendered %d circles", got)
	}

	if CanvasToSVG(nil, 4) != "" {
		t.Error("nil canvas should render nothing")
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	points := [][2]float64{{0, 0}, {1, 1}, {2, 0}}

	out := TrajectoryToSVG(points, 200, 100, "#00ff00")

	if !strings.Contains(out, `stroke="#00ff00"`) {
		t.Error("missing stroke color")
	}
	if got := strings.Count(out, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}

	if TrajectoryToSVG(points[:1], 200, 100, "#fff") != "" {
		t.Error("single point should render nothing")
	}
}
