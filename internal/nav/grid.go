package nav

import (
	"container/heap"
	"math"
)

// GridNavigator finds paths over an occupancy grid laid on the map rectangle.
// Cells whose centre falls inside an obstacle grown by the agent clearance are
// blocked. Raw A* output is string-pulled so the returned corners approximate
// the shortest polyline, the way a navmesh reports corners.
type GridNavigator struct {
	width, length float64
	cell          float64
	clearance     float64

	cols, rows int
	blocked    []bool
	inflated   Obstacles
}

func NewGridNavigator(width, length, cell, clearance float64) *GridNavigator {
	if cell <= 0 {
		cell = 0.5
	}
	g := &GridNavigator{
		width:     width,
		length:    length,
		cell:      cell,
		clearance: clearance,
		cols:      int(math.Ceil(width / cell)),
		rows:      int(math.Ceil(length / cell)),
	}
	g.blocked = make([]bool, g.cols*g.rows)
	return g
}

// Rebuild re-bakes the grid for a new obstacle layout.
func (g *GridNavigator) Rebuild(obstacles []Obstacle) {
	g.inflated = make(Obstacles, 0, len(obstacles))
	for _, o := range obstacles {
		g.inflated = append(g.inflated, o.Inflate(g.clearance))
	}
	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			g.blocked[row*g.cols+col] = g.pointBlocked(g.center(col, row))
		}
	}
}

func (g *GridNavigator) inBounds(p Vec2) bool {
	return p.X >= 0 && p.Y >= 0 && p.X <= g.width && p.Y <= g.length
}

func (g *GridNavigator) pointBlocked(p Vec2) bool {
	for _, o := range g.inflated {
		if o.Contains(p) {
			return true
		}
	}
	return false
}

func (g *GridNavigator) center(col, row int) Vec2 {
	return Vec2{(float64(col) + 0.5) * g.cell, (float64(row) + 0.5) * g.cell}
}

func (g *GridNavigator) cellOf(p Vec2) (int, int) {
	col := int(p.X / g.cell)
	row := int(p.Y / g.cell)
	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row
}

// FindPath returns corners from `from` to `to`, both included.
func (g *GridNavigator) FindPath(from, to Vec2) ([]Vec2, bool) {
	if !g.inBounds(from) || !g.inBounds(to) || g.pointBlocked(to) {
		return nil, false
	}
	if !g.inflated.Blocked(from, to) {
		return []Vec2{from, to}, true
	}

	sc, sr := g.cellOf(from)
	gc, gr := g.cellOf(to)
	cells, ok := g.search(sr*g.cols+sc, gr*g.cols+gc)
	if !ok {
		return nil, false
	}

	raw := make([]Vec2, 0, len(cells)+1)
	raw = append(raw, from)
	for _, idx := range cells[1 : len(cells)-1] {
		raw = append(raw, g.center(idx%g.cols, idx/g.cols))
	}
	raw = append(raw, to)
	return g.smooth(raw), true
}

// smooth drops every corner that can be skipped with a clear straight line.
func (g *GridNavigator) smooth(pts []Vec2) []Vec2 {
	if len(pts) <= 2 {
		return pts
	}
	out := []Vec2{pts[0]}
	for i := 0; i < len(pts)-1; {
		j := len(pts) - 1
		for j > i+1 && g.inflated.Blocked(pts[i], pts[j]) {
			j--
		}
		out = append(out, pts[j])
		i = j
	}
	return out
}

var neighbourSteps = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// search runs A* between two cell indices. Start and goal are always
// passable: the caller has already checked the real endpoints.
func (g *GridNavigator) search(start, goal int) ([]int, bool) {
	if start == goal {
		return []int{start, goal}, true
	}
	passable := func(idx int) bool {
		return idx == start || idx == goal || !g.blocked[idx]
	}

	gc, gr := goal%g.cols, goal/g.cols
	h := func(idx int) float64 {
		dx := math.Abs(float64(idx%g.cols - gc))
		dy := math.Abs(float64(idx/g.cols - gr))
		return (dx + dy + (math.Sqrt2-2)*math.Min(dx, dy)) * g.cell
	}

	cost := map[int]float64{start: 0}
	came := map[int]int{}
	closed := map[int]bool{}
	open := &nodeQueue{}
	heap.Push(open, node{idx: start, f: h(start)})

	for open.Len() > 0 {
		cur := heap.Pop(open).(node)
		if cur.idx == goal {
			return reconstruct(came, start, goal), true
		}
		if closed[cur.idx] {
			continue
		}
		closed[cur.idx] = true

		cc, cr := cur.idx%g.cols, cur.idx/g.cols
		for _, st := range neighbourSteps {
			nc, nr := cc+st[0], cr+st[1]
			if nc < 0 || nr < 0 || nc >= g.cols || nr >= g.rows {
				continue
			}
			next := nr*g.cols + nc
			if !passable(next) || closed[next] {
				continue
			}
			step := g.cell
			if st[0] != 0 && st[1] != 0 {
				// no corner cutting
				if !passable(cr*g.cols+nc) || !passable(nr*g.cols+cc) {
					continue
				}
				step = g.cell * math.Sqrt2
			}
			c := cost[cur.idx] + step
			if old, seen := cost[next]; seen && c >= old {
				continue
			}
			cost[next] = c
			came[next] = cur.idx
			heap.Push(open, node{idx: next, f: c + h(next)})
		}
	}
	return nil, false
}

func reconstruct(came map[int]int, start, goal int) []int {
	path := []int{goal}
	for cur := goal; cur != start; {
		cur = came[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type node struct {
	idx int
	f   float64
}

type nodeQueue []node

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].f < q[j].f }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(node)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}
