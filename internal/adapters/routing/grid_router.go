package routing

import (
	"container/heap"
	"context"
	"fmt"

	domainRouting "github.com/andrescamacho/remoteminer-go/internal/domain/routing"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

// TileCosts prices one step onto a tile
type TileCosts struct {
	Plain float64
	Swamp float64
	Road  float64
}

// DefaultTileCosts matches the movement cost of a loaded hauler
func DefaultTileCosts() TileCosts {
	return TileCosts{Plain: 2, Swamp: 10, Road: 1}
}

// DefaultMaxOps bounds a single search
const DefaultMaxOps = 20000

// GridRouter is an in-process route provider. It runs Dijkstra over the tile
// grid of every known zone, crossing zone edges orthogonally. Unknown zones,
// hostile-flagged zones and zones outside AllowedStatuses are impassable.
type GridRouter struct {
	zones    territory.ZoneRepository
	roads    domainRouting.RouteStore
	topology territory.Topology
	costs    TileCosts
	maxOps   int
}

// NewGridRouter creates a router. roads may be nil, in which case no tile is
// discounted as existing road.
func NewGridRouter(
	zones territory.ZoneRepository,
	roads domainRouting.RouteStore,
	topology territory.Topology,
	costs TileCosts,
	maxOps int,
) *GridRouter {
	if maxOps <= 0 {
		maxOps = DefaultMaxOps
	}
	return &GridRouter{
		zones:    zones,
		roads:    roads,
		topology: topology,
		costs:    costs,
		maxOps:   maxOps,
	}
}

// ComputeRoute returns the cheapest path from origin to a tile within
// DestinationProximity of destination. The origin is not part of the path.
// When no such tile is found within the search budget the route is Incomplete.
func (r *GridRouter) ComputeRoute(
	ctx context.Context,
	origin, destination shared.Position,
	opts domainRouting.RouteOptions,
) (*domainRouting.Route, error) {
	search := &gridSearch{
		router: r,
		ctx:    ctx,
		opts:   opts,
		zones:  make(map[string]*zoneView),
	}

	if _, err := search.zone(origin.Zone, true); err != nil {
		return nil, err
	}

	path, cost, found, err := search.run(origin, destination)
	if err != nil {
		return nil, err
	}
	if !found {
		return domainRouting.NewIncompleteRoute(origin, destination), nil
	}

	return &domainRouting.Route{
		Origin:      origin,
		Destination: destination,
		Positions:   path,
		Cost:        cost,
	}, nil
}

// zoneView is the per-search snapshot of one zone
type zoneView struct {
	zone     *territory.Zone
	passable bool
	blocked  map[shared.Position]bool
	roads    map[shared.Position]bool
}

type gridSearch struct {
	router *GridRouter
	ctx    context.Context
	opts   domainRouting.RouteOptions
	zones  map[string]*zoneView
	seq    int
}

// zone loads and caches a zone. The origin zone is always passable.
func (s *gridSearch) zone(name string, isOrigin bool) (*zoneView, error) {
	if view, ok := s.zones[name]; ok {
		return view, nil
	}

	view := &zoneView{blocked: map[shared.Position]bool{}, roads: map[shared.Position]bool{}}
	s.zones[name] = view

	if !s.router.topology.Contains(name) {
		return view, nil
	}

	zone, err := s.router.zones.FindByName(s.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load zone %s: %w", name, err)
	}
	if zone == nil {
		return view, nil
	}
	view.zone = zone

	allowed := len(s.opts.AllowedStatuses) == 0 || s.opts.AllowedStatuses.Has(zone.Status)
	view.passable = isOrigin || (allowed && !zone.Hostile)
	if !view.passable {
		return view, nil
	}

	for _, n := range zone.Nodes {
		view.blocked[n] = true
	}

	if s.router.roads != nil && !s.opts.IgnoreExistingInfrastructure {
		tiles, err := s.router.roads.RoadTiles(s.ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to load road tiles of %s: %w", name, err)
		}
		for _, t := range tiles {
			view.roads[t] = true
		}
	}

	return view, nil
}

// stepCost returns the cost of entering pos, or false when it is impassable
func (s *gridSearch) stepCost(pos shared.Position) (float64, bool, error) {
	view, err := s.zone(pos.Zone, false)
	if err != nil {
		return 0, false, err
	}
	if !view.passable || view.blocked[pos] {
		return 0, false, nil
	}

	switch view.zone.TerrainAt(pos.X, pos.Y) {
	case territory.TerrainWall:
		return 0, false, nil
	case territory.TerrainSwamp:
		if view.roads[pos] {
			return s.router.costs.Road, true, nil
		}
		return s.router.costs.Swamp, true, nil
	default:
		if view.roads[pos] {
			return s.router.costs.Road, true, nil
		}
		return s.router.costs.Plain, true, nil
	}
}

func (s *gridSearch) run(origin, destination shared.Position) ([]shared.Position, float64, bool, error) {
	proximity := s.opts.DestinationProximity
	if proximity < 0 {
		proximity = 0
	}

	dist := map[shared.Position]float64{origin: 0}
	prev := map[shared.Position]shared.Position{}
	open := &tileHeap{}
	heap.Init(open)
	s.push(open, origin, 0)

	ops := 0
	for open.Len() > 0 {
		item := heap.Pop(open).(*tileItem)
		if item.cost > dist[item.pos] {
			continue
		}

		if item.pos != origin && item.pos.IsNear(destination, proximity) {
			return rebuildPath(prev, origin, item.pos), item.cost, true, nil
		}

		ops++
		if ops > s.router.maxOps {
			return nil, 0, false, nil
		}
		if ops%1024 == 0 {
			if err := s.ctx.Err(); err != nil {
				return nil, 0, false, err
			}
		}

		for _, next := range s.neighbours(item.pos) {
			step, ok, err := s.stepCost(next)
			if err != nil {
				return nil, 0, false, err
			}
			if !ok {
				continue
			}
			cost := item.cost + step
			if known, seen := dist[next]; seen && known <= cost {
				continue
			}
			dist[next] = cost
			prev[next] = item.pos
			s.push(open, next, cost)
		}
	}

	return nil, 0, false, nil
}

// neighbours lists the eight surrounding tiles. Stepping off an edge
// orthogonally enters the adjacent zone on the opposite edge.
func (s *gridSearch) neighbours(p shared.Position) []shared.Position {
	out := make([]shared.Position, 0, 8)
	last := shared.ZoneSize - 1

	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			x, y := p.X+dx, p.Y+dy
			inX := x >= 0 && x <= last
			inY := y >= 0 && y <= last

			switch {
			case inX && inY:
				out = append(out, shared.Position{X: x, Y: y, Zone: p.Zone})
			case !inX && inY && dy == 0:
				dir, nx := territory.Left, last
				if x > last {
					dir, nx = territory.Right, 0
				}
				if zone := territory.AdjacentZone(p.Zone, dir); zone != "" {
					out = append(out, shared.Position{X: nx, Y: y, Zone: zone})
				}
			case inX && !inY && dx == 0:
				// y grows southward inside a zone while zone rows grow northward
				dir, ny := territory.Top, last
				if y > last {
					dir, ny = territory.Bottom, 0
				}
				if zone := territory.AdjacentZone(p.Zone, dir); zone != "" {
					out = append(out, shared.Position{X: x, Y: ny, Zone: zone})
				}
			}
		}
	}
	return out
}

func (s *gridSearch) push(open *tileHeap, pos shared.Position, cost float64) {
	s.seq++
	heap.Push(open, &tileItem{pos: pos, cost: cost, seq: s.seq})
}

func rebuildPath(prev map[shared.Position]shared.Position, origin, end shared.Position) []shared.Position {
	var reversed []shared.Position
	for at := end; at != origin; at = prev[at] {
		reversed = append(reversed, at)
	}
	path := make([]shared.Position, len(reversed))
	for i := range reversed {
		path[i] = reversed[len(reversed)-1-i]
	}
	return path
}

type tileItem struct {
	pos  shared.Position
	cost float64
	seq  int
}

// tileHeap orders by cost, then by insertion for deterministic ties
type tileHeap []*tileItem

func (h tileHeap) Len() int { return len(h) }
func (h tileHeap) Less(i, j int) bool {
	if h[i].cost != h[j].cost {
		return h[i].cost < h[j].cost
	}
	return h[i].seq < h[j].seq
}
func (h tileHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *tileHeap) Push(x interface{}) {
	*h = append(*h, x.(*tileItem))
}
func (h *tileHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}
