// Package hnsw implements an approximate nearest-neighbor index using a
// multi-layer proximity graph: search starts at a single entry point on
// the top layer and greedily descends toward the query before running a
// bounded candidate search at layer 0, the way the reference ANN library
// in this corpus navigates its own hierarchical graph.
package hnsw

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/kowari-db/kowari/core"
	"github.com/kowari-db/kowari/index"
	"github.com/kowari-db/kowari/kerrors"
)

// maxLevelCap bounds a sampled node level so a pathological draw (U very
// close to 0) cannot blow up the number of layers.
const maxLevelCap = 32

// node is a single vector in the graph together with its per-layer
// adjacency lists. Links are keyed by layer; a layer on which the node has
// no links may have no key at all.
type node struct {
	id     string
	vector []float32
	level  int
	links  map[int][]string
}

// Index is the HNSW nearest-neighbor index.
type Index struct {
	mu sync.RWMutex

	// M is the target out-degree on upper layers.
	M int
	// MMax0 is the out-degree cap on layer 0, fixed at 2*M.
	MMax0 int
	// EfConstruction is the candidate-list width used during Build.
	EfConstruction int

	mL   float64
	seed int64
	rng  *rand.Rand

	built      bool
	dim        int
	nodes      map[string]*node
	entryPoint string
	topLayer   int
}

// New constructs an empty HNSW index with target out-degree m and
// construction-time candidate width efConstruction. seed, when provided,
// fixes level sampling for reproducible builds; when omitted a seed is
// chosen from core.GetSeed() and recorded on the index.
func New(m, efConstruction int, seed ...int64) *Index {
	s := core.GetSeed()
	if len(seed) > 0 {
		s = seed[0]
	}
	return &Index{
		M:              m,
		MMax0:          2 * m,
		EfConstruction: efConstruction,
		mL:             1 / math.Log(float64(m)),
		seed:           s,
		rng:            rand.New(rand.NewSource(s)),
		nodes:          make(map[string]*node),
		topLayer:       -1,
	}
}

// Seed returns the seed used to drive this index's level sampling.
func (h *Index) Seed() int64 {
	return h.seed
}

func (h *Index) validateConfig() error {
	if h.M <= 1 {
		return kerrors.InvalidArgumentf("M must be greater than 1, got %d", h.M)
	}
	if h.EfConstruction <= 0 {
		return kerrors.InvalidArgumentf("ef_construction must be positive, got %d", h.EfConstruction)
	}
	return nil
}

func validateEntries(entries []index.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	dim := len(entries[0].Vector)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Vector) != dim {
			return 0, kerrors.DimensionMismatchf(dim, len(e.Vector))
		}
		if !core.AllFinite(e.Vector) {
			return 0, kerrors.InvalidArgumentf("vector %q contains a non-finite component", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return 0, kerrors.DuplicateIDf(e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return dim, nil
}

// randomLevel draws a node's top layer from the index's own seeded PRNG,
// never a process-global one.
func (h *Index) randomLevel() int {
	u := h.rng.Float64()
	for u == 0 {
		u = h.rng.Float64()
	}
	level := int(math.Floor(-math.Log(u) * h.mL))
	if level > maxLevelCap {
		level = maxLevelCap
	}
	return level
}

func (h *Index) simTo(id string, target []float32) float64 {
	sim, _ := core.Cosine(h.nodes[id].vector, target)
	return sim
}

// Build constructs the graph by inserting entries in input order. See
// index.Index for the failure modes.
func (h *Index) Build(entries []index.Entry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.built {
		return kerrors.AlreadyBuiltErr()
	}
	if err := h.validateConfig(); err != nil {
		return err
	}
	dim, err := validateEntries(entries)
	if err != nil {
		return err
	}

	nodes := make(map[string]*node, len(entries))
	h.nodes = nodes
	h.entryPoint = ""
	h.topLayer = -1
	h.dim = dim

	var bar *progressbar.ProgressBar
	if len(entries) > 0 {
		bar = progressbar.NewOptions(len(entries),
			progressbar.OptionOnCompletion(func() {}),
		)
	}

	for _, e := range entries {
		h.insert(e.ID, e.Vector)
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	h.dim = dim
	h.built = true
	log.Info().Int("count", len(entries)).Int("dim", dim).Int("top_layer", h.topLayer).
		Msg("hnsw index built")
	return nil
}

// insert adds one node to the graph, following §4.5 of the build
// procedure: greedy descent to the node's own level, then layer-by-layer
// candidate search, neighbor selection, and bidirectional linking.
func (h *Index) insert(id string, vector []float32) {
	level := h.randomLevel()
	n := &node{id: id, vector: vector, level: level, links: make(map[int][]string)}
	h.nodes[id] = n

	if h.entryPoint == "" {
		h.entryPoint = id
		h.topLayer = level
		return
	}

	entry := h.entryPoint
	for l := h.topLayer; l > level; l-- {
		entry = h.greedyStep(entry, vector, l)
	}

	top := level
	if h.topLayer < top {
		top = h.topLayer
	}
	for l := top; l >= 0; l-- {
		candidates := h.searchLayer(vector, entry, l, h.EfConstruction)
		degreeCap := h.M
		if l == 0 {
			degreeCap = h.MMax0
		}
		selected := h.selectNeighbors(candidates, vector, degreeCap)

		n.links[l] = selected
		for _, nbID := range selected {
			h.addBackEdge(nbID, id, l)
		}
		if len(candidates) > 0 {
			entry = candidates[0].id
		}
	}

	if level > h.topLayer {
		h.entryPoint = id
		h.topLayer = level
	}
}

// addBackEdge links nb -> id at layer l and, if that pushes nb over its
// layer cap, re-runs the selection heuristic on nb's full neighbor list to
// prune it back down.
func (h *Index) addBackEdge(nb, id string, l int) {
	nbNode := h.nodes[nb]
	nbNode.links[l] = append(nbNode.links[l], id)

	degreeCap := h.M
	if l == 0 {
		degreeCap = h.MMax0
	}
	if len(nbNode.links[l]) <= degreeCap {
		return
	}

	candidates := make([]candidate, len(nbNode.links[l]))
	for i, otherID := range nbNode.links[l] {
		sim, _ := core.Cosine(nbNode.vector, h.nodes[otherID].vector)
		candidates[i] = candidate{id: otherID, sim: sim}
	}
	sortCandidates(candidates)
	nbNode.links[l] = h.selectNeighbors(candidates, nbNode.vector, degreeCap)
}

// greedyStep repeatedly hops to the neighbor of current with the highest
// similarity to target at layer l, stopping when no hop improves on the
// current node.
func (h *Index) greedyStep(current string, target []float32, l int) string {
	for {
		best := current
		bestSim := h.simTo(current, target)
		for _, nb := range h.nodes[current].links[l] {
			sim := h.simTo(nb, target)
			if sim > bestSim || (sim == bestSim && nb < best) {
				best = nb
				bestSim = sim
			}
		}
		if best == current {
			return current
		}
		current = best
	}
}

// candidate pairs an id with its similarity to a search target.
type candidate struct {
	id  string
	sim float64
}

func sortCandidates(c []candidate) {
	sort.Slice(c, func(i, j int) bool {
		if c[i].sim == c[j].sim {
			return c[i].id < c[j].id
		}
		return c[i].sim > c[j].sim
	})
}

// nearHeap is a min-heap ordered by ascending similarity (farthest-first),
// used as the bounded result set during candidate search: the worst-so-far
// result sits at the root so it can be evicted cheaply.
type nearHeap []candidate

func (q nearHeap) Len() int { return len(q) }
func (q nearHeap) Less(i, j int) bool {
	if q[i].sim == q[j].sim {
		return q[i].id > q[j].id
	}
	return q[i].sim < q[j].sim
}
func (q nearHeap) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *nearHeap) Push(x any)        { *q = append(*q, x.(candidate)) }
func (q *nearHeap) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// farHeap is a max-heap ordered by descending similarity (nearest-first),
// used as the frontier of candidates still worth exploring.
type farHeap []candidate

func (q farHeap) Len() int { return len(q) }
func (q farHeap) Less(i, j int) bool {
	if q[i].sim == q[j].sim {
		return q[i].id < q[j].id
	}
	return q[i].sim > q[j].sim
}
func (q farHeap) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *farHeap) Push(x any)        { *q = append(*q, x.(candidate)) }
func (q *farHeap) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// searchLayer runs the candidate search at layer l from entry, maintaining
// an ef-bounded result set (nearHeap, worst on top so it can be evicted)
// and a best-first frontier (farHeap), terminating once the frontier's
// best candidate cannot improve on the result set's worst member.
func (h *Index) searchLayer(query []float32, entry string, l, ef int) []candidate {
	visited := map[string]struct{}{entry: {}}
	entrySim := h.simTo(entry, query)

	frontier := farHeap{{id: entry, sim: entrySim}}
	heap.Init(&frontier)
	results := nearHeap{{id: entry, sim: entrySim}}
	heap.Init(&results)

	for frontier.Len() > 0 {
		best := frontier[0]
		worst := results[0]
		if best.sim < worst.sim && results.Len() >= ef {
			break
		}
		heap.Pop(&frontier)

		for _, nbID := range h.nodes[best.id].links[l] {
			if _, seen := visited[nbID]; seen {
				continue
			}
			visited[nbID] = struct{}{}
			sim := h.simTo(nbID, query)
			if results.Len() < ef || sim > results[0].sim {
				c := candidate{id: nbID, sim: sim}
				heap.Push(&frontier, c)
				heap.Push(&results, c)
				if results.Len() > ef {
					heap.Pop(&results)
				}
			}
		}
	}

	out := make([]candidate, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(&results).(candidate)
	}
	return out
}

// selectNeighbors implements the diversity-preserving heuristic of §4.5
// step 3b: candidates are considered best-first, and a candidate is
// skipped if it is already closer to some chosen neighbor than to the
// query itself, which would make it a redundant edge rather than a
// diverse one.
func (h *Index) selectNeighbors(candidates []candidate, target []float32, degreeCap int) []string {
	ranked := make([]candidate, len(candidates))
	copy(ranked, candidates)
	sortCandidates(ranked)

	selected := make([]string, 0, degreeCap)
	for _, c := range ranked {
		if len(selected) >= degreeCap {
			break
		}
		redundant := false
		for _, n := range selected {
			simToNeighbor, _ := core.Cosine(h.nodes[c.id].vector, h.nodes[n].vector)
			if simToNeighbor > c.sim {
				redundant = true
				break
			}
		}
		if !redundant {
			selected = append(selected, c.id)
		}
	}
	return selected
}

// Search descends greedily from the entry point to layer 1, runs a
// candidate search at layer 0 with width max(32, k), and returns the k
// closest identifiers found.
func (h *Index) Search(query []float32, k int) ([]string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.built {
		return nil, kerrors.NotBuiltErr()
	}
	if k == 0 {
		return nil, kerrors.InvalidArgumentf("k must be greater than 0")
	}
	if len(h.nodes) > 0 && len(query) != h.dim {
		return nil, kerrors.DimensionMismatchf(h.dim, len(query))
	}
	if !core.AllFinite(query) {
		return nil, kerrors.InvalidArgumentf("query contains a non-finite component")
	}
	if h.entryPoint == "" {
		return nil, nil
	}

	ef := 32
	if k > ef {
		ef = k
	}

	entry := h.entryPoint
	for l := h.topLayer; l > 0; l-- {
		entry = h.greedyStep(entry, query, l)
	}

	candidates := h.searchLayer(query, entry, 0, ef)
	sortCandidates(candidates)

	if k > len(candidates) {
		k = len(candidates)
	}
	ids := make([]string, k)
	for i := 0; i < k; i++ {
		ids[i] = candidates[i].id
	}
	return ids, nil
}

var _ index.Index = (*Index)(nil)
