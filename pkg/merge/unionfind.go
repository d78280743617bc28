package merge

// unionFind is a disjoint-set forest over dense integer indexes with
// path compression and union by rank. Record ids are interned to
// indexes once so the hot union/find loops never touch strings.
type unionFind struct {
	index  map[string]int
	ids    []string
	parent []int
	rank   []int
}

func newUnionFind() *unionFind {
	return &unionFind{index: make(map[string]int)}
}

// intern returns the dense index for id, allocating one on first use.
func (u *unionFind) intern(id string) int {
	if i, ok := u.index[id]; ok {
		return i
	}
	i := len(u.ids)
	u.index[id] = i
	u.ids = append(u.ids, id)
	u.parent = append(u.parent, i)
	u.rank = append(u.rank, 0)
	return i
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// union links the sets containing idA and idB.
func (u *unionFind) union(idA, idB string) {
	rootA := u.find(u.intern(idA))
	rootB := u.find(u.intern(idB))
	if rootA == rootB {
		return
	}
	switch {
	case u.rank[rootA] < u.rank[rootB]:
		u.parent[rootA] = rootB
	case u.rank[rootA] > u.rank[rootB]:
		u.parent[rootB] = rootA
	default:
		u.parent[rootB] = rootA
		u.rank[rootA]++
	}
}

// groups returns the member ids of every set with more than one member,
// keyed by the root member's id. Member order is insertion order, not
// yet priority order.
func (u *unionFind) groups() map[string][]string {
	byRoot := make(map[string][]string)
	for i, id := range u.ids {
		root := u.ids[u.find(i)]
		byRoot[root] = append(byRoot[root], id)
	}
	for root, members := range byRoot {
		if len(members) < 2 {
			delete(byRoot, root)
		}
	}
	return byRoot
}
