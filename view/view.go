// Package view implements View, a planned join across one or more table.Table
// nodes that is re-run (and whose results are cached) on demand via Query,
// instead of being materialized once and kept in sync. Nodes are declared
// parent-before-child; each non-root node joins against an ancestor on a
// named column pair, and Query pushes constraints down to whichever node
// owns the referenced output column before joining, so a filter on a child
// table is applied to that table alone and the join then drops parent rows
// left without a matching child row.
package view

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/sqlvalue"
	"github.com/dolthub/tracecolumn/store/bitvec"
	"github.com/dolthub/tracecolumn/table"
)

// NodeId indexes into a View's node list.
type NodeId uint32

const invalidNode = ^NodeId(0)

// RootNode is the Parent value for a view's single root node.
const RootNode = invalidNode

// JoinFlag records per-node join bookkeeping hints.
type JoinFlag uint32

const (
	JoinFlagNone JoinFlag = 0

	// JoinFlagIdAlwaysPresent marks a node whose join always finds a match
	// for every parent row, so joining it cannot drop parent rows; Query
	// skips such a node when it has no constraints and nothing requested
	// depends on it.
	JoinFlagIdAlwaysPresent JoinFlag = 1 << 0

	// JoinFlagTypeCheckSerialized marks a node loaded from a serialized
	// source whose column types need re-validating before use. Deliberately
	// given its own bit: the engine this design is modeled on packed this
	// into the same bit as "id always present", so a node needing both
	// behaviors silently got only one of them.
	JoinFlagTypeCheckSerialized JoinFlag = 1 << 1
)

// TableNode is one table participating in a view's join tree.
type TableNode struct {
	Alias  string
	Source *table.Table
	Flags  JoinFlag

	// Parent is the index of the node this one joins against, or RootNode.
	// Every non-root node's Parent must have a smaller index: nodes are
	// declared parent-before-child.
	Parent NodeId

	// JoinColumn is this node's own column (typically a foreign-key-like
	// reference) that must equal ParentColumn on Parent for a row pair to
	// survive the join.
	JoinColumn   string
	ParentColumn string
}

// OutputColumn is one column of a view's projected result.
type OutputColumn struct {
	Name       string
	NodeAlias  string
	ColumnName string
}

// Constraint filters a view's output by one of its OutputColumns.
type Constraint struct {
	OutputCol uint32
	Op        column.FilterOp
	Value     sqlvalue.Value
}

// Order sorts a view's output by one of its OutputColumns.
type Order struct {
	OutputCol uint32
	Desc      bool
}

// View is a validated join plan over a fixed set of TableNodes, queried
// repeatedly via Query.
type View struct {
	name    string
	nodes   []TableNode
	outputs []OutputColumn
	cache   *lru.Cache[string, *table.Table]
}

// Create validates nodes and outputs and returns a ready-to-query View.
//
// Validation catches: duplicate aliases, more than one (or zero) root nodes,
// a non-root node declared before its parent, an output referencing an
// unknown alias, a duplicate output name, and an output or join column that
// does not exist on the table it names.
func Create(name string, nodes []TableNode, outputs []OutputColumn) (*View, error) {
	return CreateWithCacheSize(name, nodes, outputs, 64)
}

// CreateWithCacheSize is Create with an explicit query-result LRU cache
// size, for callers (see package engine) that want the cache sized from
// configuration instead of the default.
func CreateWithCacheSize(name string, nodes []TableNode, outputs []OutputColumn, cacheSize int) (*View, error) {
	if len(nodes) == 0 {
		return nil, fmt.Errorf("view %q: no nodes", name)
	}
	aliasSeen := make(map[string]bool, len(nodes))
	rootCount := 0
	for i, n := range nodes {
		if aliasSeen[n.Alias] {
			return nil, fmt.Errorf("view %q: duplicate alias %q", name, n.Alias)
		}
		aliasSeen[n.Alias] = true
		if n.Parent == RootNode {
			rootCount++
			continue
		}
		if uint32(n.Parent) >= uint32(i) {
			return nil, fmt.Errorf("view %q: node %q must be declared after its parent", name, n.Alias)
		}
		if _, ok := nodes[i].Source.FindColumnIdxByName(n.JoinColumn); !ok {
			return nil, fmt.Errorf("view %q: join column %q not found on %q", name, n.JoinColumn, n.Alias)
		}
		if _, ok := nodes[n.Parent].Source.FindColumnIdxByName(n.ParentColumn); !ok {
			return nil, fmt.Errorf("view %q: parent join column %q not found on %q", name, n.ParentColumn, nodes[n.Parent].Alias)
		}
	}
	if rootCount != 1 {
		return nil, fmt.Errorf("view %q: expected exactly one root node, found %d", name, rootCount)
	}
	if nodes[0].Parent != RootNode {
		return nil, fmt.Errorf("view %q: node 0 (%q) must be the root", name, nodes[0].Alias)
	}

	outSeen := make(map[string]bool, len(outputs))
	for _, o := range outputs {
		if outSeen[o.Name] {
			return nil, fmt.Errorf("view %q: duplicate output column %q", name, o.Name)
		}
		outSeen[o.Name] = true
		if !aliasSeen[o.NodeAlias] {
			return nil, fmt.Errorf("view %q: output %q references unknown alias %q", name, o.Name, o.NodeAlias)
		}
	}
	for i := range outputs {
		_, idx, err := resolveOutput(name, nodes, outputs[i])
		if err != nil {
			return nil, err
		}
		_ = idx
	}

	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New[string, *table.Table](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("view %q: creating query cache: %w", name, err)
	}
	return &View{
		name:    name,
		nodes:   append([]TableNode(nil), nodes...),
		outputs: append([]OutputColumn(nil), outputs...),
		cache:   cache,
	}, nil
}

func resolveOutput(viewName string, nodes []TableNode, out OutputColumn) (NodeId, uint32, error) {
	for i, n := range nodes {
		if n.Alias != out.NodeAlias {
			continue
		}
		idx, ok := n.Source.FindColumnIdxByName(out.ColumnName)
		if !ok {
			return 0, 0, fmt.Errorf("view %q: output %q references unknown column %q on %q", viewName, out.Name, out.ColumnName, out.NodeAlias)
		}
		return NodeId(i), idx, nil
	}
	return 0, 0, fmt.Errorf("view %q: output %q references unknown alias %q", viewName, out.Name, out.NodeAlias)
}

// OutputColumnCount returns the number of columns Query's result carries.
func (v *View) OutputColumnCount() uint32 { return uint32(len(v.outputs)) }

// EstimateRowCount returns a cheap upper bound on a query's row count
// (the root node's unfiltered row count), useful for query planning
// decisions made above this package without materializing anything.
func (v *View) EstimateRowCount() uint32 { return v.nodes[0].Source.RowCount() }

// Query filters, joins and projects the view per constraints, orders, and
// colsUsed. colsUsed is a bitvector over output-column indices: a clear bit
// means the caller does not need that column, so its source table may never
// even be joined in, and the output gets a Dummy column in that position
// instead. A nil colsUsed is treated as "every output column is needed".
// Identical (constraints, orders, colsUsed) triples are served from an LRU
// cache instead of being recomputed.
//
// This implements the same three-pass shape as the planner this design is
// modeled on: per-node usage is computed bottom-up from colsUsed and from
// whether a node can ever drop rows the parent needs (a node with
// JoinFlagIdAlwaysPresent and no constraints of its own never does, and is
// skipped outright when nothing downstream needs it either); constraints
// are pushed down to the node that owns the referenced column; visited
// nodes are joined in declaration order; and the result is projected down
// to exactly the declared output columns, with any column whose bit is
// clear in colsUsed emitted as a Dummy column regardless of whether its
// source node was visited.
func (v *View) Query(constraints []Constraint, orders []Order, colsUsed *bitvec.BitVector) (*table.Table, error) {
	key, err := v.cacheKey(constraints, orders, colsUsed)
	if err != nil {
		return nil, err
	}
	if cached, ok := v.cache.Get(key); ok {
		return cached, nil
	}

	result, err := v.query(constraints, orders, colsUsed)
	if err != nil {
		return nil, err
	}
	v.cache.Add(key, result)
	return result, nil
}

// colUsed reports whether output column i is requested: every column is
// requested when colsUsed is nil or shorter than the output schema (a
// caller that hasn't heard of a trailing column cannot have pruned it).
func colUsed(colsUsed *bitvec.BitVector, i uint32) bool {
	if colsUsed == nil || i >= colsUsed.Size() {
		return true
	}
	return colsUsed.IsSet(i)
}

func (v *View) query(constraints []Constraint, orders []Order, colsUsed *bitvec.BitVector) (*table.Table, error) {
	nodeConstraints := make([][]column.Constraint, len(v.nodes))
	for _, c := range constraints {
		if int(c.OutputCol) >= len(v.outputs) {
			return nil, fmt.Errorf("view %q: constraint references unknown output column %d", v.name, c.OutputCol)
		}
		nodeID, colIdx, err := resolveOutput(v.name, v.nodes, v.outputs[c.OutputCol])
		if err != nil {
			return nil, err
		}
		nodeConstraints[nodeID] = append(nodeConstraints[nodeID], column.Constraint{ColIdx: colIdx, Op: c.Op, Value: c.Value})
	}

	// Per-node usage: a node is used directly if one of its columns is a
	// requested output; removesParentRows is true when joining this node
	// could drop rows the parent would otherwise keep (it has its own
	// constraints, or it lacks JoinFlagIdAlwaysPresent). Both propagate
	// upward so a used-but-distant descendant still forces every ancestor
	// between it and the root to be visited.
	used := make([]bool, len(v.nodes))
	removesParentRows := make([]bool, len(v.nodes))
	used[0] = true
	for i, o := range v.outputs {
		if !colUsed(colsUsed, uint32(i)) {
			continue
		}
		nodeID, _, err := resolveOutput(v.name, v.nodes, o)
		if err != nil {
			return nil, err
		}
		used[nodeID] = true
	}
	for i := 1; i < len(v.nodes); i++ {
		removesParentRows[i] = len(nodeConstraints[i]) > 0 || v.nodes[i].Flags&JoinFlagIdAlwaysPresent == 0
	}
	for i := len(v.nodes) - 1; i >= 1; i-- {
		if used[i] || removesParentRows[i] {
			used[v.nodes[i].Parent] = true
		}
	}

	combined, err := v.nodes[0].Source.Filter(nodeConstraints[0])
	if err != nil {
		return nil, fmt.Errorf("view %q: filtering root %q: %w", v.name, v.nodes[0].Alias, err)
	}

	for i := 1; i < len(v.nodes); i++ {
		if !used[i] && !removesParentRows[i] {
			// Neither this node nor anything downstream of it is needed,
			// and joining it could not remove any rows the caller cares
			// about: skip materializing or filtering it entirely.
			continue
		}
		n := v.nodes[i]
		filteredChild, err := n.Source.Filter(nodeConstraints[i])
		if err != nil {
			return nil, fmt.Errorf("view %q: filtering %q: %w", v.name, n.Alias, err)
		}
		parentColIdx, ok := combined.FindColumnIdxByName(n.ParentColumn)
		if !ok {
			return nil, fmt.Errorf("view %q: join column %q no longer present when joining %q", v.name, n.ParentColumn, n.Alias)
		}
		childColIdx, _ := filteredChild.FindColumnIdxByName(n.JoinColumn)
		combined, err = combined.LookupJoin(parentColIdx, filteredChild, childColIdx)
		if err != nil {
			return nil, fmt.Errorf("view %q: joining %q: %w", v.name, n.Alias, err)
		}
	}

	if len(orders) > 0 {
		colOrders := make([]column.Order, len(orders))
		for i, o := range orders {
			if int(o.OutputCol) >= len(v.outputs) {
				return nil, fmt.Errorf("view %q: order references unknown output column %d", v.name, o.OutputCol)
			}
			out := v.outputs[o.OutputCol]
			idx, ok := combined.FindColumnIdxByName(out.ColumnName)
			if !ok {
				return nil, fmt.Errorf("view %q: order references unknown column %q", v.name, out.ColumnName)
			}
			colOrders[i] = column.Order{ColIdx: idx, Desc: o.Desc}
		}
		combined = combined.Sort(colOrders)
	}

	projIdx := make([]uint32, len(v.outputs))
	names := make([]string, len(v.outputs))
	colUsedOut := make([]bool, len(v.outputs))
	for i, o := range v.outputs {
		names[i] = o.Name
		if !colUsed(colsUsed, uint32(i)) {
			colUsedOut[i] = false
			continue
		}
		idx, ok := combined.FindColumnIdxByName(o.ColumnName)
		if !ok {
			return nil, fmt.Errorf("view %q: output %q references unknown column %q", v.name, o.Name, o.ColumnName)
		}
		projIdx[i] = idx
		colUsedOut[i] = true
	}
	return combined.Project(projIdx, names, colUsedOut), nil
}

func (v *View) cacheKey(constraints []Constraint, orders []Order, colsUsed *bitvec.BitVector) (string, error) {
	cs := append([]Constraint(nil), constraints...)
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].OutputCol != cs[j].OutputCol {
			return cs[i].OutputCol < cs[j].OutputCol
		}
		return cs[i].Op < cs[j].Op
	})
	os := append([]Order(nil), orders...)

	h := sha1.New()
	for _, c := range cs {
		if int(c.OutputCol) >= len(v.outputs) {
			return "", fmt.Errorf("view %q: constraint references unknown output column %d", v.name, c.OutputCol)
		}
		fmt.Fprintf(h, "c:%d:%d:%s|", c.OutputCol, c.Op, c.Value.String())
	}
	for _, o := range os {
		fmt.Fprintf(h, "o:%d:%t|", o.OutputCol, o.Desc)
	}
	for i := range v.outputs {
		fmt.Fprintf(h, "u:%t|", colUsed(colsUsed, uint32(i)))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
