package cache

import "sort"

// IntervalTree provides O(log n + k) overlap queries using a sorted-slice approach.
// Genes are loaded once and never modified after build.
type IntervalTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(end) for intervals[:i+1]
}

type interval struct {
	start int64
	end   int64
	gene  *Gene
}

// BuildIntervalTree creates an interval tree from a slice of genes.
func BuildIntervalTree(genes []*Gene) *IntervalTree {
	if len(genes) == 0 {
		return &IntervalTree{}
	}

	intervals := make([]interval, len(genes))
	for i, g := range genes {
		intervals[i] = interval{start: g.Start, end: g.End, gene: g}
	}

	// Stable so that genes with equal starts keep their load order.
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Prefix-max array: maxEnd[i] = max(end) for intervals[:i+1]
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &IntervalTree{intervals: intervals, maxEnd: maxEnd}
}

// FindOverlaps returns all genes whose [Start, End] range overlaps [start, end],
// ordered by gene start.
func (t *IntervalTree) FindOverlaps(start, end int64) []*Gene {
	if len(t.intervals) == 0 {
		return nil
	}

	// Candidates are intervals with start <= end: [0, hi).
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})
	if hi == 0 {
		return nil
	}

	// Smallest index whose running max end reaches the query start; nothing
	// before it can overlap.
	lo := sort.Search(hi, func(i int) bool {
		return t.maxEnd[i] >= start
	})

	var result []*Gene
	for i := lo; i < hi; i++ {
		if t.intervals[i].end >= start {
			result = append(result, t.intervals[i].gene)
		}
	}
	return result
}

// Len returns the number of genes in the tree.
func (t *IntervalTree) Len() int {
	return len(t.intervals)
}
