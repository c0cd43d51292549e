// Package cache provides gene model loading and lookup.
package cache

// Gene represents a genomic region with associated transcripts.
type Gene struct {
	ID          string        // Gene identifier (e.g., ENSG00000133703)
	Name        string        // Gene symbol (e.g., KRAS)
	Chrom       string        // Chromosome
	Start       int64         // Gene start position (1-based)
	End         int64         // Gene end position (1-based, inclusive)
	Strand      int8          // +1 (forward) or -1 (reverse)
	Biotype     string        // Gene biotype (e.g., protein_coding)
	Transcripts []*Transcript // Associated transcripts, in load order
}

// IsForwardStrand returns true if the gene is on the forward strand.
func (g *Gene) IsForwardStrand() bool {
	return g.Strand == 1
}

// IsReverseStrand returns true if the gene is on the reverse strand.
func (g *Gene) IsReverseStrand() bool {
	return g.Strand == -1
}

// Contains returns true if the given position is within the gene boundaries.
func (g *Gene) Contains(pos int64) bool {
	return pos >= g.Start && pos <= g.End
}

// Overlaps returns true if the inclusive range [start, end] overlaps the gene.
func (g *Gene) Overlaps(start, end int64) bool {
	return start <= g.End && end >= g.Start
}

// AddTranscript appends a transcript and widens the gene span to cover it.
func (g *Gene) AddTranscript(t *Transcript) {
	if len(g.Transcripts) == 0 && g.Start == 0 && g.End == 0 {
		g.Start, g.End = t.Start, t.End
	}
	if t.Start < g.Start {
		g.Start = t.Start
	}
	if t.End > g.End {
		g.End = t.End
	}
	g.Transcripts = append(g.Transcripts, t)
}
