package cache

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FASTALoader loads CDS sequences from GENCODE transcript FASTA files.
type FASTALoader struct {
	path      string
	sequences map[string]string // transcript_id -> full sequence
	cdsRanges map[string][2]int // transcript_id -> [cdsStart, cdsEnd] (1-based from header)
}

// NewFASTALoader creates a new FASTA loader.
func NewFASTALoader(path string) *FASTALoader {
	return &FASTALoader{
		path:      path,
		sequences: make(map[string]string),
		cdsRanges: make(map[string][2]int),
	}
}

// Load parses the FASTA file and stores sequences indexed by transcript ID.
func (l *FASTALoader) Load() error {
	r, err := openInput(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer r.Close()

	return l.parseFASTA(r)
}

// parseFASTA parses FASTA content.
// GENCODE transcript FASTA headers look like:
// >ENST00000456328.2|ENSG00000290825.1|OTTHUMG00000002860.3|OTTHUMT00000007999.2|DDX11L2-202|DDX11L2|459|UTR5:1-200|CDS:201-459|UTR3:460-1657|
func (l *FASTALoader) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var currentID string
	var currentSeq strings.Builder

	flush := func() {
		if currentID != "" && currentSeq.Len() > 0 {
			l.sequences[currentID] = strings.ToUpper(currentSeq.String())
		}
	}

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, ">") {
			flush()
			currentID = parseHeader(line)
			if cdsStart, cdsEnd, ok := parseCDSRange(line); ok {
				l.cdsRanges[currentID] = [2]int{cdsStart, cdsEnd}
			}
			currentSeq.Reset()
			continue
		}
		currentSeq.WriteString(strings.TrimSpace(line))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}

	return nil
}

// parseHeader extracts the unversioned transcript ID from a FASTA header.
// Handles both GENCODE pipe-delimited and simple Ensembl headers.
func parseHeader(header string) string {
	header = strings.TrimPrefix(header, ">")
	if idx := strings.IndexAny(header, "| "); idx != -1 {
		header = header[:idx]
	}
	return stripVersion(header)
}

// parseCDSRange extracts CDS start and end positions from a GENCODE FASTA header.
// Returns 1-based start and end positions.
func parseCDSRange(header string) (start, end int, ok bool) {
	for _, field := range strings.Split(header, "|") {
		rangeStr, found := strings.CutPrefix(strings.TrimSpace(field), "CDS:")
		if !found {
			continue
		}
		s, e, found := strings.Cut(rangeStr, "-")
		if !found {
			return 0, 0, false
		}
		si, err1 := strconv.Atoi(s)
		ei, err2 := strconv.Atoi(e)
		if err1 != nil || err2 != nil {
			return 0, 0, false
		}
		return si, ei, true
	}
	return 0, 0, false
}

// GetSequence returns the CDS sequence for a transcript ID.
// If CDS boundaries were parsed from the FASTA header, only the CDS portion is returned.
func (l *FASTALoader) GetSequence(transcriptID string) string {
	id := stripVersion(transcriptID)
	seq, ok := l.sequences[id]
	if !ok {
		return ""
	}

	if cdsRange, hasCDS := l.cdsRanges[id]; hasCDS {
		start := cdsRange[0] - 1
		end := cdsRange[1]
		if start >= 0 && end <= len(seq) && start < end {
			return seq[start:end]
		}
	}

	return seq
}

// SequenceCount returns the number of loaded sequences.
func (l *FASTALoader) SequenceCount() int {
	return len(l.sequences)
}

// HasSequence checks if a sequence exists for the given transcript ID.
func (l *FASTALoader) HasSequence(transcriptID string) bool {
	_, ok := l.sequences[stripVersion(transcriptID)]
	return ok
}

// Apply sets CDSSequence on every protein-coding transcript in the cache that
// has a loaded sequence. Returns the number of transcripts updated.
func (l *FASTALoader) Apply(c *Cache) int {
	n := 0
	for _, chrom := range c.Chromosomes() {
		for _, g := range c.GenesByChrom(chrom) {
			for _, t := range g.Transcripts {
				if !t.IsProteinCoding() {
					continue
				}
				if seq := l.GetSequence(t.ID); seq != "" {
					t.CDSSequence = seq
					n++
				}
			}
		}
	}
	return n
}
