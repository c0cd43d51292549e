// Package cache provides gene model loading and lookup.
package cache

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// GTFLoader loads gene models from GENCODE GTF files.
type GTFLoader struct {
	path string
}

// NewGTFLoader creates a new GTF loader.
func NewGTFLoader(path string) *GTFLoader {
	return &GTFLoader{path: path}
}

// Load loads all genes from the GTF file into the cache.
func (l *GTFLoader) Load(c *Cache) error {
	return l.loadGTF(c, "")
}

// LoadChromosome loads genes for a specific chromosome.
func (l *GTFLoader) LoadChromosome(c *Cache, chrom string) error {
	return l.loadGTF(c, chrom)
}

// loadGTF parses the GTF file and populates the cache.
// If filterChrom is non-empty, only loads that chromosome.
func (l *GTFLoader) loadGTF(c *Cache, filterChrom string) error {
	r, err := openInput(l.path)
	if err != nil {
		return fmt.Errorf("open GTF file: %w", err)
	}
	defer r.Close()

	genes, err := parseGTF(r, filterChrom)
	if err != nil {
		return err
	}

	for _, g := range genes {
		c.AddGene(g)
	}
	return nil
}

// gtfFeature represents a parsed GTF line.
type gtfFeature struct {
	chrom       string
	source      string
	featureType string
	start       int64
	end         int64
	score       string
	strand      string
	phase       string
	attributes  map[string]string
}

// cdsRegion is a CDS feature with its GTF phase.
type cdsRegion struct {
	start, end int64
	phase      int
}

// parseGTF parses GTF content and returns genes in file order, each with its
// transcripts fully annotated.
func parseGTF(reader io.Reader, filterChrom string) ([]*Gene, error) {
	scanner := bufio.NewScanner(reader)
	// Increase buffer size for long lines
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var geneOrder []string
	genes := make(map[string]*Gene)
	var transcriptOrder []string
	transcripts := make(map[string]*Transcript)
	exonsByTranscript := make(map[string][]Exon)
	cdsByTranscript := make(map[string][]cdsRegion)
	codonBounds := make(map[string][2]int64) // start/stop codon extension of CDS

	for scanner.Scan() {
		line := scanner.Text()

		// Skip comments and empty lines
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}

		feat, err := parseLine(line)
		if err != nil {
			continue // Skip malformed lines
		}

		// Filter by chromosome if specified
		if filterChrom != "" && feat.chrom != normalizeChrom(filterChrom) {
			continue
		}

		geneID := stripVersion(feat.attributes["gene_id"])
		if feat.featureType == "gene" {
			if _, ok := genes[geneID]; !ok {
				geneOrder = append(geneOrder, geneID)
			}
			genes[geneID] = &Gene{
				ID:      geneID,
				Name:    feat.attributes["gene_name"],
				Chrom:   feat.chrom,
				Start:   feat.start,
				End:     feat.end,
				Strand:  parseStrand(feat.strand),
				Biotype: feat.attributes["gene_type"],
			}
			continue
		}

		transcriptID := feat.attributes["transcript_id"]
		if transcriptID == "" {
			continue
		}
		// Strip version suffix for consistent lookup
		transcriptID = stripVersion(transcriptID)

		switch feat.featureType {
		case "transcript":
			tags := feat.attributes["tag"]
			t := &Transcript{
				ID:               transcriptID,
				GeneID:           geneID,
				GeneName:         feat.attributes["gene_name"],
				Chrom:            feat.chrom,
				Start:            feat.start,
				End:              feat.end,
				Strand:           parseStrand(feat.strand),
				Biotype:          feat.attributes["transcript_type"],
				UnconfirmedStart: hasTag(tags, "cds_start_NF"),
			}
			if _, ok := transcripts[transcriptID]; !ok {
				transcriptOrder = append(transcriptOrder, transcriptID)
			}
			transcripts[transcriptID] = t

		case "exon":
			exonsByTranscript[transcriptID] = append(exonsByTranscript[transcriptID], Exon{
				Start: feat.start,
				End:   feat.end,
				Phase: -1,
			})

		case "CDS":
			phase, err := strconv.Atoi(feat.phase)
			if err != nil {
				phase = 0
			}
			cdsByTranscript[transcriptID] = append(cdsByTranscript[transcriptID],
				cdsRegion{start: feat.start, end: feat.end, phase: phase})
			if t, ok := transcripts[transcriptID]; ok && t.ProteinID == "" {
				t.ProteinID = stripVersion(feat.attributes["protein_id"])
			}

		case "start_codon", "stop_codon":
			// Stop codons lie outside GENCODE CDS features; widen the coding span to include them.
			b, ok := codonBounds[transcriptID]
			if !ok || feat.start < b[0] {
				b[0] = feat.start
			}
			if feat.end > b[1] {
				b[1] = feat.end
			}
			codonBounds[transcriptID] = b
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan GTF: %w", err)
	}

	// Assemble transcripts with exons and CDS info
	for _, id := range transcriptOrder {
		t := transcripts[id]
		exons := exonsByTranscript[id]
		if len(exons) == 0 {
			continue
		}

		// Sort exons by genomic position
		sort.Slice(exons, func(i, j int) bool {
			return exons[i].Start < exons[j].Start
		})
		t.Exons = exons
		t.NumberExons()

		var cdsStart, cdsEnd int64
		firstPhase := 0
		if regions := cdsByTranscript[id]; len(regions) > 0 {
			cdsStart, cdsEnd = regions[0].start, regions[0].end
			first := regions[0]
			for _, r := range regions[1:] {
				cdsStart = min(cdsStart, r.start)
				cdsEnd = max(cdsEnd, r.end)
				// First coding region in transcript order.
				if (t.IsForwardStrand() && r.start < first.start) ||
					(t.IsReverseStrand() && r.end > first.end) {
					first = r
				}
			}
			firstPhase = first.phase
			if b, ok := codonBounds[id]; ok {
				cdsStart = min(cdsStart, b[0])
				cdsEnd = max(cdsEnd, b[1])
			}
		}
		t.AnnotateCoding(cdsStart, cdsEnd, firstPhase)

		g, ok := genes[t.GeneID]
		if !ok {
			g = &Gene{
				ID:     t.GeneID,
				Name:   t.GeneName,
				Chrom:  t.Chrom,
				Strand: t.Strand,
			}
			genes[t.GeneID] = g
			geneOrder = append(geneOrder, t.GeneID)
		}
		g.AddTranscript(t)
	}

	result := make([]*Gene, 0, len(geneOrder))
	for _, id := range geneOrder {
		if g := genes[id]; len(g.Transcripts) > 0 {
			result = append(result, g)
		}
	}
	return result, nil
}

// parseLine parses a single GTF line.
func parseLine(line string) (*gtfFeature, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 9 {
		return nil, fmt.Errorf("invalid GTF line: expected 9 fields, got %d", len(fields))
	}

	start, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse start: %w", err)
	}

	end, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse end: %w", err)
	}

	return &gtfFeature{
		chrom:       normalizeChrom(fields[0]),
		source:      fields[1],
		featureType: fields[2],
		start:       start,
		end:         end,
		score:       fields[5],
		strand:      fields[6],
		phase:       fields[7],
		attributes:  parseAttributes(fields[8]),
	}, nil
}

// parseAttributes parses GTF attribute column.
// Format: key "value"; key "value"; ...
// Repeated tag attributes are joined with commas.
func parseAttributes(attrStr string) map[string]string {
	attrs := make(map[string]string)

	for _, part := range strings.Split(attrStr, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		key, value, ok := strings.Cut(part, " ")
		if !ok {
			continue
		}
		value = strings.Trim(strings.TrimSpace(value), "\"")

		if prev, seen := attrs[key]; seen && key == "tag" {
			attrs[key] = prev + "," + value
			continue
		}
		attrs[key] = value
	}

	return attrs
}

// hasTag reports whether a comma-joined tag list contains tag.
func hasTag(tags, tag string) bool {
	for _, t := range strings.Split(tags, ",") {
		if t == tag {
			return true
		}
	}
	return false
}

// parseStrand converts strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}

// stripVersion removes the version suffix from an Ensembl ID.
// e.g., "ENST00000456328.2" -> "ENST00000456328"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}

// normalizeChrom normalizes chromosome names by removing "chr" prefix.
// GENCODE uses "chr1", VCF files often use "1".
func normalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

// NormalizeChrom is the exported form of normalizeChrom for callers that
// look up genes by user-supplied chromosome names.
func NormalizeChrom(chrom string) string {
	return normalizeChrom(chrom)
}
