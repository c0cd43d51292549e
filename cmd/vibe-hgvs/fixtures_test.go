package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/annotate"
	"github.com/inodb/vibe-hgvs/internal/cache"
)

// testGTF holds one forward coding gene on chr1: exons 100-200, 300-400,
// 500-600 with CDS 150-548.
const testGTF = `chr1	HAVANA	gene	100	600	.	+	.	gene_id "ENSG01.3"; gene_type "protein_coding"; gene_name "GENE1";
chr1	HAVANA	transcript	100	600	.	+	.	gene_id "ENSG01.3"; transcript_id "ENST01.2"; gene_name "GENE1"; transcript_type "protein_coding";
chr1	HAVANA	exon	100	200	.	+	.	gene_id "ENSG01.3"; transcript_id "ENST01.2"; exon_number 1;
chr1	HAVANA	exon	300	400	.	+	.	gene_id "ENSG01.3"; transcript_id "ENST01.2"; exon_number 2;
chr1	HAVANA	exon	500	600	.	+	.	gene_id "ENSG01.3"; transcript_id "ENST01.2"; exon_number 3;
chr1	HAVANA	CDS	150	200	.	+	0	gene_id "ENSG01.3"; transcript_id "ENST01.2"; protein_id "ENSP01.2";
chr1	HAVANA	CDS	300	400	.	+	0	gene_id "ENSG01.3"; transcript_id "ENST01.2"; protein_id "ENSP01.2";
chr1	HAVANA	CDS	500	545	.	+	1	gene_id "ENSG01.3"; transcript_id "ENST01.2"; protein_id "ENSP01.2";
chr1	HAVANA	start_codon	150	152	.	+	0	gene_id "ENSG01.3"; transcript_id "ENST01.2";
chr1	HAVANA	stop_codon	546	548	.	+	0	gene_id "ENSG01.3"; transcript_id "ENST01.2";
`

// writeTestGTF writes testGTF into dir and returns its path.
func writeTestGTF(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "gencode.v46.annotation.gtf")
	require.NoError(t, os.WriteFile(path, []byte(testGTF), 0644))
	return path
}

// testGenome returns chr1 as "ACGT" repeated, so position p holds
// "ACGT"[(p-1)%4].
func testGenome() *cache.Genome {
	g := cache.NewGenome()
	g.Add("chr1", strings.Repeat("ACGT", 500))
	return g
}

// testServer builds a server over the test gene model and genome.
func testServer(t *testing.T) *server {
	t.Helper()
	dir := t.TempDir()
	genes, err := loadGenes(dir, sourceFiles{GTF: writeTestGTF(t, dir)}, zap.NewNop())
	require.NoError(t, err)

	ann := annotate.NewAnnotator(genes, newCalculator(testGenome(), zap.NewNop()))
	ann.SetNormalize(true)
	return &server{ann: ann, logger: zap.NewNop()}
}
