package cache

// AnnotateCoding derives the coding coordinates of the transcript and its
// exons from the genomic CDS bounds. A zero cdsStart marks the transcript as
// non-coding. firstPhase is the phase of the first coding exon in transcript
// order; it is only non-zero for transcripts whose 5' CDS is incomplete.
//
// Exons must already be sorted by ascending genomic start.
func (t *Transcript) AnnotateCoding(cdsStart, cdsEnd int64, firstPhase int) {
	t.CDSStart, t.CDSEnd = cdsStart, cdsEnd
	t.CDNACodingStart, t.CDNACodingEnd = 0, 0
	if cdsStart == 0 || cdsEnd == 0 {
		t.CDSStart, t.CDSEnd = 0, 0
	}

	var cdnaAcc, cdsAcc int64
	first := true
	for _, i := range t.transcriptOrder() {
		e := &t.Exons[i]
		e.GenomicCodingStart, e.GenomicCodingEnd = 0, 0
		e.CDSStart, e.CDSEnd = 0, 0
		e.Phase = -1

		if t.CDSStart > 0 && e.End >= t.CDSStart && e.Start <= t.CDSEnd {
			e.GenomicCodingStart = max(e.Start, t.CDSStart)
			e.GenomicCodingEnd = min(e.End, t.CDSEnd)
			n := e.GenomicCodingEnd - e.GenomicCodingStart + 1

			e.CDSStart = cdsAcc + 1
			e.CDSEnd = cdsAcc + n
			if first {
				e.Phase = firstPhase
				first = false
			} else {
				e.Phase = int((3 - ((cdsAcc-int64(firstPhase))%3+3)%3) % 3)
			}

			// Exonic bases preceding the coding part, in transcript order.
			lead := e.GenomicCodingStart - e.Start
			if t.IsReverseStrand() {
				lead = e.End - e.GenomicCodingEnd
			}
			if t.CDNACodingStart == 0 {
				t.CDNACodingStart = cdnaAcc + lead + 1
			}
			t.CDNACodingEnd = cdnaAcc + lead + n
			cdsAcc += n
		}
		cdnaAcc += e.Length()
	}
}

// transcriptOrder returns exon indices in 5'->3' transcript order.
func (t *Transcript) transcriptOrder() []int {
	n := len(t.Exons)
	order := make([]int, n)
	for i := range n {
		if t.IsReverseStrand() {
			order[i] = n - 1 - i
		} else {
			order[i] = i
		}
	}
	return order
}

// NumberExons sets exon numbers in transcript order, starting at 1.
func (t *Transcript) NumberExons() {
	for num, i := range t.transcriptOrder() {
		t.Exons[i].Number = num + 1
	}
}
