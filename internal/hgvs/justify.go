package hgvs

import "github.com/inodb/vibe-hgvs/internal/vcf"

// Justify shifts an indel allele along window to its most 3' position in
// transcript orientation: right on the forward strand, left on the reverse.
//
// startOffset and endOffset are the 0-based window indices of the variant's
// first and last reference base; for an insertion endOffset is
// startOffset-1. The returned variant carries the shifted span and the
// shifted allele in Ref (deletion) or Alt (insertion); v is not modified.
func Justify(v vcf.Variant, startOffset, endOffset int, allele, window string, strand int8) vcf.Variant {
	if allele == "" {
		return v
	}
	a := []byte(allele)

	if strand < 0 {
		for startOffset > 0 && window[startOffset-1] == a[len(a)-1] {
			copy(a[1:], a[:len(a)-1])
			a[0] = window[startOffset-1]
			startOffset--
			endOffset--
			v.Start--
			v.End--
		}
	} else {
		for endOffset+1 < len(window) && window[endOffset+1] == a[0] {
			copy(a, a[1:])
			a[len(a)-1] = window[endOffset+1]
			startOffset++
			endOffset++
			v.Start++
			v.End++
		}
	}

	if v.Ref == "" {
		v.Alt = string(a)
	} else {
		v.Ref = string(a)
	}
	return v
}
