package hgvs

import "github.com/inodb/vibe-hgvs/internal/vcf"

var complement = [256]byte{
	'A': 'T', 'C': 'G', 'G': 'C', 'T': 'A', 'N': 'N',
	'a': 't', 'c': 'g', 'g': 'c', 't': 'a', 'n': 'n',
}

// ReverseComplement returns the reverse complement of seq. It reports false
// if seq contains a base without a defined complement.
func ReverseComplement(seq string) (string, bool) {
	out := make([]byte, len(seq))
	for i := 0; i < len(seq); i++ {
		c := complement[seq[i]]
		if c == 0 {
			return "", false
		}
		out[len(seq)-1-i] = c
	}
	return string(out), true
}

// IsValid reports whether both alleles consist only of A, C, G and T and
// differ from each other. Repeat notations such as "(CAG)4" are rejected.
func IsValid(v vcf.Variant) bool {
	return isNucleotides(v.Ref) && isNucleotides(v.Alt) && v.Ref != v.Alt
}

func isNucleotides(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case 'A', 'C', 'G', 'T':
		default:
			return false
		}
	}
	return true
}
